package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用程序配置
type Config struct {
	APIPort    int
	LogLevel   string
	LogFile    LogFileConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Pagination PaginationConfig
	Upload     UploadConfig
	Storage    StorageConfig
	RateLimit  RateLimitConfig
	Scheduler  SchedulerConfig
	CacheTTL   time.Duration
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Enabled    bool
	Path       string
	MaxSize    int // 单个文件最大大小，单位MB
	MaxBackups int
	MaxAge     int // 保留天数
	Compress   bool
}

// DatabaseConfig MySQL数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PaginationConfig 分页配置
type PaginationConfig struct {
	DefaultPerPage int
	PageSizes      []int
}

// UploadConfig 上传配置
type UploadConfig struct {
	MaxSize      int64 // 字节
	AllowedTypes []string
}

// StorageConfig 文件存储配置
type StorageConfig struct {
	Driver   string // local 或 gridfs
	LocalDir string
	MongoURI string
	MongoDB  string
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	Enabled            bool
	TrashRetentionDays int
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 加载.env文件，文件不存在时只使用环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	pageSizes, err := parseIntList(envString("PAGINATION_PAGE_SIZES", "10,25,50,100"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAGINATION_PAGE_SIZES: %w", err)
	}

	cfg := &Config{
		APIPort:  envInt("API_PORT", 8080),
		LogLevel: envString("LOG_LEVEL", "info"),
		LogFile: LogFileConfig{
			Enabled:    envBool("LOG_FILE_ENABLED", false),
			Path:       envString("LOG_FILE_PATH", "logs/app.log"),
			MaxSize:    envInt("LOG_FILE_MAX_SIZE", 100),
			MaxBackups: envInt("LOG_FILE_MAX_BACKUPS", 7),
			MaxAge:     envInt("LOG_FILE_MAX_AGE", 30),
			Compress:   envBool("LOG_FILE_COMPRESS", true),
		},
		Database: DatabaseConfig{
			Host:     envString("DB_HOST", "127.0.0.1"),
			Port:     envInt("DB_PORT", 3306),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     envString("REDIS_HOST", "127.0.0.1"),
			Port:     envInt("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Pagination: PaginationConfig{
			DefaultPerPage: envInt("PAGINATION_DEFAULT_PER_PAGE", 10),
			PageSizes:      pageSizes,
		},
		Upload: UploadConfig{
			MaxSize:      int64(envInt("UPLOAD_MAX_SIZE_MB", 5)) << 20,
			AllowedTypes: splitList(envString("UPLOAD_ALLOWED_TYPES", "image/jpeg,image/png,image/gif,image/webp")),
		},
		Storage: StorageConfig{
			Driver:   envString("STORAGE_DRIVER", "local"),
			LocalDir: envString("STORAGE_LOCAL_DIR", "storage/uploads"),
			MongoURI: os.Getenv("MONGO_URI"),
			MongoDB:  envString("MONGO_DB", "admincms"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envInt("RATE_LIMIT_RPS", 5),
			Burst:             envInt("RATE_LIMIT_BURST", 10),
		},
		Scheduler: SchedulerConfig{
			Enabled:            envBool("SCHEDULER_ENABLED", true),
			TrashRetentionDays: envInt("TRASH_RETENTION_DAYS", 30),
		},
		CacheTTL: time.Duration(envInt("CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	if cfg.Storage.Driver != "local" && cfg.Storage.Driver != "gridfs" {
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntList(s string) ([]int, error) {
	parts := splitList(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("bad page size %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}
