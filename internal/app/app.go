// Package app 组装服务端和命令行工具共用的依赖
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"admincms/config"
	"admincms/internal/api"
	"admincms/internal/query"
	"admincms/internal/service"
	"admincms/pkg/async"
	"admincms/pkg/cache"
	"admincms/pkg/database"
	"admincms/pkg/flash"
	"admincms/pkg/logger"
	"admincms/pkg/metrics"
	"admincms/pkg/storage"
)

const cachePrefix = "admincms"

// App 已初始化的外部连接和服务
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *sqlx.DB
	Redis    *redis.Client
	Cache    *cache.Cache
	Flash    *flash.Store
	Store    storage.Store
	Services api.Services

	mongo  *mongo.Client
	worker *async.Worker
}

// Options 控制可选组件
type Options struct {
	// Workers 大于0时缓存失效交给后台任务执行
	Workers int
}

// New 连接数据库、Redis和文件存储并创建服务
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	db, err := database.NewMySQLConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("无法链接到数据库: %w", err)
	}
	a.DB = db

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("无法链接到Redis: %w", err)
	}
	a.Redis = redisClient
	a.Cache = cache.New(redisClient, cachePrefix, cfg.CacheTTL)
	a.Flash = flash.NewStore(redisClient, time.Hour)

	if err := a.openStorage(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	env := service.Env{
		Logger: log,
		Cache:  a.Cache,
		Pages:  PageSizes(cfg.Pagination),
		Now:    time.Now,
	}
	if opts.Workers > 0 {
		a.worker = async.NewWorker(opts.Workers*16, log)
		a.worker.OnDone = func(r async.Result) { metrics.RecordTask(r.Name, r.Error) }
		a.worker.Start(opts.Workers)
		env.Tasks = a.worker
	}

	limits := service.UploadLimits{MaxSize: cfg.Upload.MaxSize, AllowedTypes: cfg.Upload.AllowedTypes}
	a.Services = api.NewServices(env, db, a.Store, limits)
	return a, nil
}

func (a *App) openStorage(ctx context.Context) error {
	switch a.Config.Storage.Driver {
	case "gridfs":
		client, err := storage.ConnectMongo(ctx, a.Config.Storage.MongoURI)
		if err != nil {
			return fmt.Errorf("无法链接到MongoDB: %w", err)
		}
		a.mongo = client
		store, err := storage.NewGridFS(client.Database(a.Config.Storage.MongoDB))
		if err != nil {
			return err
		}
		a.Store = store
	default:
		store, err := storage.NewLocal(a.Config.Storage.LocalDir)
		if err != nil {
			return err
		}
		a.Store = store
	}
	return nil
}

// PageSizes 把分页配置转换为查询使用的分页设置
func PageSizes(cfg config.PaginationConfig) query.PageSizes {
	pages := query.DefaultPageSizes
	if len(cfg.PageSizes) > 0 {
		pages.Allowed = cfg.PageSizes
	}
	if cfg.DefaultPerPage > 0 {
		pages.Default = cfg.DefaultPerPage
	}
	return pages
}

// Close 停止后台任务并关闭所有连接
func (a *App) Close(ctx context.Context) {
	if a.worker != nil {
		if err := a.worker.Stop(ctx); err != nil {
			a.Logger.Warn("后台任务未能全部完成", "error", err)
		}
	}
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
