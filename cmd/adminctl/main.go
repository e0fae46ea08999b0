// adminctl 后台维护命令行工具
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"admincms/config"
	"admincms/internal/app"
	"admincms/pkg/logger"
)

var (
	cfg       *config.Config
	appLogger *logger.Logger
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "adminctl",
	Short: "内容管理后台维护工具",
	Long: `adminctl 执行不适合放在HTTP接口里的维护操作。

可用命令:
  migrate - 执行建表脚本
  cache   - 清理Redis缓存
  routes  - 列出所有API路由
  user    - 用户维护
  ads     - 广告维护
  posts   - 文章维护`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		appLogger = logger.NewLogger(cfg.LogLevel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			_ = appLogger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "覆盖配置中的日志级别")
	rootCmd.AddCommand(migrateCmd, cacheCmd, routesCmd, userCmd, adsCmd, postsCmd)
}

// withApp 初始化依赖后执行fn，结束时关闭所有连接
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, cfg, appLogger, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close(ctx)
	return fn(a)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
