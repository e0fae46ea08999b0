package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admincms/config"
	"admincms/internal/api"
	"admincms/internal/app"
	"admincms/internal/scheduler"
	"admincms/pkg/database"
	"admincms/pkg/logger"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 初始化日志
	logger := logger.NewLoggerWithConfig(cfg.LogLevel, cfg.LogFile)
	defer logger.Close()

	// 初始化数据库、Redis、文件存储和服务
	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger, app.Options{Workers: 4})
	if err != nil {
		logger.Fatal("初始化失败", err)
	}

	if err := database.Apply(ctx, application.DB); err != nil {
		logger.Fatal("数据库迁移失败", err)
	}

	// 初始化API路由
	stop := make(chan struct{})
	router := api.SetupRouter(cfg, logger, application.Services, application.Flash, stop)

	// 启动维护任务
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.NewScheduler(application.Services.Posts, application.Services.Advertisements, cfg.Scheduler.TrashRetentionDays, logger)
		if err := jobs.Start(); err != nil {
			logger.Fatal("启动维护任务失败", err)
		}
	}

	// 创建HTTP服务器
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info(fmt.Sprintf("服务器启动于端口: %d", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("启动服务器失败", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器被强制关闭", err)
	}
	close(stop)
	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			logger.Warn("维护任务未能及时停止", err)
		}
	}
	application.Close(shutdownCtx)

	logger.Info("服务器已正常退出")
}
