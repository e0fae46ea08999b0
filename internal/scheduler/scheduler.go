package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"admincms/internal/service"
	"admincms/pkg/logger"
	"admincms/pkg/metrics"
)

const (
	// ExpireAdsSpec 每分钟检查一次结束的广告
	ExpireAdsSpec = "@every 1m"
	// PurgeTrashSpec 每天凌晨三点清理回收站
	PurgeTrashSpec = "0 3 * * *"
)

// Scheduler 后台维护任务调度器
type Scheduler struct {
	posts     service.PostService
	ads       service.AdvertisementService
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
	cron      *cron.Cron
}

// NewScheduler 创建调度器，retentionDays 为回收站保留天数
func NewScheduler(posts service.PostService, ads service.AdvertisementService, retentionDays int, logger *logger.Logger) *Scheduler {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Scheduler{
		posts:     posts,
		ads:       ads,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
		logger:    logger,
		cron:      cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
	}
}

// Start 注册并启动所有任务
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(ExpireAdsSpec, func() { s.ExpireAds(context.Background()) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(PurgeTrashSpec, func() { s.PurgeTrash(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("维护任务调度器启动", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop 停止调度并等待正在运行的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("维护任务调度器停止")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExpireAds 把已过结束时间的广告标记为过期
func (s *Scheduler) ExpireAds(ctx context.Context) {
	n, err := s.ads.ExpireFinished(ctx)
	metrics.RecordJob("expire_ads", n, err)
	if err != nil {
		s.logger.Error("过期广告处理失败", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("广告已过期", "count", n)
	}
}

// PurgeTrash 彻底删除超过保留期的回收站文章
func (s *Scheduler) PurgeTrash(ctx context.Context) {
	before := s.now().Add(-s.retention)
	n, err := s.posts.PurgeTrashed(ctx, before)
	metrics.RecordJob("purge_trash", n, err)
	if err != nil {
		s.logger.Error("清理回收站失败", "error", err)
		return
	}
	s.logger.Info("回收站已清理", "count", n, "before", before.Format("2006-01-02 15:04:05"))
}

// cronLogger 把cron的日志接到应用日志
type cronLogger struct {
	logger *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]interface{}{err}, keysAndValues...)...)
}
