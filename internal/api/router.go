package api

import (
	"net/http"
	"time"

	"admincms/config"
	"admincms/internal/api/admin"
	"admincms/internal/api/apis"
	"admincms/internal/api/handler"
	"admincms/internal/middleware"
	"admincms/internal/repository"
	"admincms/internal/service"
	"admincms/internal/types"
	"admincms/pkg/flash"
	"admincms/pkg/logger"
	"admincms/pkg/metrics"
	"admincms/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Services 路由使用的全部服务
type Services struct {
	Posts          service.PostService
	Categories     service.CategoryService
	Zones          service.AdZoneService
	Advertisements service.AdvertisementService
	Users          service.UserService
	Media          service.MediaService
}

// NewServices 初始化存储库和服务
func NewServices(env service.Env, db *sqlx.DB, store storage.Store, limits service.UploadLimits) Services {
	// 初始化存储库
	postRepo := repository.NewPostRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	zoneRepo := repository.NewAdZoneRepository(db)
	adRepo := repository.NewAdvertisementRepository(db)
	userRepo := repository.NewUserRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	// 初始化服务
	categoryService := service.NewCategoryService(env, categoryRepo)
	return Services{
		Posts:          service.NewPostService(env, postRepo, categoryRepo, mediaRepo, userRepo, categoryService),
		Categories:     categoryService,
		Zones:          service.NewAdZoneService(env, zoneRepo),
		Advertisements: service.NewAdvertisementService(env, adRepo, zoneRepo, mediaRepo, userRepo),
		Users:          service.NewUserService(env, userRepo),
		Media:          service.NewMediaService(env, limits, store, mediaRepo, postRepo, adRepo),
	}
}

// SetupRouter 设置API路由，stop 关闭后停止后台清理
func SetupRouter(cfg *config.Config, logger *logger.Logger, svc Services, flashStore *flash.Store, stop <-chan struct{}) *gin.Engine {
	// 创建Gin引擎
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := types.RegisterValidators(); err != nil {
		logger.Error("注册校验规则失败", "error", err)
	}
	router.MaxMultipartMemory = cfg.Upload.MaxSize + 1<<20

	// 使用中间件
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())
	router.Use(metrics.Middleware())

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	if stop != nil {
		limiter.StartCleanup(10*time.Minute, stop)
	}

	// 初始化处理器
	public := apis.PublicHandlers{
		Users: handler.NewUserHandler(svc.Users, logger),
		Posts: handler.NewPostHandler(svc.Posts, svc.Categories, logger),
		Ads:   handler.NewAdHandler(svc.Advertisements, logger),
		Media: handler.NewMediaHandler(svc.Media, logger),
	}
	base := admin.NewBase(logger, flashStore)
	adminHandlers := admin.Handlers{
		Posts:          admin.NewPostAdminHandler(base, svc.Posts),
		Categories:     admin.NewCategoryAdminHandler(base, svc.Categories),
		Zones:          admin.NewAdZoneAdminHandler(base, svc.Zones),
		Advertisements: admin.NewAdvertisementAdminHandler(base, svc.Advertisements),
		Users:          admin.NewUserAdminHandler(base, svc.Users),
		Uploads:        admin.NewUploadAdminHandler(base, svc.Media),
	}

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API版本v1
	v1 := router.Group("/api/v1")
	userAuth := middleware.UserAuth(svc.Users, logger)

	// 注册不需要认证的路由
	apis.RegisterPublicRoutes(v1, public, limiter.Handler())

	// 注册需要认证的API路由
	authRouter := v1.Group("", userAuth)
	apis.RegisterAuthRoutes(authRouter, public)

	// 注册管理员API路由
	adminRouter := v1.Group("/admin", userAuth, middleware.RequireStaff())
	admin.RegisterAdminRoutes(adminRouter, adminHandlers, limiter.Handler())

	return router
}
