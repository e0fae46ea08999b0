package admin

import (
	"admincms/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers 后台所有处理器
type Handlers struct {
	Posts          *PostAdminHandler
	Categories     *CategoryAdminHandler
	Zones          *AdZoneAdminHandler
	Advertisements *AdvertisementAdminHandler
	Users          *UserAdminHandler
	Uploads        *UploadAdminHandler
}

// RegisterAdminRoutes 注册后台路由，router 上已经挂载了认证和 RequireStaff
func RegisterAdminRoutes(router *gin.RouterGroup, h Handlers, uploadLimit gin.HandlerFunc) {
	adminOnly := middleware.RequireAdmin()

	// 文章管理路由
	posts := router.Group("/posts")
	{
		posts.GET("", h.Posts.List)
		posts.GET("/create", h.Posts.CreateForm)
		posts.POST("", h.Posts.Store)
		posts.GET("/:id", h.Posts.Edit)
		posts.PUT("/:id", h.Posts.Update)
		posts.DELETE("/:id", h.Posts.Destroy)
		posts.PATCH("/:id/status", h.Posts.ToggleStatus)
		posts.POST("/:id/restore", h.Posts.Restore)
	}

	// 分类管理路由，写操作只允许管理员
	categories := router.Group("/categories")
	{
		categories.GET("", h.Categories.List)
		categories.GET("/create", adminOnly, h.Categories.CreateForm)
		categories.POST("", adminOnly, h.Categories.Store)
		categories.GET("/:id", h.Categories.Edit)
		categories.PUT("/:id", adminOnly, h.Categories.Update)
		categories.DELETE("/:id", adminOnly, h.Categories.Destroy)
	}

	// 广告位管理路由
	zones := router.Group("/ad-zones", adminOnly)
	{
		zones.GET("", h.Zones.List)
		zones.GET("/create", h.Zones.CreateForm)
		zones.POST("", h.Zones.Store)
		zones.GET("/:id", h.Zones.Edit)
		zones.PUT("/:id", h.Zones.Update)
		zones.DELETE("/:id", h.Zones.Destroy)
		zones.PATCH("/:id/status", h.Zones.ToggleStatus)
	}

	// 广告管理路由
	ads := router.Group("/advertisements")
	{
		ads.GET("", h.Advertisements.List)
		ads.GET("/create", h.Advertisements.CreateForm)
		ads.POST("", h.Advertisements.Store)
		ads.GET("/:id", h.Advertisements.Edit)
		ads.PUT("/:id", h.Advertisements.Update)
		ads.DELETE("/:id", h.Advertisements.Destroy)
		ads.PATCH("/:id/status", h.Advertisements.ToggleStatus)
	}

	// 用户管理路由
	users := router.Group("/users", adminOnly)
	{
		users.GET("", h.Users.List)
		users.GET("/create", h.Users.CreateForm)
		users.POST("", h.Users.Store)
		users.GET("/:id", h.Users.Edit)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Destroy)
		users.PATCH("/:id/status", h.Users.ToggleStatus)
		users.POST("/:id/reset-token", h.Users.ResetToken)
	}

	// 文件上传路由
	uploads := router.Group("/uploads")
	{
		uploads.GET("", h.Uploads.List)
		if uploadLimit != nil {
			uploads.POST("", uploadLimit, h.Uploads.Store)
		} else {
			uploads.POST("", h.Uploads.Store)
		}
		uploads.DELETE("/:id", h.Uploads.Destroy)
	}
}
