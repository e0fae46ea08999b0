package apis

import (
	"admincms/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// PublicHandlers 前台处理器
type PublicHandlers struct {
	Users *handler.UserHandler
	Posts *handler.PostHandler
	Ads   *handler.AdHandler
	Media *handler.MediaHandler
}

// RegisterPublicRoutes 注册不需要认证的路由，登录接口单独限流
func RegisterPublicRoutes(v1 *gin.RouterGroup, h PublicHandlers, loginLimit gin.HandlerFunc) {
	login := []gin.HandlerFunc{h.Users.Login}
	if loginLimit != nil {
		login = append([]gin.HandlerFunc{loginLimit}, login...)
	}
	v1.POST("/auth/login", login...)

	v1.GET("/posts", h.Posts.ListPosts)
	v1.GET("/posts/:slug", h.Posts.GetPost)
	v1.GET("/categories", h.Posts.ListCategories)
	v1.GET("/zones/:slug/ads", h.Ads.GetZoneAds)
	v1.GET("/media/:id", h.Media.GetMedia)
}

// RegisterAuthRoutes 注册需要登录的路由
func RegisterAuthRoutes(authRouter *gin.RouterGroup, h PublicHandlers) {
	authRouter.GET("/auth/me", h.Users.Me)
}
