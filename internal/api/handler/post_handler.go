package handler

import (
	"admincms/internal/api/response"
	"admincms/internal/constants"
	"admincms/internal/query"
	"admincms/internal/service"
	"admincms/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PostHandler 前台文章处理器
type PostHandler struct {
	postService     service.PostService
	categoryService service.CategoryService
	logger          *logger.Logger
}

// NewPostHandler 创建前台文章处理器实例
func NewPostHandler(postService service.PostService, categoryService service.CategoryService, logger *logger.Logger) *PostHandler {
	return &PostHandler{postService: postService, categoryService: categoryService, logger: logger}
}

// ListPosts 已发布文章列表，支持 search、sort、filter[featured|category|author] 和分页
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, err := h.postService.ListPublished(c.Request.Context(), query.ParamsFromValues(c.Request.URL.Query()))
	if err != nil {
		response.Error(c, h.logger, err, "")
		return
	}
	response.List(c, page, nil)
}

// GetPost 按slug获取已发布文章
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, h.logger, err, constants.ErrPostNotFound)
		return
	}
	response.OK(c, constants.SuccessGet, post.View())
}

// ListCategories 全部分类及文章数
func (h *PostHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.All(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err, "")
		return
	}
	response.OK(c, constants.SuccessGet, categories)
}
