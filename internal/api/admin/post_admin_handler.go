package admin

import (
	"admincms/internal/api/response"
	"admincms/internal/auth"
	"admincms/internal/constants"
	"admincms/internal/fillable"
	"admincms/internal/service"
	"admincms/internal/types"

	"github.com/gin-gonic/gin"
)

const postsIndex = "/admin/posts"

// PostAdminHandler 文章管理处理器
type PostAdminHandler struct {
	Base
	postService service.PostService
}

// NewPostAdminHandler 创建文章管理处理器实例
func NewPostAdminHandler(base Base, postService service.PostService) *PostAdminHandler {
	return &PostAdminHandler{Base: base, postService: postService}
}

// List 文章列表
func (h *PostAdminHandler) List(c *gin.Context) {
	page, err := h.postService.List(c.Request.Context(), params(c), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.List(c, page, h.pending(c))
}

// CreateForm 新建文章表单数据
func (h *PostAdminHandler) CreateForm(c *gin.Context) {
	opts, err := h.postService.FormOptions(c.Request.Context(), fillable.Create, auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.OK(c, constants.SuccessGet, gin.H{"options": opts})
}

// Store 创建文章
func (h *PostAdminHandler) Store(c *gin.Context) {
	var req types.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	post, err := h.postService.Create(c.Request.Context(), req.Attributes(), req.CategoryIDs, auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.notify(c, "文章已创建")
	response.Written(c, constants.SuccessCreate, post.View(), postsIndex)
}

// Edit 编辑文章表单数据
func (h *PostAdminHandler) Edit(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	viewer := auth.MustGet(c)
	post, err := h.postService.Get(c.Request.Context(), id, viewer)
	if err != nil {
		h.fail(c, err, constants.ErrPostNotFound)
		return
	}
	opts, err := h.postService.FormOptions(c.Request.Context(), fillable.Update, viewer)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.OK(c, constants.SuccessGet, gin.H{"post": post.View(), "options": opts})
}

// Update 更新文章
func (h *PostAdminHandler) Update(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	var req types.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	post, err := h.postService.Update(c.Request.Context(), id, req.Attributes(), req.CategoryIDs, auth.MustGet(c))
	if err != nil {
		h.fail(c, err, constants.ErrPostNotFound)
		return
	}
	h.notify(c, "文章已更新")
	response.Written(c, constants.SuccessUpdate, post.View(), postsIndex)
}

// Destroy 删除文章，可以恢复
func (h *PostAdminHandler) Destroy(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	if err := h.postService.Delete(c.Request.Context(), id, auth.MustGet(c)); err != nil {
		h.fail(c, err, constants.ErrPostNotFound)
		return
	}
	h.notify(c, "文章已删除")
	response.Written(c, constants.SuccessDelete, nil, postsIndex)
}

// Restore 恢复已删除的文章
func (h *PostAdminHandler) Restore(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	if err := h.postService.Restore(c.Request.Context(), id, auth.MustGet(c)); err != nil {
		h.fail(c, err, constants.ErrPostNotFound)
		return
	}
	h.notify(c, "文章已恢复")
	response.Written(c, constants.SuccessRestore, nil, postsIndex)
}

// ToggleStatus 切换发布状态
func (h *PostAdminHandler) ToggleStatus(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	post, err := h.postService.ToggleStatus(c.Request.Context(), id, auth.MustGet(c))
	if err != nil {
		h.fail(c, err, constants.ErrPostNotFound)
		return
	}
	h.notify(c, "文章状态已更新")
	response.Written(c, constants.SuccessToggle, post.View(), postsIndex)
}
