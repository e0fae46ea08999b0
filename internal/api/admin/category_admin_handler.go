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

const categoriesIndex = "/admin/categories"

// CategoryAdminHandler 分类管理处理器
type CategoryAdminHandler struct {
	Base
	categoryService service.CategoryService
}

// NewCategoryAdminHandler 创建分类管理处理器实例
func NewCategoryAdminHandler(base Base, categoryService service.CategoryService) *CategoryAdminHandler {
	return &CategoryAdminHandler{Base: base, categoryService: categoryService}
}

func (h *CategoryAdminHandler) List(c *gin.Context) {
	page, err := h.categoryService.List(c.Request.Context(), params(c), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.List(c, page, h.pending(c))
}

func (h *CategoryAdminHandler) CreateForm(c *gin.Context) {
	fields := fillable.Category.Fields(fillable.Create, auth.MustGet(c))
	response.OK(c, constants.SuccessGet, gin.H{"options": service.FormOptions{Fields: fields}})
}

func (h *CategoryAdminHandler) Store(c *gin.Context) {
	var req types.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req.Attributes(), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.notify(c, "分类已创建")
	response.Written(c, constants.SuccessCreate, category, categoriesIndex)
}

func (h *CategoryAdminHandler) Edit(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, constants.ErrCategoryNotFound)
		return
	}
	fields := fillable.Category.Fields(fillable.Update, auth.MustGet(c))
	response.OK(c, constants.SuccessGet, gin.H{"category": category, "options": service.FormOptions{Fields: fields}})
}

func (h *CategoryAdminHandler) Update(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	var req types.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), id, req.Attributes(), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, constants.ErrCategoryNotFound)
		return
	}
	h.notify(c, "分类已更新")
	response.Written(c, constants.SuccessUpdate, category, categoriesIndex)
}

// Destroy 删除分类，文章与该分类的关联一并解除
func (h *CategoryAdminHandler) Destroy(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, constants.ErrCategoryNotFound)
		return
	}
	h.notify(c, "分类已删除")
	response.Written(c, constants.SuccessDelete, nil, categoriesIndex)
}
