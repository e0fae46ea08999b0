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

const usersIndex = "/admin/users"

// UserAdminHandler 用户管理处理器
type UserAdminHandler struct {
	Base
	userService service.UserService
}

// NewUserAdminHandler 创建用户管理处理器实例
func NewUserAdminHandler(base Base, userService service.UserService) *UserAdminHandler {
	return &UserAdminHandler{Base: base, userService: userService}
}

// List 用户列表，不返回密码和token
func (h *UserAdminHandler) List(c *gin.Context) {
	page, err := h.userService.List(c.Request.Context(), params(c), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	response.List(c, page, h.pending(c))
}

func (h *UserAdminHandler) CreateForm(c *gin.Context) {
	response.OK(c, constants.SuccessGet, gin.H{"options": h.userService.FormOptions(fillable.Create, auth.MustGet(c))})
}

func (h *UserAdminHandler) Store(c *gin.Context) {
	var req types.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	user, err := h.userService.Create(c.Request.Context(), req.Attributes(), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.notify(c, "用户已创建")
	response.Written(c, constants.SuccessCreate, user, usersIndex)
}

func (h *UserAdminHandler) Edit(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, constants.ErrUserNotFound)
		return
	}
	opts := h.userService.FormOptions(fillable.Update, auth.MustGet(c))
	response.OK(c, constants.SuccessGet, gin.H{"user": user, "options": opts})
}

func (h *UserAdminHandler) Update(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	var req types.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	user, err := h.userService.Update(c.Request.Context(), id, req.Attributes(), auth.MustGet(c))
	if err != nil {
		h.fail(c, err, constants.ErrUserNotFound)
		return
	}
	h.notify(c, "用户已更新")
	response.Written(c, constants.SuccessUpdate, user, usersIndex)
}

func (h *UserAdminHandler) Destroy(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id, auth.MustGet(c)); err != nil {
		h.fail(c, err, constants.ErrUserNotFound)
		return
	}
	h.notify(c, "用户已删除")
	response.Written(c, constants.SuccessDelete, nil, usersIndex)
}

// ToggleStatus 启用或停用用户
func (h *UserAdminHandler) ToggleStatus(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	user, err := h.userService.ToggleStatus(c.Request.Context(), id, auth.MustGet(c))
	if err != nil {
		h.fail(c, err, constants.ErrUserNotFound)
		return
	}
	h.notify(c, "用户状态已更新")
	response.Written(c, constants.SuccessToggle, user, usersIndex)
}

// ResetToken 重置用户Token
func (h *UserAdminHandler) ResetToken(c *gin.Context) {
	id, ok := response.ID(c)
	if !ok {
		return
	}
	token, err := h.userService.ResetToken(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, constants.ErrUserNotFound)
		return
	}
	h.logger.Info("用户Token已重置", "user_id", id, "operator", auth.MustGet(c).UserID)
	response.Written(c, constants.SuccessUpdate, gin.H{"token": token}, usersIndex)
}
