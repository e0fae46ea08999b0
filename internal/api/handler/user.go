package handler

import (
	"admincms/internal/api/response"
	"admincms/internal/auth"
	"admincms/internal/constants"
	"admincms/internal/service"
	"admincms/internal/types"
	"admincms/pkg/logger"

	"github.com/gin-gonic/gin"
)

// UserHandler 登录和当前用户处理器
type UserHandler struct {
	userService service.UserService
	logger      *logger.Logger
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userService service.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// Login 使用用户名或邮箱登录，返回Token
// @Summary 用户登录
// @Tags 用户
// @Accept json
// @Produce json
// @Router /api/v1/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		response.Error(c, h.logger, err, "")
		return
	}

	h.logger.Info("用户登录", "user_id", user.ID, "client_ip", c.ClientIP())
	response.OK(c, constants.SuccessLogin, gin.H{
		"token": user.Token,
		"user":  user,
	})
}

// Me 当前登录用户信息
func (h *UserHandler) Me(c *gin.Context) {
	p := auth.MustGet(c)
	user, err := h.userService.Get(c.Request.Context(), p.UserID)
	if err != nil {
		response.Error(c, h.logger, err, constants.ErrUserNotFound)
		return
	}
	response.OK(c, constants.SuccessGet, user)
}
