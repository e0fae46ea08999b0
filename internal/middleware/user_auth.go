package middleware

import (
	"context"
	"errors"
	"strings"

	"admincms/internal/auth"
	"admincms/internal/constants"
	"admincms/internal/model"
	"admincms/internal/repository"
	"admincms/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TokenResolver 根据token查找用户
type TokenResolver interface {
	GetByToken(ctx context.Context, token string) (*model.User, error)
}

// bearerToken 从 Authorization 头读取token，兼容 "Bearer xxx" 和裸token
func bearerToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// UserAuth 用户认证中间件，认证通过后将操作者写入上下文
func UserAuth(users TokenResolver, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, constants.CodeUnauthorized, constants.ErrUnauthorized)
			return
		}

		user, err := users.GetByToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Error("验证Token失败", "error", err)
				abort(c, constants.CodeInternal, constants.ErrInternalServer)
				return
			}
			abort(c, constants.CodeUnauthorized, constants.ErrInvalidToken)
			return
		}
		if !user.IsActive() {
			abort(c, constants.CodeForbidden, constants.ErrAccountDisabled)
			return
		}

		auth.Set(c, auth.FromUser(user))
		c.Next()
	}
}
