package middleware

import (
	"admincms/internal/auth"
	"admincms/internal/constants"

	"github.com/gin-gonic/gin"
)

// RequireStaff 只允许管理员和编辑访问后台，必须在 UserAuth 之后使用
func RequireStaff() gin.HandlerFunc {
	return require(auth.Principal.IsStaff)
}

// RequireAdmin 只允许管理员访问
func RequireAdmin() gin.HandlerFunc {
	return require(auth.Principal.IsElevated)
}

func require(allowed func(auth.Principal) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.Get(c)
		if !ok {
			abort(c, constants.CodeUnauthorized, constants.ErrUnauthorized)
			return
		}
		if !allowed(p) {
			abort(c, constants.CodeForbidden, constants.ErrInsufficientPermission)
			return
		}
		c.Next()
	}
}
