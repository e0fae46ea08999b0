package auth

import (
	"admincms/internal/model"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Principal 当前请求的操作者
type Principal struct {
	UserID   int64
	Username string
	Role     model.Role
}

// FromUser 从用户记录构造操作者
func FromUser(u *model.User) Principal {
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// IsElevated 是否拥有提升权限（管理员）
func (p Principal) IsElevated() bool {
	return p.Role == model.RoleAdmin
}

// IsStaff 是否可以进入管理后台
func (p Principal) IsStaff() bool {
	return p.Role == model.RoleAdmin || p.Role == model.RoleEditor
}

// Owns 是否为记录的拥有者
func (p Principal) Owns(ownerID int64) bool {
	return p.UserID != 0 && p.UserID == ownerID
}

// CanAccess 拥有者或管理员可以访问单条记录
func (p Principal) CanAccess(ownerID int64) bool {
	return p.IsElevated() || p.Owns(ownerID)
}

// Set 将操作者写入请求上下文
func Set(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
	c.Set("user_id", p.UserID)
}

// Get 读取请求上下文中的操作者，未登录时返回零值
func Get(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// MustGet 读取操作者，只能在认证中间件之后使用
func MustGet(c *gin.Context) Principal {
	p, _ := Get(c)
	return p
}
