package service

import (
	"errors"
	"sort"
	"strings"

	"admincms/internal/repository"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = repository.ErrNotFound
	// ErrForbidden 无权操作该记录
	ErrForbidden = errors.New("无权操作该记录")
	// ErrInvalidCredentials 登录失败
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	// ErrAccountSuspended 账号已停用
	ErrAccountSuspended = errors.New("账号已被停用")
)

// ValidationError 业务校验失败，按字段给出错误信息
type ValidationError struct {
	Fields map[string]string
}

// Invalid 创建单字段的校验错误
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "校验失败: " + strings.Join(parts, "; ")
}

// ValidationFields 如果是校验错误，返回字段错误映射
func ValidationFields(err error) (map[string]string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
