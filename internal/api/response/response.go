// Package response 统一的JSON响应格式
//
// 所有响应的HTTP状态码都是200，结果由 code 字段区分：
//
//	{"code":200,"msg":"获取成功","data":...,"pagination":{...},"flash":{...}}
//	{"code":422,"msg":"提交的数据有误","errors":{"slug":"该slug已被使用"}}
package response

import (
	"errors"
	"net/http"
	"strconv"

	"admincms/internal/constants"
	"admincms/internal/query"
	"admincms/internal/service"
	"admincms/internal/types"
	"admincms/pkg/flash"
	"admincms/pkg/logger"
	"admincms/pkg/metrics"

	"github.com/gin-gonic/gin"
)

func write(c *gin.Context, body gin.H) {
	metrics.SetCode(c, body["code"].(int))
	c.JSON(http.StatusOK, body)
}

// OK 成功响应
func OK(c *gin.Context, msg string, data interface{}) {
	write(c, gin.H{"code": constants.CodeSuccess, "msg": msg, "data": data})
}

// List 列表响应，msg 为待显示的一次性消息，可以为空
func List[T any](c *gin.Context, page *query.Page[T], msg *flash.Message) {
	body := gin.H{
		"code":       constants.CodeSuccess,
		"msg":        constants.SuccessGet,
		"data":       page.Items,
		"pagination": page.Pagination,
	}
	if msg != nil {
		body["flash"] = msg
	}
	write(c, body)
}

// Written 写操作成功，redirect 为前端应跳转的列表地址
func Written(c *gin.Context, msg string, data interface{}, redirect string) {
	body := gin.H{"code": constants.CodeSuccess, "msg": msg, "data": data}
	if redirect != "" {
		body["redirect"] = redirect
	}
	write(c, body)
}

// Fail 失败响应
func Fail(c *gin.Context, code int, msg string) {
	write(c, gin.H{"code": code, "msg": msg})
}

// Invalid 字段校验失败
func Invalid(c *gin.Context, fields map[string]string) {
	write(c, gin.H{"code": constants.CodeValidation, "msg": constants.ErrValidation, "errors": fields})
}

// BindError 请求绑定失败
func BindError(c *gin.Context, err error) {
	Invalid(c, types.ValidationErrors(err))
}

// Error 将服务层错误转换为响应，未预期的错误记录日志并返回通用消息
func Error(c *gin.Context, log *logger.Logger, err error, notFound string) {
	if fields, ok := service.ValidationFields(err); ok {
		Invalid(c, fields)
		return
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		if notFound == "" {
			notFound = constants.ErrNotFound
		}
		Fail(c, constants.CodeNotFound, notFound)
	case errors.Is(err, service.ErrForbidden):
		Fail(c, constants.CodeForbidden, constants.ErrForbiddenResource)
	case errors.Is(err, service.ErrInvalidCredentials):
		Fail(c, constants.CodeUnauthorized, constants.ErrLoginFailed)
	case errors.Is(err, service.ErrAccountSuspended):
		Fail(c, constants.CodeForbidden, constants.ErrAccountDisabled)
	default:
		log.Error("请求处理失败", "error", err, "method", c.Request.Method, "path", c.FullPath())
		Fail(c, constants.CodeInternal, constants.ErrInternalServer)
	}
}

// ID 读取路径中的正整数ID，无效时写入响应并返回 false
func ID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		Fail(c, constants.CodeBadRequest, constants.ErrInvalidID)
		return 0, false
	}
	return id, true
}
