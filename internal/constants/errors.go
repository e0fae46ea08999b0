package constants

// 通用错误消息
const (
	// 认证相关错误
	ErrUnauthorized           = "未授权，请先登录"
	ErrInvalidToken           = "无效的Token"
	ErrInsufficientPermission = "权限不足"
	ErrAccountDisabled        = "账号已被禁用"
	ErrLoginFailed            = "用户名或密码错误"

	// 参数相关错误
	ErrInvalidParams  = "参数错误"
	ErrInvalidRequest = "无效请求格式"
	ErrInvalidID      = "无效的ID"
	ErrValidation     = "提交的数据有误"
	ErrFileRequired   = "请选择要上传的文件"

	// 资源相关错误
	ErrNotFound          = "记录不存在"
	ErrPostNotFound      = "文章不存在"
	ErrCategoryNotFound  = "分类不存在"
	ErrZoneNotFound      = "广告位不存在"
	ErrAdNotFound        = "广告不存在"
	ErrUserNotFound      = "用户不存在"
	ErrMediaNotFound     = "文件不存在"
	ErrForbiddenResource = "无权操作该记录"

	// 系统错误
	ErrInternalServer       = "服务器内部错误"
	ErrOperationTooFrequent = "请求过于频繁，请稍后重试"
)

// 成功消息
const (
	SuccessLogin   = "登录成功"
	SuccessCreate  = "创建成功"
	SuccessUpdate  = "更新成功"
	SuccessDelete  = "删除成功"
	SuccessRestore = "恢复成功"
	SuccessGet     = "获取成功"
	SuccessUpload  = "上传成功"
	SuccessToggle  = "状态已更新"
)

// 业务状态码，与HTTP状态码含义一致
const (
	CodeSuccess         = 200
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeValidation      = 422
	CodeTooManyRequests = 429
	CodeInternal        = 500
)
