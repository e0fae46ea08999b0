package types

// LoginRequest 登录请求，login 可以是用户名或邮箱
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UploadRequest 上传文件的附加表单字段
type UploadRequest struct {
	AttachableType string `form:"attachable_type" binding:"omitempty,oneof=post advertisement"`
	AttachableID   int64  `form:"attachable_id" binding:"omitempty,gt=0"`
}

// attrs 只收集非空指针字段
type attrs map[string]interface{}

func (a attrs) set(column string, v interface{}) {
	a[column] = v
}

func (a attrs) setString(column string, v *string) {
	if v != nil {
		a[column] = *v
	}
}

func (a attrs) setInt(column string, v *int) {
	if v != nil {
		a[column] = *v
	}
}

func (a attrs) setInt64(column string, v *int64) {
	if v != nil {
		a[column] = *v
	}
}

func (a attrs) setBool(column string, v *bool) {
	if v != nil {
		a[column] = *v
	}
}
