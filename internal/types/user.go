package types

// UserCreateRequest 创建用户
type UserCreateRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=64"`
	Name     string `json:"name" binding:"max=128"`
	Email    string `json:"email" binding:"required,email,max=191"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=admin editor user"`
	Status   string `json:"status" binding:"omitempty,oneof=active suspended"`
}

// Attributes 密码为明文，由服务层加密
func (r *UserCreateRequest) Attributes() map[string]interface{} {
	a := attrs{
		"username": r.Username,
		"name":     r.Name,
		"email":    r.Email,
		"password": r.Password,
	}
	if r.Role != "" {
		a.set("role", r.Role)
	}
	if r.Status != "" {
		a.set("status", r.Status)
	}
	return a
}

// UserUpdateRequest 更新用户
type UserUpdateRequest struct {
	Username *string `json:"username" binding:"omitempty,alphanum,min=3,max=64"`
	Name     *string `json:"name" binding:"omitempty,max=128"`
	Email    *string `json:"email" binding:"omitempty,email,max=191"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin editor user"`
	Status   *string `json:"status" binding:"omitempty,oneof=active suspended"`
}

func (r *UserUpdateRequest) Attributes() map[string]interface{} {
	a := attrs{}
	a.setString("username", r.Username)
	a.setString("name", r.Name)
	a.setString("email", r.Email)
	a.setString("password", r.Password)
	a.setString("role", r.Role)
	a.setString("status", r.Status)
	return a
}
