package types

// CategoryCreateRequest 创建分类
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	Slug        string `json:"slug" binding:"required,slug,max=128"`
	Description string `json:"description" binding:"max=2000"`
}

func (r *CategoryCreateRequest) Attributes() map[string]interface{} {
	return attrs{"name": r.Name, "slug": r.Slug, "description": r.Description}
}

// CategoryUpdateRequest 更新分类
type CategoryUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=128"`
	Slug        *string `json:"slug" binding:"omitempty,slug,max=128"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

func (r *CategoryUpdateRequest) Attributes() map[string]interface{} {
	a := attrs{}
	a.setString("name", r.Name)
	a.setString("slug", r.Slug)
	a.setString("description", r.Description)
	return a
}
