package types

import "time"

// PostCreateRequest 创建文章
type PostCreateRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Slug        string     `json:"slug" binding:"required,slug,max=191"`
	Excerpt     string     `json:"excerpt" binding:"max=500"`
	Body        string     `json:"body" binding:"required"`
	CoverImage  string     `json:"cover_image" binding:"max=255"`
	Status      string     `json:"status" binding:"required,oneof=draft published archived"`
	UserID      *int64     `json:"user_id" binding:"omitempty,gt=0"`
	IsFeatured  *bool      `json:"is_featured"`
	PublishedAt *time.Time `json:"published_at"`
	CategoryIDs []int64    `json:"category_ids" binding:"omitempty,dive,gt=0"`
}

// Attributes 转换为列名到值的映射
func (r *PostCreateRequest) Attributes() map[string]interface{} {
	a := attrs{}
	a.set("title", r.Title)
	a.set("slug", r.Slug)
	a.set("excerpt", r.Excerpt)
	a.set("body", r.Body)
	a.set("cover_image", r.CoverImage)
	a.set("status", r.Status)
	a.setInt64("user_id", r.UserID)
	a.setBool("is_featured", r.IsFeatured)
	if r.PublishedAt != nil {
		a.set("published_at", *r.PublishedAt)
	}
	return a
}

// PostUpdateRequest 更新文章，只有提交的字段会被修改
//
// CategoryIDs 为 nil 时不修改分类，空数组表示清空。
type PostUpdateRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Slug        *string    `json:"slug" binding:"omitempty,slug,max=191"`
	Excerpt     *string    `json:"excerpt" binding:"omitempty,max=500"`
	Body        *string    `json:"body" binding:"omitempty,min=1"`
	CoverImage  *string    `json:"cover_image" binding:"omitempty,max=255"`
	Status      *string    `json:"status" binding:"omitempty,oneof=draft published archived"`
	UserID      *int64     `json:"user_id" binding:"omitempty,gt=0"`
	IsFeatured  *bool      `json:"is_featured"`
	PublishedAt *time.Time `json:"published_at"`
	CategoryIDs []int64    `json:"category_ids" binding:"omitempty,dive,gt=0"`
}

// Attributes 转换为列名到值的映射
func (r *PostUpdateRequest) Attributes() map[string]interface{} {
	a := attrs{}
	a.setString("title", r.Title)
	a.setString("slug", r.Slug)
	a.setString("excerpt", r.Excerpt)
	a.setString("body", r.Body)
	a.setString("cover_image", r.CoverImage)
	a.setString("status", r.Status)
	a.setInt64("user_id", r.UserID)
	a.setBool("is_featured", r.IsFeatured)
	if r.PublishedAt != nil {
		a.set("published_at", *r.PublishedAt)
	}
	return a
}
