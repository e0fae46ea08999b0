package model

import (
	"strings"
	"time"
)

// 文章状态
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// PostStatuses 所有合法文章状态
var PostStatuses = []string{PostStatusDraft, PostStatusPublished, PostStatusArchived}

// wordsPerMinute 阅读速度
const wordsPerMinute = 200

// Post 文章模型
type Post struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Excerpt     string     `db:"excerpt" json:"excerpt"`
	Body        string     `db:"body" json:"body"`
	CoverImage  string     `db:"cover_image" json:"cover_image"`
	Status      string     `db:"status" json:"status"`
	IsFeatured  bool       `db:"is_featured" json:"is_featured"`
	PublishedAt *time.Time `db:"published_at" json:"published_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`

	Categories []Category `db:"-" json:"categories,omitempty"`
	Media      []Media    `db:"-" json:"media,omitempty"`
}

// ReadingMinutes 预计阅读分钟数
func (p *Post) ReadingMinutes() int {
	words := len(strings.Fields(p.Body))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// IsTrashed 是否已软删除
func (p *Post) IsTrashed() bool {
	return p.DeletedAt != nil
}

// PostView 文章返回结构，附带计算属性
type PostView struct {
	*Post
	ReadingMinutes int `json:"reading_minutes"`
}

// View 生成带计算属性的返回结构
func (p *Post) View() PostView {
	return PostView{Post: p, ReadingMinutes: p.ReadingMinutes()}
}
