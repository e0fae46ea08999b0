package repository

import (
	"time"

	"admincms/internal/model"
	"admincms/internal/query"
)

var postColumns = []string{
	"id", "user_id", "title", "slug", "excerpt", "body", "cover_image", "status",
	"is_featured", "published_at", "created_at", "updated_at", "deleted_at",
}

// PostQuery 后台文章列表，按作者限定范围
var PostQuery = query.Definition{
	Table:   "posts",
	Columns: postColumns,
	Filters: map[string]query.Scope{
		"status":    query.OneOf("status", model.PostStatuses...),
		"featured":  query.Bool("is_featured"),
		"category":  query.Related("id", "post_categories", "post_id", "category_id"),
		"author":    query.ID("user_id"),
		"created":   query.QuickDate("created_at"),
		"published": query.QuickDate("published_at"),
	},
	Searchable: []string{"title", "excerpt", "body"},
	Sortable: map[string]string{
		"id":           "id",
		"title":        "title",
		"status":       "status",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
		"published_at": "published_at",
	},
	DefaultSort:   "-created_at",
	OwnerColumn:   "user_id",
	SoftDelete:    "deleted_at",
	TrashedFilter: true,
	DateColumn:    "created_at",
}

// PublishedPostQuery 前台文章列表
var PublishedPostQuery = query.Definition{
	Table:   "posts",
	Columns: postColumns,
	Base:    []query.Condition{query.Where("status = ?", model.PostStatusPublished)},
	Filters: map[string]query.Scope{
		"featured": query.Bool("is_featured"),
		"category": query.Related("id", "post_categories", "post_id", "category_id"),
		"author":   query.ID("user_id"),
	},
	Searchable:  []string{"title", "excerpt"},
	Sortable:    map[string]string{"title": "title", "published_at": "published_at"},
	DefaultSort: "-published_at",
	SoftDelete:  "deleted_at",
	DateColumn:  "published_at",
}

// CategoryQuery 分类列表，posts_count 只统计未删除的文章
var CategoryQuery = query.Definition{
	Table: "categories",
	Columns: []string{
		"id", "name", "slug", "COALESCE(description, '') AS description", "created_at", "updated_at",
		"(SELECT COUNT(*) FROM post_categories pc JOIN posts p ON p.id = pc.post_id WHERE pc.category_id = categories.id AND p.deleted_at IS NULL) AS posts_count",
	},
	Filters: map[string]query.Scope{
		"created": query.QuickDate("created_at"),
	},
	Searchable: []string{"name", "slug", "description"},
	Sortable: map[string]string{
		"id":          "id",
		"name":        "name",
		"slug":        "slug",
		"posts_count": "posts_count",
		"created_at":  "created_at",
	},
	DefaultSort: "-created_at",
	DateColumn:  "created_at",
}

// AdZoneQuery 广告位列表
var AdZoneQuery = query.Definition{
	Table: "ad_zones",
	Columns: []string{
		"id", "name", "slug", "COALESCE(description, '') AS description",
		"width", "height", "is_active", "created_at", "updated_at",
	},
	Filters: map[string]query.Scope{
		"active": query.Bool("is_active"),
	},
	Searchable: []string{"name", "slug"},
	Sortable: map[string]string{
		"id":         "id",
		"name":       "name",
		"width":      "width",
		"height":     "height",
		"created_at": "created_at",
	},
	DefaultSort: "-created_at",
	DateColumn:  "created_at",
}

// AdvertisementQuery 广告列表，按创建者限定范围
var AdvertisementQuery = query.Definition{
	Table: "advertisements",
	Columns: []string{
		"id", "ad_zone_id", "created_by", "title", "COALESCE(description, '') AS description",
		"image", "link_url", "status", "priority", "start_time", "end_time", "created_at", "updated_at",
	},
	Filters: map[string]query.Scope{
		"status":  query.OneOf("status", model.AdStatuses...),
		"zone":    query.ID("ad_zone_id"),
		"running": runningScope,
		"created": query.QuickDate("created_at"),
	},
	Searchable: []string{"title", "description"},
	Sortable: map[string]string{
		"id":         "id",
		"title":      "title",
		"priority":   "priority",
		"start_time": "start_time",
		"end_time":   "end_time",
		"created_at": "created_at",
	},
	DefaultSort: "-created_at",
	OwnerColumn: "created_by",
	DateColumn:  "start_time",
}

// runningScope 投放中的广告，与 Advertisement.IsRunning 判断一致
func runningScope(value string, now time.Time) (query.Condition, bool) {
	switch value {
	case "1", "true", "yes":
		return query.Where("status = ? AND start_time <= ? AND (end_time IS NULL OR end_time > ?)",
			model.AdStatusActive, now, now), true
	case "0", "false", "no":
		return query.Where("NOT (status = ? AND start_time <= ? AND (end_time IS NULL OR end_time > ?))",
			model.AdStatusActive, now, now), true
	}
	return query.Condition{}, false
}

// UserQuery 用户列表，不查询密码和令牌
var UserQuery = query.Definition{
	Table:   "users",
	Columns: []string{"id", "username", "name", "email", "role", "status", "created_at", "updated_at"},
	Filters: map[string]query.Scope{
		"role":    query.OneOf("role", model.Roles...),
		"status":  query.OneOf("status", model.UserStatusActive, model.UserStatusSuspended),
		"created": query.QuickDate("created_at"),
	},
	Searchable: []string{"username", "name", "email"},
	Sortable: map[string]string{
		"id":         "id",
		"username":   "username",
		"name":       "name",
		"email":      "email",
		"created_at": "created_at",
	},
	DefaultSort: "-created_at",
	DateColumn:  "created_at",
}

// MediaQuery 上传文件列表，按上传者限定范围
var MediaQuery = query.Definition{
	Table: "media",
	Columns: []string{
		"id", "user_id", "disk", "path", "original_name", "mime_type", "size",
		"attachable_type", "attachable_id", "created_at",
	},
	Filters: map[string]query.Scope{
		"type": query.OneOf("attachable_type", model.AttachablePost, model.AttachableAdvertisement),
		"mime": query.Equals("mime_type"),
	},
	Searchable: []string{"original_name"},
	Sortable: map[string]string{
		"id":            "id",
		"size":          "size",
		"original_name": "original_name",
		"created_at":    "created_at",
	},
	DefaultSort: "-created_at",
	OwnerColumn: "user_id",
	DateColumn:  "created_at",
}
