package fillable

import (
	"sort"

	"admincms/internal/auth"
)

// Operation 写操作类型
type Operation int

const (
	Create Operation = iota
	Update
)

func (op Operation) String() string {
	if op == Create {
		return "create"
	}
	return "update"
}

// Whitelist 可写字段白名单
//
// 实际允许的字段为 Base，加上管理员的 Elevated，再加上仅创建时可写的
// CreateOnly 或仅更新时可写的 UpdateOnly。
type Whitelist struct {
	Base       []string
	Elevated   []string
	CreateOnly []string
	UpdateOnly []string
}

// Allowed 返回指定操作和操作者可写的字段集合
func (w Whitelist) Allowed(op Operation, p auth.Principal) map[string]bool {
	allowed := make(map[string]bool, len(w.Base)+len(w.Elevated)+len(w.CreateOnly))
	add := func(fields []string) {
		for _, f := range fields {
			allowed[f] = true
		}
	}
	add(w.Base)
	if p.IsElevated() {
		add(w.Elevated)
	}
	switch op {
	case Create:
		add(w.CreateOnly)
	case Update:
		add(w.UpdateOnly)
	}
	return allowed
}

// Fields 可写字段列表，按字母排序
func (w Whitelist) Fields(op Operation, p auth.Principal) []string {
	allowed := w.Allowed(op, p)
	fields := make([]string, 0, len(allowed))
	for f := range allowed {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Filter 去掉不允许写入的字段，返回保留的字段和被去掉的字段名
func (w Whitelist) Filter(attrs map[string]interface{}, op Operation, p auth.Principal) (map[string]interface{}, []string) {
	allowed := w.Allowed(op, p)
	kept := make(map[string]interface{}, len(attrs))
	var stripped []string
	for k, v := range attrs {
		if allowed[k] {
			kept[k] = v
			continue
		}
		stripped = append(stripped, k)
	}
	sort.Strings(stripped)
	return kept, stripped
}

// 各资源的白名单
var (
	Post = Whitelist{
		Base:       []string{"title", "excerpt", "body", "cover_image", "status"},
		Elevated:   []string{"user_id", "is_featured", "published_at"},
		CreateOnly: []string{"slug"},
	}
	Category = Whitelist{
		Base:       []string{"name", "description"},
		CreateOnly: []string{"slug"},
	}
	AdZone = Whitelist{
		Base:       []string{"name", "description", "width", "height", "is_active"},
		CreateOnly: []string{"slug"},
	}
	Advertisement = Whitelist{
		Base:     []string{"ad_zone_id", "title", "description", "image", "link_url", "priority", "start_time", "end_time", "status"},
		Elevated: []string{"created_by"},
	}
	User = Whitelist{
		Base:       []string{"name", "email", "password"},
		Elevated:   []string{"role", "status"},
		CreateOnly: []string{"username"},
	}
)
