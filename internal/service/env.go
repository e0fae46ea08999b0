package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"admincms/internal/auth"
	"admincms/internal/fillable"
	"admincms/internal/query"
	"admincms/internal/repository"
	"admincms/pkg/cache"
	"admincms/pkg/logger"
)

// 缓存键
const (
	cacheCategoriesAll = "categories:all"
	cacheZonesPrefix   = "zones:"
)

// TaskQueue 异步任务队列
type TaskQueue interface {
	Submit(name string, handler func(ctx context.Context) error) (string, error)
}

// Env 各服务共用的依赖
type Env struct {
	Logger *logger.Logger
	// Cache 可以为空，此时不使用缓存
	Cache *cache.Cache
	// Tasks 可以为空，此时缓存失效同步执行
	Tasks TaskQueue
	Pages query.PageSizes
	Now   func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().Truncate(time.Second)
}

// invalidate 异步删除缓存，队列不可用时同步执行
func (e Env) invalidate(prefixes ...string) {
	if e.Cache == nil || len(prefixes) == 0 {
		return
	}
	task := func(ctx context.Context) error {
		for _, p := range prefixes {
			if _, err := e.Cache.InvalidatePrefix(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}
	if e.Tasks != nil {
		if _, err := e.Tasks.Submit("cache.invalidate", task); err == nil {
			return
		}
	}
	if err := task(context.Background()); err != nil {
		e.Logger.Warn("清除缓存失败", "prefixes", prefixes, "error", err)
	}
}

// writable 按白名单过滤属性，被去掉的字段记录到调试日志
func (e Env) writable(w fillable.Whitelist, resource string, attrs map[string]interface{}, op fillable.Operation, viewer auth.Principal) map[string]interface{} {
	kept, stripped := w.Filter(attrs, op, viewer)
	if len(stripped) > 0 {
		e.Logger.Debug("忽略不允许写入的字段", "resource", resource, "operation", op.String(), "user_id", viewer.UserID, "fields", stripped)
	}
	return kept
}

// checkOwner 管理员指定的所有者必须是存在的用户
func checkOwner(ctx context.Context, users repository.UserRepository, field string, attrs map[string]interface{}) error {
	v, ok := attrs[field]
	if !ok {
		return nil
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return Invalid(field, "用户不存在")
	}
	if _, err := users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Invalid(field, "用户不存在")
		}
		return err
	}
	return nil
}

func stamp(attrs map[string]interface{}, now time.Time, created bool) map[string]interface{} {
	if created {
		attrs["created_at"] = now
	}
	attrs["updated_at"] = now
	return attrs
}

// uniqueIDs 去重并排序
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FormOptions 表单页需要的数据
type FormOptions struct {
	Fields     []string         `json:"fields"`
	Statuses   []string         `json:"statuses,omitempty"`
	Roles      []string         `json:"roles,omitempty"`
	Categories []CategoryOption `json:"categories,omitempty"`
	Zones      []ZoneOption     `json:"zones,omitempty"`
}

// CategoryOption 分类选项
type CategoryOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ZoneOption 广告位选项
type ZoneOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
