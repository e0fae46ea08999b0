package query

import (
	"strconv"
	"strings"
	"time"
)

// Condition 一个 WHERE 片段，使用 ? 占位符；切片参数由 sqlx.In 展开
type Condition struct {
	SQL  string
	Args []interface{}
	none bool
}

// Where 构造条件片段
func Where(sql string, args ...interface{}) Condition {
	return Condition{SQL: sql, Args: args}
}

// None 不匹配任何记录的条件，查询直接返回空页
func None() Condition {
	return Condition{none: true}
}

// IsNone 是否为空结果条件
func (c Condition) IsNone() bool {
	return c.none
}

// Scope 命名的可复用过滤片段
//
// 返回 false 表示该值无法识别，过滤条件被忽略。
type Scope func(value string, now time.Time) (Condition, bool)

// Equals 列等于给定值
func Equals(column string) Scope {
	return func(value string, _ time.Time) (Condition, bool) {
		return Where(column+" = ?", value), true
	}
}

// OneOf 列等于给定值，值必须在允许列表中
func OneOf(column string, allowed ...string) Scope {
	return func(value string, _ time.Time) (Condition, bool) {
		for _, a := range allowed {
			if a == value {
				return Where(column+" = ?", value), true
			}
		}
		return Condition{}, false
	}
}

// Bool 布尔列，接受 1/0、true/false、yes/no
func Bool(column string) Scope {
	return func(value string, _ time.Time) (Condition, bool) {
		switch strings.ToLower(value) {
		case "1", "true", "yes":
			return Where(column+" = ?", true), true
		case "0", "false", "no":
			return Where(column+" = ?", false), true
		}
		return Condition{}, false
	}
}

// ID 列等于正整数ID
func ID(column string) Scope {
	return func(value string, _ time.Time) (Condition, bool) {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id <= 0 {
			return Condition{}, false
		}
		return Where(column+" = ?", id), true
	}
}

// IDList 列属于逗号分隔的ID列表，非法ID被跳过
func IDList(column string) Scope {
	return func(value string, _ time.Time) (Condition, bool) {
		ids := ParseIDs(value)
		if len(ids) == 0 {
			return Condition{}, false
		}
		return Where(column+" IN (?)", ids), true
	}
}

// Related 通过中间表过滤：column IN (SELECT localKey FROM pivot WHERE foreignKey = ?)
func Related(column, pivot, localKey, foreignKey string) Scope {
	return func(value string, _ time.Time) (Condition, bool) {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id <= 0 {
			return Condition{}, false
		}
		return Where(column+" IN (SELECT "+localKey+" FROM "+pivot+" WHERE "+foreignKey+" = ?)", id), true
	}
}

// QuickDate 快捷日期过滤，例如 today、this_week、last_30_days
func QuickDate(column string) Scope {
	return func(value string, now time.Time) (Condition, bool) {
		from, to, ok := QuickRange(value, now)
		if !ok {
			return Condition{}, false
		}
		return Where(column+" >= ? AND "+column+" < ?", from, to), true
	}
}

// ParseIDs 解析逗号分隔的正整数ID，去重并保持顺序
func ParseIDs(value string) []int64 {
	var ids []int64
	seen := map[int64]bool{}
	for _, part := range strings.Split(value, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// search 在多个列上做不区分大小写的子串匹配
func search(columns []string, term string) Condition {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col+" LIKE ? ESCAPE '!'")
		args = append(args, pattern)
	}
	return Where("("+strings.Join(parts, " OR ")+")", args...)
}
