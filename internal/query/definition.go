package query

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"admincms/internal/auth"

	"github.com/jmoiron/sqlx"
)

// trashedFilter 软删除过滤参数名，取值 with 或 only
const trashedFilter = "trashed"

// PageSizes 每页条数允许列表
type PageSizes struct {
	Allowed []int
	Default int
}

// DefaultPageSizes 默认分页设置
var DefaultPageSizes = PageSizes{Allowed: []int{10, 25, 50, 100}, Default: 10}

// Resolve 不在允许列表中的值回退为默认值
func (s PageSizes) Resolve(n int) int {
	for _, a := range s.Allowed {
		if a == n {
			return n
		}
	}
	if s.Default > 0 {
		return s.Default
	}
	return DefaultPageSizes.Default
}

// Definition 描述一个可过滤、搜索、排序、分页的数据表
type Definition struct {
	Table   string
	Columns []string

	// Base 总是附加的条件
	Base []Condition
	// Filters 以 filter[name] 请求的命名过滤片段
	Filters map[string]Scope
	// Searchable 参与 search 的列
	Searchable []string
	// Sortable 排序键到列的映射
	Sortable map[string]string
	// DefaultSort 无排序或排序键未知时使用，例如 "-created_at"
	DefaultSort string
	PrimaryKey  string

	// OwnerColumn 非空时按操作者过滤，管理员可通过 scope=all 显式跳过
	OwnerColumn string
	// SoftDelete 软删除列，默认排除已删除记录
	SoftDelete string
	// TrashedFilter 是否接受 filter[trashed]
	TrashedFilter bool
	// DateColumn date_from/date_to 作用的列
	DateColumn string

	Pages PageSizes
}

// WithPageSizes 返回使用指定分页设置的副本
func (d Definition) WithPageSizes(pages PageSizes) *Definition {
	d.Pages = pages
	return &d
}

func (d *Definition) pageSizes() PageSizes {
	if len(d.Pages.Allowed) == 0 {
		return DefaultPageSizes
	}
	return d.Pages
}

func (d *Definition) primaryKey() string {
	if d.PrimaryKey == "" {
		return "id"
	}
	return d.PrimaryKey
}

// SelectColumns 逗号连接的查询列
func (d *Definition) SelectColumns() string {
	if len(d.Columns) == 0 {
		return "*"
	}
	return strings.Join(d.Columns, ", ")
}

// Build 根据请求参数、操作者和参考时间生成查询
func (d *Definition) Build(p Params, viewer auth.Principal, now time.Time) *Query {
	q := &Query{
		def:     d,
		Page:    p.Page,
		PerPage: d.pageSizes().Resolve(p.PerPage),
	}
	if q.Page < 1 {
		q.Page = 1
	}

	for _, c := range d.Base {
		q.add(c)
	}

	if d.OwnerColumn != "" && !(viewer.IsElevated() && p.All) {
		q.add(Where(d.OwnerColumn+" = ?", viewer.UserID))
	}

	if d.SoftDelete != "" {
		trashed := ""
		if d.TrashedFilter {
			trashed = p.Filters[trashedFilter]
		}
		switch trashed {
		case "with":
		case "only":
			q.add(Where(d.SoftDelete + " IS NOT NULL"))
		default:
			q.add(Where(d.SoftDelete + " IS NULL"))
		}
	}

	// 按名称排序保证生成的SQL稳定
	names := make([]string, 0, len(p.Filters))
	for name := range p.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		scope, ok := d.Filters[name]
		value := p.Filters[name]
		if !ok || value == "" {
			continue
		}
		if c, ok := scope(value, now); ok {
			q.add(c)
		}
	}

	if d.DateColumn != "" {
		if c, ok := dateRange(d.DateColumn, p.DateFrom, p.DateTo, now.Location()); ok {
			q.add(c)
		}
	}

	if p.Search != "" && len(d.Searchable) > 0 {
		q.add(search(d.Searchable, p.Search))
	}

	q.orderBy = d.orderBy(p.Sort)
	return q
}

// orderBy 生成排序子句，主键作为同方向的次级排序保证分页稳定
func (d *Definition) orderBy(requested string) string {
	key, desc := parseSort(requested)
	column, ok := d.Sortable[key]
	if !ok {
		key, desc = parseSort(d.DefaultSort)
		if column, ok = d.Sortable[key]; !ok {
			column = key
		}
	}
	pk := d.primaryKey()
	if column == "" {
		column = pk
	}

	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	if column == pk {
		return column + " " + dir
	}
	return column + " " + dir + ", " + pk + " " + dir
}

func parseSort(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return strings.TrimSpace(s[1:]), true
	}
	return strings.TrimSpace(strings.TrimPrefix(s, "+")), false
}

// Query 构建完成的列表查询
type Query struct {
	def        *Definition
	conditions []Condition
	orderBy    string

	Page    int
	PerPage int
	// Empty 为 true 时结果必然为空，无需访问数据库
	Empty bool
}

func (q *Query) add(c Condition) {
	if c.IsNone() {
		q.Empty = true
		return
	}
	q.conditions = append(q.conditions, c)
}

// Offset 当前页偏移量，页码过大时取 math.MaxInt 而不是溢出
func (q *Query) Offset() int {
	if q.PerPage > 0 && q.Page-1 > math.MaxInt/q.PerPage {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PerPage
}

// PastEnd 当前页是否已超出 total 条记录的末页
func (q *Query) PastEnd(total int64) bool {
	if q.PerPage <= 0 {
		return false
	}
	return int64(q.Page-1) >= (total+int64(q.PerPage)-1)/int64(q.PerPage)
}

// OrderBy 排序子句
func (q *Query) OrderBy() string {
	return q.orderBy
}

func (q *Query) where() (string, []interface{}) {
	if len(q.conditions) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(q.conditions))
	var args []interface{}
	for _, c := range q.conditions {
		parts = append(parts, c.SQL)
		args = append(args, c.Args...)
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// SelectSQL 当前页的查询语句
func (q *Query) SelectSQL() (string, []interface{}, error) {
	where, args := q.where()
	stmt := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT ? OFFSET ?",
		q.def.SelectColumns(), q.def.Table, where, q.orderBy)
	args = append(args, q.PerPage, q.Offset())
	return sqlx.In(stmt, args...)
}

// CountSQL 符合条件的总数查询语句
func (q *Query) CountSQL() (string, []interface{}, error) {
	where, args := q.where()
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", q.def.Table, where)
	return sqlx.In(stmt, args...)
}
