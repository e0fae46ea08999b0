package query

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admincms/internal/auth"
	"admincms/internal/model"
)

var (
	testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	editor  = auth.Principal{UserID: 2, Username: "editor", Role: model.RoleEditor}
	admin   = auth.Principal{UserID: 1, Username: "admin", Role: model.RoleAdmin}
)

func itemDefinition() *Definition {
	return &Definition{
		Table:   "items",
		Columns: []string{"id", "name", "status", "owner_id", "created_at"},
		Filters: map[string]Scope{
			"status":  OneOf("status", "active", "inactive"),
			"owner":   ID("owner_id"),
			"created": QuickDate("created_at"),
		},
		Searchable:    []string{"name"},
		Sortable:      map[string]string{"name": "name", "created_at": "created_at", "id": "id"},
		DefaultSort:   "-created_at",
		OwnerColumn:   "owner_id",
		SoftDelete:    "deleted_at",
		TrashedFilter: true,
		DateColumn:    "created_at",
	}
}

func TestBuildDefaults(t *testing.T) {
	q := itemDefinition().Build(Params{}, admin, testNow)

	stmt, args, err := q.SelectSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, status, owner_id, created_at FROM items WHERE owner_id = ? AND deleted_at IS NULL ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", stmt)
	assert.Equal(t, []interface{}{int64(1), 10, 0}, args)
	assert.Equal(t, 1, q.Page)
	assert.False(t, q.Empty)
}

func TestBuildElevatedBypassNeedsExplicitScope(t *testing.T) {
	def := itemDefinition()

	stmt, _, err := def.Build(Params{All: true}, admin, testNow).CountSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM items WHERE deleted_at IS NULL", stmt)

	// 非管理员请求 scope=all 无效
	stmt, args, err := def.Build(Params{All: true}, editor, testNow).CountSQL()
	require.NoError(t, err)
	assert.Contains(t, stmt, "owner_id = ?")
	assert.Equal(t, []interface{}{int64(2)}, args)
}

func TestBuildComposesFiltersInNameOrder(t *testing.T) {
	p := Params{
		Search:  "50%_off",
		Filters: map[string]string{"status": "active", "owner": "7", "unknown": "x"},
		Sort:    "name",
		All:     true,
	}
	stmt, args, err := itemDefinition().Build(p, admin, testNow).CountSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM items WHERE deleted_at IS NULL AND owner_id = ? AND status = ? AND (name LIKE ? ESCAPE '!')", stmt)
	assert.Equal(t, []interface{}{int64(7), "active", "%50!%!_off%"}, args)
}

func TestBuildIgnoresUnknownSortAndBadValues(t *testing.T) {
	p := Params{Sort: "-password", Filters: map[string]string{"status": "deleted", "owner": "abc"}, All: true}
	q := itemDefinition().Build(p, admin, testNow)

	stmt, _, err := q.SelectSQL()
	require.NoError(t, err)
	assert.Contains(t, stmt, "WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC")
}

func TestBuildSortDirection(t *testing.T) {
	def := itemDefinition()
	assert.Equal(t, "name ASC, id ASC", def.Build(Params{Sort: "name"}, admin, testNow).OrderBy())
	assert.Equal(t, "name ASC, id ASC", def.Build(Params{Sort: "+name"}, admin, testNow).OrderBy())
	assert.Equal(t, "name DESC, id DESC", def.Build(Params{Sort: "-name"}, admin, testNow).OrderBy())
	assert.Equal(t, "id DESC", def.Build(Params{Sort: "-id"}, admin, testNow).OrderBy())
}

func TestBuildPageSizeFallsBack(t *testing.T) {
	def := itemDefinition()
	assert.Equal(t, 25, def.Build(Params{PerPage: 25}, admin, testNow).PerPage)
	assert.Equal(t, 10, def.Build(Params{PerPage: 7}, admin, testNow).PerPage)
	assert.Equal(t, 10, def.Build(Params{PerPage: -1}, admin, testNow).PerPage)

	custom := def.WithPageSizes(PageSizes{Allowed: []int{20, 40}, Default: 20})
	q := custom.Build(Params{PerPage: 10, Page: 3}, admin, testNow)
	assert.Equal(t, 20, q.PerPage)
	assert.Equal(t, 40, q.Offset())
	// 原定义不受影响
	assert.Equal(t, 10, def.Build(Params{}, admin, testNow).PerPage)
}

func TestBuildTrashedFilter(t *testing.T) {
	def := itemDefinition()

	stmt, _, _ := def.Build(Params{Filters: map[string]string{"trashed": "only"}}, admin, testNow).CountSQL()
	assert.Contains(t, stmt, "deleted_at IS NOT NULL")

	stmt, _, _ = def.Build(Params{Filters: map[string]string{"trashed": "with"}}, admin, testNow).CountSQL()
	assert.NotContains(t, stmt, "deleted_at")

	def.TrashedFilter = false
	stmt, _, _ = def.Build(Params{Filters: map[string]string{"trashed": "only"}}, admin, testNow).CountSQL()
	assert.Contains(t, stmt, "deleted_at IS NULL")
}

func TestBuildMalformedDateRangeIsEmpty(t *testing.T) {
	def := itemDefinition()

	assert.True(t, def.Build(Params{DateFrom: "2026-13-01"}, admin, testNow).Empty)
	assert.True(t, def.Build(Params{DateTo: "yesterday"}, admin, testNow).Empty)
	assert.True(t, def.Build(Params{DateFrom: "2026-10-10", DateTo: "2026-10-01"}, admin, testNow).Empty)

	q := def.Build(Params{DateFrom: "2026-10-01", DateTo: "2026-10-01", All: true}, admin, testNow)
	require.False(t, q.Empty)
	stmt, args, err := q.CountSQL()
	require.NoError(t, err)
	assert.Contains(t, stmt, "created_at >= ? AND created_at < ?")
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), args[0])
	assert.Equal(t, time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), args[1])
}

func TestIDListExpandsWithIn(t *testing.T) {
	def := itemDefinition()
	def.Filters["ids"] = IDList("id")

	stmt, args, err := def.Build(Params{Filters: map[string]string{"ids": "3, 1,x,3"}, All: true}, admin, testNow).CountSQL()
	require.NoError(t, err)
	assert.Contains(t, stmt, "id IN (?, ?)")
	assert.Equal(t, []interface{}{int64(3), int64(1)}, args)
}

func TestRelatedScope(t *testing.T) {
	c, ok := Related("posts.id", "post_categories", "post_id", "category_id")("4", testNow)
	require.True(t, ok)
	assert.Equal(t, "posts.id IN (SELECT post_id FROM post_categories WHERE category_id = ?)", c.SQL)
	assert.Equal(t, []interface{}{int64(4)}, c.Args)

	_, ok = Related("posts.id", "post_categories", "post_id", "category_id")("0", testNow)
	assert.False(t, ok)
}

func TestBoolScope(t *testing.T) {
	scope := Bool("is_featured")
	c, ok := scope("yes", testNow)
	require.True(t, ok)
	assert.Equal(t, []interface{}{true}, c.Args)

	c, ok = scope("0", testNow)
	require.True(t, ok)
	assert.Equal(t, []interface{}{false}, c.Args)

	_, ok = scope("maybe", testNow)
	assert.False(t, ok)
}

func TestParamsFromValues(t *testing.T) {
	v, err := url.ParseQuery("search=+hello+&sort=-name&page=2&per_page=25&filter[status]=active&filter[owner]=&filter[]=x&scope=all&date_from=2026-01-01")
	require.NoError(t, err)

	p := ParamsFromValues(v)
	assert.Equal(t, "hello", p.Search)
	assert.Equal(t, "-name", p.Sort)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 25, p.PerPage)
	assert.Equal(t, map[string]string{"status": "active"}, p.Filters)
	assert.True(t, p.All)
	assert.Equal(t, "2026-01-01", p.DateFrom)

	p2 := p.WithFilter("owner", "3")
	assert.Len(t, p.Filters, 1)
	assert.Equal(t, "3", p2.Filters["owner"])
}

func TestParamsFromValuesToleratesGarbage(t *testing.T) {
	v, err := url.ParseQuery("page=abc&per_page=lots")
	require.NoError(t, err)

	p := ParamsFromValues(v)
	assert.Equal(t, 0, p.Page)
	assert.Equal(t, 0, p.PerPage)
	assert.False(t, p.All)

	p = ParamsFromValues(url.Values{"page_size": {"50"}})
	assert.Equal(t, 50, p.PerPage)
}

func TestNewPage(t *testing.T) {
	q := &Query{Page: 2, PerPage: 10}

	p := NewPage([]int{1, 2}, 21, q)
	assert.Equal(t, Pagination{Page: 2, PageSize: 10, Pages: 3, Total: 21}, p.Pagination)

	empty := NewPage[int](nil, 0, q)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 1, empty.Pagination.Pages)

	mapped := Map(p, func(i int) string { return string(rune('a' + i)) })
	assert.Equal(t, []string{"b", "c"}, mapped.Items)
	assert.Equal(t, p.Pagination, mapped.Pagination)
}

func TestOffsetDoesNotOverflow(t *testing.T) {
	q := &Query{Page: 3, PerPage: 10}
	assert.Equal(t, 20, q.Offset())

	q = &Query{Page: math.MaxInt / 5, PerPage: 10}
	assert.Equal(t, math.MaxInt, q.Offset())

	q = &Query{Page: math.MaxInt, PerPage: 100}
	assert.Equal(t, math.MaxInt, q.Offset())
}

func TestPastEnd(t *testing.T) {
	assert.True(t, (&Query{Page: 1, PerPage: 10}).PastEnd(0))
	assert.False(t, (&Query{Page: 1, PerPage: 10}).PastEnd(1))
	assert.False(t, (&Query{Page: 4, PerPage: 10}).PastEnd(37))
	assert.True(t, (&Query{Page: 5, PerPage: 10}).PastEnd(37))
	assert.True(t, (&Query{Page: math.MaxInt, PerPage: 10}).PastEnd(37))
}
