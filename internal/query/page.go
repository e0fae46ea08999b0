package query

// Pagination 分页信息
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Pages    int   `json:"pages"`
	Total    int64 `json:"total"`
}

// Page 一页数据及分页信息
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// NewPage 组装分页结果
func NewPage[T any](items []T, total int64, q *Query) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(q.PerPage) - 1) / int64(q.PerPage))
	if pages == 0 {
		pages = 1
	}
	return &Page[T]{
		Items: items,
		Pagination: Pagination{
			Page:     q.Page,
			PageSize: q.PerPage,
			Pages:    pages,
			Total:    total,
		},
	}
}

// Map 转换每一项，分页信息保持不变
func Map[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return &Page[U]{Items: items, Pagination: p.Pagination}
}
