package query

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Fetch 执行计数和当前页查询
func Fetch[T any](ctx context.Context, db sqlx.QueryerContext, q *Query) (*Page[T], error) {
	if q.Empty {
		return NewPage[T](nil, 0, q), nil
	}

	countSQL, countArgs, err := q.CountSQL()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := sqlx.GetContext(ctx, db, &total, countSQL, countArgs...); err != nil {
		return nil, fmt.Errorf("count %s: %w", q.def.Table, err)
	}
	if q.PastEnd(total) {
		return NewPage[T](nil, total, q), nil
	}

	selectSQL, selectArgs, err := q.SelectSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	var items []T
	if err := sqlx.SelectContext(ctx, db, &items, selectSQL, selectArgs...); err != nil {
		return nil, fmt.Errorf("select %s: %w", q.def.Table, err)
	}
	return NewPage(items, total, q), nil
}
