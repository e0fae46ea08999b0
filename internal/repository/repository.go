package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("记录已存在")
	// ErrMissingReference 写入的外键指向不存在的记录
	ErrMissingReference = errors.New("引用的记录不存在")
	// ErrInUse 记录仍被其他表引用，不能删除
	ErrInUse = errors.New("记录仍被引用")
)

// MySQL 错误码
const (
	errDupEntry          = 1062
	errRowIsReferenced   = 1451
	errNoReferencedRow   = 1452
	sqliteForeignKeyText = "FOREIGN KEY constraint failed"
)

// Transactor 可以开启事务的仓库
type Transactor interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
}

// WithTransaction 在事务中执行fn，fn返回错误或panic时回滚
func WithTransaction(ctx context.Context, t Transactor, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := t.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (回滚失败: %v)", err, rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// conn 仓库共用的连接，tx 不为空时所有操作在事务中执行
type conn struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

// BeginTx 开始一个新的事务
func (c conn) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return c.db.BeginTxx(ctx, nil)
}

func (c conn) ext() sqlx.ExtContext {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

func (c conn) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := sqlx.GetContext(ctx, c.ext(), dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (c conn) selectIn(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, c.ext(), dest, query, args...)
}

func (c conn) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, c.ext(), &n, query, args...); err != nil {
		return false, err
	}
	return n > 0, nil
}

// columnSet 表允许写入的列
type columnSet map[string]bool

func newColumnSet(cols ...string) columnSet {
	s := make(columnSet, len(cols))
	for _, c := range cols {
		s[c] = true
	}
	return s
}

// sortedColumns 按列名排序，保证生成的SQL稳定
func (s columnSet) sortedColumns(attrs map[string]interface{}) ([]string, error) {
	cols := make([]string, 0, len(attrs))
	for col := range attrs {
		if !s[col] {
			return nil, fmt.Errorf("不允许写入的列: %s", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols, nil
}

// insert 按属性插入一行并返回自增ID
func (c conn) insert(ctx context.Context, table string, allowed columnSet, attrs map[string]interface{}) (int64, error) {
	cols, err := allowed.sortedColumns(attrs)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, errors.New("没有可插入的列")
	}
	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		args = append(args, attrs[col])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	result, err := c.ext().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translate(err)
	}
	return result.LastInsertId()
}

// update 按属性更新一行，行不存在时返回 ErrNotFound
func (c conn) update(ctx context.Context, table string, allowed columnSet, id int64, attrs map[string]interface{}) error {
	cols, err := allowed.sortedColumns(attrs)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}
	sets := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, attrs[col])
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))

	result, err := c.ext().ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	return expectRow(result)
}

// deleteByID 删除一行，行不存在时返回 ErrNotFound
func (c conn) deleteByID(ctx context.Context, table string, id int64) error {
	result, err := c.ext().ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return translateDelete(err)
	}
	return expectRow(result)
}

func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// translate 将写入时的唯一约束和外键错误转换为 ErrDuplicate、ErrMissingReference
func translate(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errDupEntry:
			return fmt.Errorf("%w: %s", ErrDuplicate, myErr.Message)
		case errNoReferencedRow:
			return fmt.Errorf("%w: %s", ErrMissingReference, myErr.Message)
		}
		return err
	}
	switch {
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case strings.Contains(err.Error(), sqliteForeignKeyText):
		return fmt.Errorf("%w: %v", ErrMissingReference, err)
	}
	return err
}

// translateDelete 将删除时的外键错误转换为 ErrInUse
func translateDelete(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number == errRowIsReferenced {
			return fmt.Errorf("%w: %s", ErrInUse, myErr.Message)
		}
		return err
	}
	if strings.Contains(err.Error(), sqliteForeignKeyText) {
		return fmt.Errorf("%w: %v", ErrInUse, err)
	}
	return err
}
