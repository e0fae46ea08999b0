// Package testutil 为仓库和服务测试提供内存数据库
package testutil

import (
	_ "embed"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Now 测试使用的固定时间
var Now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

// Clock 返回固定时间
func Clock() time.Time {
	return Now
}

// OpenDB 打开带有完整表结构的内存SQLite数据库，外键约束与MySQL一致
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:?_time_format=sqlite&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	// 内存库每个连接都是独立的数据库
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

// MustExec 执行SQL并返回自增ID
func MustExec(t *testing.T, db *sqlx.DB, stmt string, args ...interface{}) int64 {
	t.Helper()
	res, err := db.Exec(stmt, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// InsertUser 插入一个用户
func InsertUser(t *testing.T, db *sqlx.DB, username, role string) int64 {
	t.Helper()
	return MustExec(t, db, `INSERT INTO users (username, name, email, password, role, status, token, created_at, updated_at)
		VALUES (?, ?, ?, '', ?, 'active', ?, ?, ?)`,
		username, username, username+"@example.com", role, "token-"+username, Now, Now)
}

// Count 统计表中满足条件的行数
func Count(t *testing.T, db *sqlx.DB, stmt string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, stmt, args...))
	return n
}
