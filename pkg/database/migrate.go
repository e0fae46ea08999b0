package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migration 一个建表脚本
type Migration struct {
	Name string
	SQL  string
}

// Migrations 按文件名顺序返回所有建表脚本
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("读取迁移文件 %s 失败: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Name: strings.TrimPrefix(name, "schema/"),
			SQL:  strings.TrimSpace(string(data)),
		})
	}
	return migrations, nil
}

// Apply 依次执行所有建表脚本，脚本本身是幂等的
func Apply(ctx context.Context, db sqlx.ExecerContext) error {
	migrations, err := Migrations()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("执行迁移 %s 失败: %w", m.Name, err)
		}
	}
	return nil
}
