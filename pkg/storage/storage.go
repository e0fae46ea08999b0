// Package storage 上传文件的存储后端
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound 文件不存在
	ErrNotFound = errors.New("文件不存在")
	// ErrInvalidPath 非法的文件路径
	ErrInvalidPath = errors.New("非法的文件路径")
)

// Store 文件存储
type Store interface {
	// Disk 存储名称，写入 media.disk
	Disk() string
	// Put 保存文件，返回之后用于读取的路径
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// ObjectName 生成按月份分目录、带随机名的文件名，保留原扩展名
func ObjectName(original string, now time.Time) string {
	ext := strings.ToLower(path.Ext(original))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", now.Format("2006/01"), uuid.NewString(), ext)
}
