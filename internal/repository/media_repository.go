package repository

import (
	"context"

	"admincms/internal/model"
	"admincms/internal/query"

	"github.com/jmoiron/sqlx"
)

// MediaRepository 上传文件仓库接口
type MediaRepository interface {
	List(ctx context.Context, q *query.Query) (*query.Page[model.Media], error)
	GetByID(ctx context.Context, id int64) (*model.Media, error)
	ForAttachable(ctx context.Context, attachableType string, ids []int64) (map[int64][]model.Media, error)
	Create(ctx context.Context, attrs map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id int64) error
}

var mediaWritable = newColumnSet(
	"user_id", "disk", "path", "original_name", "mime_type", "size",
	"attachable_type", "attachable_id", "created_at",
)

type mediaRepository struct {
	conn
}

// NewMediaRepository 创建上传文件仓库实例
func NewMediaRepository(db *sqlx.DB) MediaRepository {
	return &mediaRepository{conn{db: db}}
}

func (r *mediaRepository) List(ctx context.Context, q *query.Query) (*query.Page[model.Media], error) {
	return query.Fetch[model.Media](ctx, r.ext(), q)
}

func (r *mediaRepository) GetByID(ctx context.Context, id int64) (*model.Media, error) {
	m := &model.Media{}
	if err := r.get(ctx, m, "SELECT "+MediaQuery.SelectColumns()+" FROM media WHERE id = ?", id); err != nil {
		return nil, err
	}
	return m, nil
}

// ForAttachable 批量加载关联到指定记录的文件
func (r *mediaRepository) ForAttachable(ctx context.Context, attachableType string, ids []int64) (map[int64][]model.Media, error) {
	result := make(map[int64][]model.Media, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []model.Media
	err := r.selectIn(ctx, &rows, "SELECT "+MediaQuery.SelectColumns()+" FROM media WHERE attachable_type = ? AND attachable_id IN (?) ORDER BY id",
		attachableType, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		if m.AttachableID != nil {
			result[*m.AttachableID] = append(result[*m.AttachableID], m)
		}
	}
	return result, nil
}

func (r *mediaRepository) Create(ctx context.Context, attrs map[string]interface{}) (int64, error) {
	return r.insert(ctx, "media", mediaWritable, attrs)
}

func (r *mediaRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "media", id)
}
