package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"admincms/internal/model"
	"admincms/internal/query"

	"github.com/jmoiron/sqlx"
)

// PostRepository 文章仓库接口
type PostRepository interface {
	List(ctx context.Context, q *query.Query) (*query.Page[model.Post], error)
	GetByID(ctx context.Context, id int64, withTrashed bool) (*model.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*model.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, attrs map[string]interface{}) (int64, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	Restore(ctx context.Context, id int64, at time.Time) error
	Categories(ctx context.Context, postIDs []int64) (map[int64][]model.Category, error)
	SyncCategories(ctx context.Context, postID int64, categoryIDs []int64) error
	PurgeTrashed(ctx context.Context, before time.Time) (int64, error)
}

// TransactionalPostRepository 支持事务的文章仓库
type TransactionalPostRepository interface {
	PostRepository
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	WithTx(tx *sqlx.Tx) PostRepository
}

var postWritable = newColumnSet(
	"user_id", "title", "slug", "excerpt", "body", "cover_image", "status",
	"is_featured", "published_at", "created_at", "updated_at",
)

type postRepository struct {
	conn
}

// NewPostRepository 创建文章仓库实例
func NewPostRepository(db *sqlx.DB) TransactionalPostRepository {
	return &postRepository{conn{db: db}}
}

// WithTx 返回在事务中操作的仓库
func (r *postRepository) WithTx(tx *sqlx.Tx) PostRepository {
	return &postRepository{conn{db: r.db, tx: tx}}
}

// List 分页查询文章
func (r *postRepository) List(ctx context.Context, q *query.Query) (*query.Page[model.Post], error) {
	return query.Fetch[model.Post](ctx, r.ext(), q)
}

var postSelect = "SELECT " + strings.Join(postColumns, ", ") + " FROM posts"

// GetByID 根据ID获取文章
func (r *postRepository) GetByID(ctx context.Context, id int64, withTrashed bool) (*model.Post, error) {
	stmt := postSelect + " WHERE id = ?"
	if !withTrashed {
		stmt += " AND deleted_at IS NULL"
	}
	post := &model.Post{}
	if err := r.get(ctx, post, stmt, id); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPublishedBySlug 根据slug获取已发布的文章
func (r *postRepository) GetPublishedBySlug(ctx context.Context, slug string) (*model.Post, error) {
	post := &model.Post{}
	err := r.get(ctx, post, postSelect+" WHERE slug = ? AND status = ? AND deleted_at IS NULL", slug, model.PostStatusPublished)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// SlugExists slug是否已被使用，包括已删除的文章
func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM posts WHERE slug = ?", slug)
}

// Create 创建文章
func (r *postRepository) Create(ctx context.Context, attrs map[string]interface{}) (int64, error) {
	return r.insert(ctx, "posts", postWritable, attrs)
}

// Update 更新文章
func (r *postRepository) Update(ctx context.Context, id int64, attrs map[string]interface{}) error {
	return r.update(ctx, "posts", postWritable, id, attrs)
}

// SoftDelete 软删除文章
func (r *postRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result, err := r.ext().ExecContext(ctx, "UPDATE posts SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL", at, at, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// Restore 恢复已删除的文章
func (r *postRepository) Restore(ctx context.Context, id int64, at time.Time) error {
	result, err := r.ext().ExecContext(ctx, "UPDATE posts SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL", at, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

type postCategory struct {
	PostID int64 `db:"post_id"`
	model.Category
}

// Categories 批量加载文章的分类
func (r *postRepository) Categories(ctx context.Context, postIDs []int64) (map[int64][]model.Category, error) {
	result := make(map[int64][]model.Category, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var rows []postCategory
	err := r.selectIn(ctx, &rows, `SELECT pc.post_id, c.id, c.name, c.slug, COALESCE(c.description, '') AS description, c.created_at, c.updated_at
		FROM post_categories pc JOIN categories c ON c.id = pc.category_id
		WHERE pc.post_id IN (?) ORDER BY c.name, c.id`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("加载文章分类失败: %w", err)
	}
	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.Category)
	}
	return result, nil
}

// SyncCategories 用给定的分类替换文章当前的分类
func (r *postRepository) SyncCategories(ctx context.Context, postID int64, categoryIDs []int64) error {
	if _, err := r.ext().ExecContext(ctx, "DELETE FROM post_categories WHERE post_id = ?", postID); err != nil {
		return fmt.Errorf("清除文章分类失败: %w", err)
	}
	for _, id := range categoryIDs {
		if _, err := r.ext().ExecContext(ctx, "INSERT INTO post_categories (post_id, category_id) VALUES (?, ?)", postID, id); err != nil {
			return fmt.Errorf("关联分类 %d 失败: %w", id, err)
		}
	}
	return nil
}

// PurgeTrashed 彻底删除在 before 之前被软删除的文章及其分类关联，应在事务中调用
func (r *postRepository) PurgeTrashed(ctx context.Context, before time.Time) (int64, error) {
	const trashed = "SELECT id FROM posts WHERE deleted_at IS NOT NULL AND deleted_at < ?"

	if _, err := r.ext().ExecContext(ctx, "DELETE FROM post_categories WHERE post_id IN ("+trashed+")", before); err != nil {
		return 0, fmt.Errorf("删除文章分类关联失败: %w", err)
	}
	if _, err := r.ext().ExecContext(ctx,
		"UPDATE media SET attachable_type = NULL, attachable_id = NULL WHERE attachable_type = ? AND attachable_id IN ("+trashed+")",
		model.AttachablePost, before); err != nil {
		return 0, fmt.Errorf("解除媒体关联失败: %w", err)
	}
	result, err := r.ext().ExecContext(ctx, "DELETE FROM posts WHERE deleted_at IS NOT NULL AND deleted_at < ?", before)
	if err != nil {
		return 0, fmt.Errorf("删除文章失败: %w", err)
	}
	return result.RowsAffected()
}
