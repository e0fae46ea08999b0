package repository

import (
	"context"
	"fmt"

	"admincms/internal/model"
	"admincms/internal/query"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository 分类仓库接口
type CategoryRepository interface {
	List(ctx context.Context, q *query.Query) (*query.Page[model.Category], error)
	All(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	Create(ctx context.Context, attrs map[string]interface{}) (int64, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}) error
	Detach(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// TransactionalCategoryRepository 支持事务的分类仓库
type TransactionalCategoryRepository interface {
	CategoryRepository
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	WithTx(tx *sqlx.Tx) CategoryRepository
}

var categoryWritable = newColumnSet("name", "slug", "description", "created_at", "updated_at")

type categoryRepository struct {
	conn
}

// NewCategoryRepository 创建分类仓库实例
func NewCategoryRepository(db *sqlx.DB) TransactionalCategoryRepository {
	return &categoryRepository{conn{db: db}}
}

// WithTx 返回在事务中操作的仓库
func (r *categoryRepository) WithTx(tx *sqlx.Tx) CategoryRepository {
	return &categoryRepository{conn{db: r.db, tx: tx}}
}

func (r *categoryRepository) List(ctx context.Context, q *query.Query) (*query.Page[model.Category], error) {
	return query.Fetch[model.Category](ctx, r.ext(), q)
}

// All 按名称排序的全部分类
func (r *categoryRepository) All(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	stmt := "SELECT " + CategoryQuery.SelectColumns() + " FROM categories ORDER BY name, id"
	if err := sqlx.SelectContext(ctx, r.ext(), &categories, stmt); err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	category := &model.Category{}
	stmt := "SELECT " + CategoryQuery.SelectColumns() + " FROM categories WHERE id = ?"
	if err := r.get(ctx, category, stmt, id); err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM categories WHERE slug = ?", slug)
}

// ExistingIDs 返回给定ID中实际存在的分类ID
func (r *categoryRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	if err := r.selectIn(ctx, &found, "SELECT id FROM categories WHERE id IN (?) ORDER BY id", ids); err != nil {
		return nil, err
	}
	return found, nil
}

func (r *categoryRepository) Create(ctx context.Context, attrs map[string]interface{}) (int64, error) {
	return r.insert(ctx, "categories", categoryWritable, attrs)
}

func (r *categoryRepository) Update(ctx context.Context, id int64, attrs map[string]interface{}) error {
	return r.update(ctx, "categories", categoryWritable, id, attrs)
}

// Detach 解除分类与所有文章的关联
func (r *categoryRepository) Detach(ctx context.Context, id int64) error {
	_, err := r.ext().ExecContext(ctx, "DELETE FROM post_categories WHERE category_id = ?", id)
	return err
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "categories", id)
}
