package service

import (
	"context"
	"errors"
	"fmt"

	"admincms/internal/auth"
	"admincms/internal/fillable"
	"admincms/internal/model"
	"admincms/internal/query"
	"admincms/internal/repository"
	"admincms/pkg/cache"

	"github.com/jmoiron/sqlx"
)

// CategoryService 分类服务接口
type CategoryService interface {
	List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.Category], error)
	All(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	Create(ctx context.Context, attrs map[string]interface{}, viewer auth.Principal) (*model.Category, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}, viewer auth.Principal) (*model.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	env        Env
	categories repository.TransactionalCategoryRepository
}

// NewCategoryService 创建分类服务实例
func NewCategoryService(env Env, categories repository.TransactionalCategoryRepository) CategoryService {
	return &categoryService{env: env, categories: categories}
}

func (s *categoryService) List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.Category], error) {
	q := repository.CategoryQuery.WithPageSizes(s.env.Pages).Build(p, viewer, s.env.now())
	return s.categories.List(ctx, q)
}

// All 全部分类，结果缓存在redis中
func (s *categoryService) All(ctx context.Context) ([]model.Category, error) {
	return cache.Remember(ctx, s.env.Cache, cacheCategoriesAll, s.categories.All)
}

func (s *categoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *categoryService) Create(ctx context.Context, attrs map[string]interface{}, viewer auth.Principal) (*model.Category, error) {
	attrs = s.env.writable(fillable.Category, "category", attrs, fillable.Create, viewer)
	if slug, ok := attrs["slug"].(string); ok {
		taken, err := s.categories.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, Invalid("slug", "该slug已被使用")
		}
	}

	id, err := s.categories.Create(ctx, stamp(attrs, s.env.now(), true))
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, Invalid("slug", "该slug已被使用")
	}
	if err != nil {
		return nil, fmt.Errorf("创建分类失败: %w", err)
	}
	s.env.invalidate(cacheCategoriesAll)
	return s.categories.GetByID(ctx, id)
}

func (s *categoryService) Update(ctx context.Context, id int64, attrs map[string]interface{}, viewer auth.Principal) (*model.Category, error) {
	attrs = s.env.writable(fillable.Category, "category", attrs, fillable.Update, viewer)
	if err := s.categories.Update(ctx, id, stamp(attrs, s.env.now(), false)); err != nil {
		return nil, err
	}
	s.env.invalidate(cacheCategoriesAll)
	return s.categories.GetByID(ctx, id)
}

// Delete 在事务中解除文章关联并删除分类
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	err := repository.WithTransaction(ctx, s.categories, func(tx *sqlx.Tx) error {
		repo := s.categories.WithTx(tx)
		if err := repo.Detach(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.env.invalidate(cacheCategoriesAll)
	return nil
}
