package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admincms/internal/auth"
	"admincms/internal/fillable"
	"admincms/internal/model"
	"admincms/internal/query"
	"admincms/internal/repository"

	"github.com/jmoiron/sqlx"
)

// PostService 文章服务接口
type PostService interface {
	List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.PostView], error)
	ListPublished(ctx context.Context, p query.Params) (*query.Page[model.PostView], error)
	Get(ctx context.Context, id int64, viewer auth.Principal) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	Create(ctx context.Context, attrs map[string]interface{}, categoryIDs []int64, viewer auth.Principal) (*model.Post, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}, categoryIDs []int64, viewer auth.Principal) (*model.Post, error)
	Delete(ctx context.Context, id int64, viewer auth.Principal) error
	Restore(ctx context.Context, id int64, viewer auth.Principal) error
	ToggleStatus(ctx context.Context, id int64, viewer auth.Principal) (*model.Post, error)
	PurgeTrashed(ctx context.Context, before time.Time) (int64, error)
	FormOptions(ctx context.Context, op fillable.Operation, viewer auth.Principal) (*FormOptions, error)
}

type postService struct {
	env        Env
	posts      repository.TransactionalPostRepository
	categories repository.TransactionalCategoryRepository
	media      repository.MediaRepository
	users      repository.UserRepository
	catalog    CategoryService
}

// NewPostService 创建文章服务实例
func NewPostService(
	env Env,
	posts repository.TransactionalPostRepository,
	categories repository.TransactionalCategoryRepository,
	media repository.MediaRepository,
	users repository.UserRepository,
	catalog CategoryService,
) PostService {
	return &postService{env: env, posts: posts, categories: categories, media: media, users: users, catalog: catalog}
}

// List 后台文章列表，非管理员只能看到自己的文章
func (s *postService) List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.PostView], error) {
	q := repository.PostQuery.WithPageSizes(s.env.Pages).Build(p, viewer, s.env.now())
	return s.page(ctx, q)
}

// ListPublished 前台已发布文章列表
func (s *postService) ListPublished(ctx context.Context, p query.Params) (*query.Page[model.PostView], error) {
	p.All = false
	q := repository.PublishedPostQuery.WithPageSizes(s.env.Pages).Build(p, auth.Principal{}, s.env.now())
	return s.page(ctx, q)
}

func (s *postService) page(ctx context.Context, q *query.Query) (*query.Page[model.PostView], error) {
	page, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("查询文章列表失败: %w", err)
	}
	ids := make([]int64, 0, len(page.Items))
	for _, p := range page.Items {
		ids = append(ids, p.ID)
	}
	categories, err := s.posts.Categories(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i].Categories = categories[page.Items[i].ID]
	}
	return query.Map(page, func(p model.Post) model.PostView { return p.View() }), nil
}

// Get 获取文章及其分类和媒体，非管理员只能获取自己的文章
func (s *postService) Get(ctx context.Context, id int64, viewer auth.Principal) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !viewer.CanAccess(post.UserID) {
		return nil, ErrForbidden
	}
	if err := s.loadRelations(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetBySlug 前台获取已发布的文章
func (s *postService) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	post, err := s.posts.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.loadRelations(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) loadRelations(ctx context.Context, post *model.Post) error {
	categories, err := s.posts.Categories(ctx, []int64{post.ID})
	if err != nil {
		return err
	}
	post.Categories = categories[post.ID]

	media, err := s.media.ForAttachable(ctx, model.AttachablePost, []int64{post.ID})
	if err != nil {
		return fmt.Errorf("加载文章媒体失败: %w", err)
	}
	post.Media = media[post.ID]
	return nil
}

// Create 在一个事务中创建文章并关联分类，任一步失败全部回滚
func (s *postService) Create(ctx context.Context, attrs map[string]interface{}, categoryIDs []int64, viewer auth.Principal) (*model.Post, error) {
	attrs = s.env.writable(fillable.Post, "post", attrs, fillable.Create, viewer)
	now := s.env.now()

	if err := checkOwner(ctx, s.users, "user_id", attrs); err != nil {
		return nil, err
	}
	if _, ok := attrs["user_id"]; !ok {
		attrs["user_id"] = viewer.UserID
	}
	if attrs["status"] == model.PostStatusPublished {
		if _, ok := attrs["published_at"]; !ok {
			attrs["published_at"] = now
		}
	}
	if slug, ok := attrs["slug"].(string); ok {
		taken, err := s.posts.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, Invalid("slug", "该slug已被使用")
		}
	}
	stamp(attrs, now, true)

	var id int64
	err := repository.WithTransaction(ctx, s.posts, func(tx *sqlx.Tx) error {
		var err error
		if id, err = s.posts.WithTx(tx).Create(ctx, attrs); err != nil {
			return err
		}
		return s.syncCategories(ctx, tx, id, categoryIDs)
	})
	if err != nil {
		return nil, s.translate(err)
	}

	s.env.invalidate(cacheCategoriesAll)
	s.env.Logger.Info("文章已创建", "post_id", id, "user_id", viewer.UserID)
	return s.Get(ctx, id, auth.Principal{Role: model.RoleAdmin})
}

// syncCategories 校验分类存在后替换文章分类，必须在事务中调用
func (s *postService) syncCategories(ctx context.Context, tx *sqlx.Tx, postID int64, categoryIDs []int64) error {
	ids := uniqueIDs(categoryIDs)
	found, err := s.categories.WithTx(tx).ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return Invalid("category_ids", "包含不存在的分类")
	}
	return s.posts.WithTx(tx).SyncCategories(ctx, postID, ids)
}

func (s *postService) translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return Invalid("slug", "该slug已被使用")
	case errors.Is(err, repository.ErrMissingReference):
		return Invalid("user_id", "用户不存在")
	}
	return err
}

// Update 更新文章，categoryIDs 为 nil 时不修改分类
func (s *postService) Update(ctx context.Context, id int64, attrs map[string]interface{}, categoryIDs []int64, viewer auth.Principal) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !viewer.CanAccess(post.UserID) {
		return nil, ErrForbidden
	}

	attrs = s.env.writable(fillable.Post, "post", attrs, fillable.Update, viewer)
	if err := checkOwner(ctx, s.users, "user_id", attrs); err != nil {
		return nil, err
	}
	now := s.env.now()
	if attrs["status"] == model.PostStatusPublished && post.PublishedAt == nil {
		if _, ok := attrs["published_at"]; !ok {
			attrs["published_at"] = now
		}
	}
	stamp(attrs, now, false)

	err = repository.WithTransaction(ctx, s.posts, func(tx *sqlx.Tx) error {
		if err := s.posts.WithTx(tx).Update(ctx, id, attrs); err != nil {
			return err
		}
		if categoryIDs == nil {
			return nil
		}
		return s.syncCategories(ctx, tx, id, categoryIDs)
	})
	if err != nil {
		return nil, s.translate(err)
	}

	s.env.invalidate(cacheCategoriesAll)
	return s.Get(ctx, id, viewer)
}

// Delete 软删除文章
func (s *postService) Delete(ctx context.Context, id int64, viewer auth.Principal) error {
	post, err := s.posts.GetByID(ctx, id, false)
	if err != nil {
		return err
	}
	if !viewer.CanAccess(post.UserID) {
		return ErrForbidden
	}
	if err := s.posts.SoftDelete(ctx, id, s.env.now()); err != nil {
		return err
	}
	s.env.invalidate(cacheCategoriesAll)
	return nil
}

// Restore 恢复软删除的文章
func (s *postService) Restore(ctx context.Context, id int64, viewer auth.Principal) error {
	post, err := s.posts.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if !viewer.CanAccess(post.UserID) {
		return ErrForbidden
	}
	if !post.IsTrashed() {
		return Invalid("id", "文章未被删除")
	}
	if err := s.posts.Restore(ctx, id, s.env.now()); err != nil {
		return err
	}
	s.env.invalidate(cacheCategoriesAll)
	return nil
}

// ToggleStatus 在发布和草稿之间切换，首次发布时记录发布时间
func (s *postService) ToggleStatus(ctx context.Context, id int64, viewer auth.Principal) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !viewer.CanAccess(post.UserID) {
		return nil, ErrForbidden
	}

	now := s.env.now()
	attrs := map[string]interface{}{"updated_at": now}
	if post.Status == model.PostStatusPublished {
		attrs["status"] = model.PostStatusDraft
	} else {
		attrs["status"] = model.PostStatusPublished
		if post.PublishedAt == nil {
			attrs["published_at"] = now
		}
	}
	if err := s.posts.Update(ctx, id, attrs); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, viewer)
}

// PurgeTrashed 彻底删除在 before 之前被软删除的文章
func (s *postService) PurgeTrashed(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	err := repository.WithTransaction(ctx, s.posts, func(tx *sqlx.Tx) error {
		var err error
		n, err = s.posts.WithTx(tx).PurgeTrashed(ctx, before)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("清理已删除文章失败: %w", err)
	}
	if n > 0 {
		s.env.invalidate(cacheCategoriesAll)
	}
	return n, nil
}

// FormOptions 文章表单的选项和可写字段
func (s *postService) FormOptions(ctx context.Context, op fillable.Operation, viewer auth.Principal) (*FormOptions, error) {
	categories, err := s.catalog.All(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]CategoryOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, CategoryOption{ID: c.ID, Name: c.Name})
	}
	return &FormOptions{
		Fields:     fillable.Post.Fields(op, viewer),
		Statuses:   model.PostStatuses,
		Categories: options,
	}, nil
}
