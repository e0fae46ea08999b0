package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admincms/internal/fillable"
	"admincms/internal/model"
	"admincms/internal/query"
	"admincms/internal/testutil"
)

func TestPostCreateWithCategories(t *testing.T) {
	f := newFixture(t)
	golang := f.category(t, "Go", "go")
	rust := f.category(t, "Rust", "rust")

	p := f.post(t, f.editor, "Hello", "hello", model.PostStatusPublished, golang, rust, golang)

	assert.Equal(t, f.editor.UserID, p.UserID)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, testutil.Now.Equal(*p.PublishedAt))
	require.Len(t, p.Categories, 2)
	assert.Equal(t, 2, testutil.Count(t, f.db, "SELECT COUNT(*) FROM post_categories WHERE post_id = ?", p.ID))
}

func TestPostCreateRollsBackOnUnknownCategory(t *testing.T) {
	f := newFixture(t)
	golang := f.category(t, "Go", "go")

	_, err := f.posts.Create(ctx, map[string]interface{}{
		"title": "Hello", "slug": "hello", "body": "x", "status": model.PostStatusDraft,
	}, []int64{golang, 999}, f.editor)

	fields, ok := ValidationFields(err)
	require.True(t, ok, "got %v", err)
	assert.Contains(t, fields, "category_ids")
	assert.Equal(t, 0, testutil.Count(t, f.db, "SELECT COUNT(*) FROM posts"))
	assert.Equal(t, 0, testutil.Count(t, f.db, "SELECT COUNT(*) FROM post_categories"))
}

func TestPostCreateStripsElevatedFields(t *testing.T) {
	f := newFixture(t)

	p, err := f.posts.Create(ctx, map[string]interface{}{
		"title": "Hello", "slug": "hello", "body": "x", "status": model.PostStatusDraft,
		"is_featured": true, "user_id": f.other.UserID, "deleted_at": testutil.Now,
	}, nil, f.editor)
	require.NoError(t, err)
	assert.False(t, p.IsFeatured)
	assert.Equal(t, f.editor.UserID, p.UserID)
	assert.Nil(t, p.DeletedAt)

	p, err = f.posts.Create(ctx, map[string]interface{}{
		"title": "Featured", "slug": "featured", "body": "x", "status": model.PostStatusDraft,
		"is_featured": true, "user_id": f.other.UserID,
	}, nil, f.admin)
	require.NoError(t, err)
	assert.True(t, p.IsFeatured)
	assert.Equal(t, f.other.UserID, p.UserID)
}

func TestPostCreateDuplicateSlug(t *testing.T) {
	f := newFixture(t)
	f.post(t, f.editor, "Hello", "hello", model.PostStatusDraft)

	_, err := f.posts.Create(ctx, map[string]interface{}{
		"title": "Again", "slug": "hello", "body": "x", "status": model.PostStatusDraft,
	}, nil, f.editor)
	fields, ok := ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "slug")
}

func TestPostOwnership(t *testing.T) {
	f := newFixture(t)
	mine := f.post(t, f.editor, "Mine", "mine", model.PostStatusDraft)
	f.post(t, f.other, "Theirs", "theirs", model.PostStatusDraft)

	page, err := f.posts.List(ctx, query.Params{}, f.editor)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)

	// scope=all 只对管理员生效
	page, err = f.posts.List(ctx, query.Params{All: true}, f.editor)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = f.posts.List(ctx, query.Params{All: true}, f.admin)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	_, err = f.posts.Get(ctx, mine.ID, f.other)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.posts.Update(ctx, mine.ID, map[string]interface{}{"title": "x"}, nil, f.other)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.posts.Delete(ctx, mine.ID, f.other), ErrForbidden)

	got, err := f.posts.Get(ctx, mine.ID, f.admin)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)
}

func TestPostListFiltersAndSearch(t *testing.T) {
	f := newFixture(t)
	golang := f.category(t, "Go", "go")
	f.post(t, f.editor, "Test Item", "test-item", model.PostStatusPublished, golang)
	f.post(t, f.editor, "Another Test", "another-test", model.PostStatusDraft, golang)
	f.post(t, f.editor, "Unrelated", "unrelated", model.PostStatusPublished)

	p := query.Params{Search: "test", Filters: map[string]string{"status": "published"}}
	page, err := f.posts.List(ctx, p, f.editor)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Test Item", page.Items[0].Title)
	require.Len(t, page.Items[0].Categories, 1)
	assert.Equal(t, "go", page.Items[0].Categories[0].Slug)
	assert.Equal(t, 1, page.Items[0].ReadingMinutes)
	assert.Equal(t, int64(1), page.Pagination.Total)

	page, err = f.posts.List(ctx, query.Params{Filters: map[string]string{"category": "1"}, Sort: "title"}, f.editor)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Another Test", page.Items[0].Title)

	// 无法识别的过滤值被忽略
	page, err = f.posts.List(ctx, query.Params{Filters: map[string]string{"status": "bogus"}}, f.editor)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	page, err = f.posts.List(ctx, query.Params{Search: "nothing matches"}, f.editor)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pagination.Pages)
}

func TestPostUpdateCategories(t *testing.T) {
	f := newFixture(t)
	golang := f.category(t, "Go", "go")
	rust := f.category(t, "Rust", "rust")
	p := f.post(t, f.editor, "Hello", "hello", model.PostStatusDraft, golang)

	// nil 表示不修改分类
	updated, err := f.posts.Update(ctx, p.ID, map[string]interface{}{"title": "Hi", "slug": "changed"}, nil, f.editor)
	require.NoError(t, err)
	assert.Equal(t, "Hi", updated.Title)
	assert.Equal(t, "hello", updated.Slug)
	require.Len(t, updated.Categories, 1)

	updated, err = f.posts.Update(ctx, p.ID, map[string]interface{}{}, []int64{rust}, f.editor)
	require.NoError(t, err)
	require.Len(t, updated.Categories, 1)
	assert.Equal(t, "rust", updated.Categories[0].Slug)

	updated, err = f.posts.Update(ctx, p.ID, map[string]interface{}{}, []int64{}, f.editor)
	require.NoError(t, err)
	assert.Empty(t, updated.Categories)

	_, err = f.posts.Update(ctx, p.ID, map[string]interface{}{"title": "Broken"}, []int64{42}, f.editor)
	_, ok := ValidationFields(err)
	require.True(t, ok)
	got, err := f.posts.Get(ctx, p.ID, f.editor)
	require.NoError(t, err)
	assert.Equal(t, "Hi", got.Title)
}

func TestPostDeleteRestoreAndToggle(t *testing.T) {
	f := newFixture(t)
	p := f.post(t, f.editor, "Hello", "hello", model.PostStatusDraft)

	toggled, err := f.posts.ToggleStatus(ctx, p.ID, f.editor)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPublished, toggled.Status)
	require.NotNil(t, toggled.PublishedAt)

	toggled, err = f.posts.ToggleStatus(ctx, p.ID, f.editor)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusDraft, toggled.Status)
	assert.NotNil(t, toggled.PublishedAt)

	_, ok := ValidationFields(f.posts.Restore(ctx, p.ID, f.editor))
	assert.True(t, ok)

	require.NoError(t, f.posts.Delete(ctx, p.ID, f.editor))
	_, err = f.posts.Get(ctx, p.ID, f.editor)
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := f.posts.List(ctx, query.Params{Filters: map[string]string{"trashed": "only"}}, f.editor)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	require.NoError(t, f.posts.Restore(ctx, p.ID, f.editor))
	_, err = f.posts.Get(ctx, p.ID, f.editor)
	require.NoError(t, err)
}

func TestPostPurgeTrashed(t *testing.T) {
	f := newFixture(t)
	golang := f.category(t, "Go", "go")
	p := f.post(t, f.editor, "Hello", "hello", model.PostStatusDraft, golang)
	keep := f.post(t, f.editor, "Keep", "keep", model.PostStatusDraft)
	require.NoError(t, f.posts.Delete(ctx, p.ID, f.editor))

	n, err := f.posts.PurgeTrashed(ctx, testutil.Now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, testutil.Count(t, f.db, "SELECT COUNT(*) FROM posts"))
	assert.Equal(t, 0, testutil.Count(t, f.db, "SELECT COUNT(*) FROM post_categories"))

	_, err = f.posts.Get(ctx, keep.ID, f.editor)
	assert.NoError(t, err)
}

func TestPostPublicReads(t *testing.T) {
	f := newFixture(t)
	f.post(t, f.editor, "Public", "public", model.PostStatusPublished)
	draft := f.post(t, f.editor, "Draft", "draft", model.PostStatusDraft)

	page, err := f.posts.ListPublished(ctx, query.Params{All: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Public", page.Items[0].Title)

	got, err := f.posts.GetBySlug(ctx, "public")
	require.NoError(t, err)
	assert.Equal(t, "Public", got.Title)

	_, err = f.posts.GetBySlug(ctx, draft.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostFormOptions(t *testing.T) {
	f := newFixture(t)
	f.category(t, "Go", "go")

	opts, err := f.posts.FormOptions(ctx, fillable.Create, f.editor)
	require.NoError(t, err)
	assert.Contains(t, opts.Fields, "slug")
	assert.NotContains(t, opts.Fields, "is_featured")
	assert.Equal(t, model.PostStatuses, opts.Statuses)
	require.Len(t, opts.Categories, 1)
	assert.Equal(t, "Go", opts.Categories[0].Name)

	opts, err = f.posts.FormOptions(ctx, fillable.Update, f.admin)
	require.NoError(t, err)
	assert.Contains(t, opts.Fields, "is_featured")
	assert.NotContains(t, opts.Fields, "slug")
}

func TestPostAssignedAuthorMustExist(t *testing.T) {
	f := newFixture(t)

	_, err := f.posts.Create(ctx, map[string]interface{}{
		"title": "Ghost", "slug": "ghost", "body": "x", "status": model.PostStatusDraft,
		"user_id": int64(999),
	}, nil, f.admin)
	fields, ok := ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "user_id")
	assert.Equal(t, 0, testutil.Count(t, f.db, "SELECT COUNT(*) FROM posts"))

	p := f.post(t, f.editor, "Mine", "mine", model.PostStatusDraft)
	_, err = f.posts.Update(ctx, p.ID, map[string]interface{}{"user_id": int64(999)}, nil, f.admin)
	fields, ok = ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "user_id")

	moved, err := f.posts.Update(ctx, p.ID, map[string]interface{}{"user_id": f.other.UserID}, nil, f.admin)
	require.NoError(t, err)
	assert.Equal(t, f.other.UserID, moved.UserID)
}
