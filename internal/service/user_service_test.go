package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admincms/internal/fillable"
	"admincms/internal/model"
	"admincms/internal/query"
	"admincms/internal/testutil"
)

func TestUserCreateAndLogin(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Create(ctx, map[string]interface{}{
		"username": "alice", "name": "Alice", "email": "alice@example.com", "password": "secret123",
		"role": "admin",
	}, f.editor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.Equal(t, model.UserStatusActive, u.Status)
	assert.Len(t, u.Token, 32)
	assert.NotEqual(t, "secret123", u.Password)

	got, err := f.users.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = f.users.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.Token, got.Token)

	_, err = f.users.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.users.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	byToken, err := f.users.GetByToken(ctx, u.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byToken.ID)
	_, err = f.users.GetByToken(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.users.ToggleStatus(ctx, u.ID, f.admin)
	require.NoError(t, err)
	_, err = f.users.Login(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, ErrAccountSuspended)
}

func TestUserCreateDuplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Create(ctx, map[string]interface{}{
		"username": "editor", "email": "editor@example.com", "password": "secret123",
	}, f.admin)
	fields, ok := ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
}

func TestUserSelfProtection(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Update(ctx, f.admin.UserID, map[string]interface{}{"role": "user"}, f.admin)
	_, ok := ValidationFields(err)
	assert.True(t, ok)

	_, ok = ValidationFields(f.users.Delete(ctx, f.admin.UserID, f.admin))
	assert.True(t, ok)

	_, err = f.users.ToggleStatus(ctx, f.admin.UserID, f.admin)
	_, ok = ValidationFields(err)
	assert.True(t, ok)

	u, err := f.users.Update(ctx, f.admin.UserID, map[string]interface{}{"name": "Root"}, f.admin)
	require.NoError(t, err)
	assert.Equal(t, "Root", u.Name)

	_, err = f.users.Update(ctx, f.editor.UserID, map[string]interface{}{"email": "other@example.com"}, f.admin)
	fields, ok := ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "email")

	require.NoError(t, f.users.Delete(ctx, f.other.UserID, f.admin))
	_, err = f.users.Get(ctx, f.other.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserPasswordAndToken(t *testing.T) {
	f := newFixture(t)
	u, err := f.users.Create(ctx, map[string]interface{}{
		"username": "bob", "email": "bob@example.com", "password": "first-pass",
	}, f.admin)
	require.NoError(t, err)

	_, err = f.users.Update(ctx, u.ID, map[string]interface{}{"password": "second-pass"}, f.admin)
	require.NoError(t, err)
	_, err = f.users.Login(ctx, "bob", "first-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.users.Login(ctx, "bob", "second-pass")
	require.NoError(t, err)

	token, err := f.users.ResetToken(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, u.Token, token)
	_, err = f.users.GetByToken(ctx, u.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserListAndOptions(t *testing.T) {
	f := newFixture(t)

	page, err := f.users.List(ctx, query.Params{Filters: map[string]string{"role": "editor"}, Sort: "username"}, f.admin)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "editor", page.Items[0].Username)

	opts := f.users.FormOptions(fillable.Update, f.editor)
	assert.NotContains(t, opts.Fields, "role")
	assert.Equal(t, model.Roles, opts.Roles)
}

func TestUserDeleteRejectedWhileOwningContent(t *testing.T) {
	f := newFixture(t)
	zone := f.zone(t, "home")
	p := f.post(t, f.editor, "Hello", "hello", model.PostStatusDraft)
	require.NoError(t, f.posts.Delete(ctx, p.ID, f.editor))

	err := f.users.Delete(ctx, f.editor.UserID, f.admin)
	fields, ok := ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "id")

	purged, err := f.posts.PurgeTrashed(ctx, testutil.Now.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
	f.ad(t, zone, "banner", model.AdStatusInactive, testutil.Now, nil)

	_, ok = ValidationFields(f.users.Delete(ctx, f.editor.UserID, f.admin))
	assert.True(t, ok)
	_, err = f.users.Get(ctx, f.editor.UserID)
	assert.NoError(t, err)
}
