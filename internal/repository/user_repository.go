package repository

import (
	"context"
	"fmt"

	"admincms/internal/model"
	"admincms/internal/query"

	"github.com/jmoiron/sqlx"
)

// UserRepository 用户仓库接口
type UserRepository interface {
	List(ctx context.Context, q *query.Query) (*query.Page[model.User], error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByToken(ctx context.Context, token string) (*model.User, error)
	Exists(ctx context.Context, column, value string, exceptID int64) (bool, error)
	Create(ctx context.Context, attrs map[string]interface{}) (int64, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	CountOwned(ctx context.Context, id int64) (int64, error)
}

var userWritable = newColumnSet("username", "name", "email", "password", "role", "status", "token", "created_at", "updated_at")

const userSelect = "SELECT id, username, name, email, password, role, status, token, created_at, updated_at FROM users"

// userRepository 用户仓库实现
type userRepository struct {
	conn
}

// NewUserRepository 创建用户仓库实例
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{conn{db: db}}
}

func (r *userRepository) List(ctx context.Context, q *query.Query) (*query.Page[model.User], error) {
	return query.Fetch[model.User](ctx, r.ext(), q)
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getBy(ctx, "id = ?", id)
}

// GetByLogin 根据用户名或邮箱获取用户
func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	return r.getBy(ctx, "username = ? OR email = ?", login, login)
}

// GetByToken 根据令牌获取用户
func (r *userRepository) GetByToken(ctx context.Context, token string) (*model.User, error) {
	return r.getBy(ctx, "token = ?", token)
}

func (r *userRepository) getBy(ctx context.Context, where string, args ...interface{}) (*model.User, error) {
	user := &model.User{}
	if err := r.get(ctx, user, userSelect+" WHERE "+where+" LIMIT 1", args...); err != nil {
		return nil, err
	}
	return user, nil
}

// Exists 除 exceptID 外是否有用户在 column 上使用了 value，column 只能是 username 或 email
func (r *userRepository) Exists(ctx context.Context, column, value string, exceptID int64) (bool, error) {
	if column != "username" && column != "email" {
		return false, fmt.Errorf("不支持的列: %s", column)
	}
	return r.exists(ctx, "SELECT COUNT(*) FROM users WHERE "+column+" = ? AND id <> ?", value, exceptID)
}

func (r *userRepository) Create(ctx context.Context, attrs map[string]interface{}) (int64, error) {
	return r.insert(ctx, "users", userWritable, attrs)
}

func (r *userRepository) Update(ctx context.Context, id int64, attrs map[string]interface{}) error {
	return r.update(ctx, "users", userWritable, id, attrs)
}

// Delete 删除用户
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "users", id)
}

// CountOwned 用户拥有的文章（含回收站）和广告数量
func (r *userRepository) CountOwned(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.get(ctx, &n, `SELECT (SELECT COUNT(*) FROM posts WHERE user_id = ?) +
		(SELECT COUNT(*) FROM advertisements WHERE created_by = ?)`, id, id)
	return n, err
}
