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

	"golang.org/x/crypto/bcrypt"
	"k8s.io/apimachinery/pkg/util/rand"
)

// passwordCost bcrypt加密强度
var passwordCost = bcrypt.DefaultCost

const errUserOwnsContent = "该用户还有文章或广告，请先转移或删除"

// UserService 用户服务接口
type UserService interface {
	List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.User], error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, attrs map[string]interface{}, viewer auth.Principal) (*model.User, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}, viewer auth.Principal) (*model.User, error)
	Delete(ctx context.Context, id int64, viewer auth.Principal) error
	ToggleStatus(ctx context.Context, id int64, viewer auth.Principal) (*model.User, error)
	Login(ctx context.Context, login, password string) (*model.User, error)
	GetByToken(ctx context.Context, token string) (*model.User, error)
	ResetToken(ctx context.Context, id int64) (string, error)
	FormOptions(op fillable.Operation, viewer auth.Principal) *FormOptions
}

type userService struct {
	env   Env
	users repository.UserRepository
}

// NewUserService 创建用户服务实例
func NewUserService(env Env, users repository.UserRepository) UserService {
	return &userService{env: env, users: users}
}

func (s *userService) List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.User], error) {
	q := repository.UserQuery.WithPageSizes(s.env.Pages).Build(p, viewer, s.env.now())
	return s.users.List(ctx, q)
}

func (s *userService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// checkUnique 检查用户名和邮箱是否已被其他用户使用
func (s *userService) checkUnique(ctx context.Context, attrs map[string]interface{}, exceptID int64) error {
	fields := map[string]string{}
	for _, column := range []string{"username", "email"} {
		value, ok := attrs[column].(string)
		if !ok {
			continue
		}
		taken, err := s.users.Exists(ctx, column, value, exceptID)
		if err != nil {
			return err
		}
		if taken {
			fields[column] = "已被其他用户使用"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func hashPassword(attrs map[string]interface{}) error {
	plain, ok := attrs["password"].(string)
	if !ok {
		return nil
	}
	if plain == "" {
		delete(attrs, "password")
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	attrs["password"] = string(hashed)
	return nil
}

func (s *userService) Create(ctx context.Context, attrs map[string]interface{}, viewer auth.Principal) (*model.User, error) {
	attrs = s.env.writable(fillable.User, "user", attrs, fillable.Create, viewer)
	if err := s.checkUnique(ctx, attrs, 0); err != nil {
		return nil, err
	}
	if err := hashPassword(attrs); err != nil {
		return nil, err
	}
	if _, ok := attrs["role"]; !ok {
		attrs["role"] = string(model.RoleUser)
	}
	if _, ok := attrs["status"]; !ok {
		attrs["status"] = model.UserStatusActive
	}
	attrs["token"] = rand.String(32)

	id, err := s.users.Create(ctx, stamp(attrs, s.env.now(), true))
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, Invalid("username", "已被其他用户使用")
	}
	if err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	s.env.Logger.Info("用户已创建", "user_id", id, "operator", viewer.UserID)
	return s.users.GetByID(ctx, id)
}

// Update 更新用户，不能修改自己的角色和状态
func (s *userService) Update(ctx context.Context, id int64, attrs map[string]interface{}, viewer auth.Principal) (*model.User, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, err
	}
	attrs = s.env.writable(fillable.User, "user", attrs, fillable.Update, viewer)
	if id == viewer.UserID {
		if _, ok := attrs["role"]; ok {
			return nil, Invalid("role", "不能修改自己的角色")
		}
		if _, ok := attrs["status"]; ok {
			return nil, Invalid("status", "不能修改自己的状态")
		}
	}
	if err := s.checkUnique(ctx, attrs, id); err != nil {
		return nil, err
	}
	if err := hashPassword(attrs); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, id, stamp(attrs, s.env.now(), false)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id int64, viewer auth.Principal) error {
	if id == viewer.UserID {
		return Invalid("id", "不能删除自己")
	}
	owned, err := s.users.CountOwned(ctx, id)
	if err != nil {
		return err
	}
	if owned > 0 {
		return Invalid("id", errUserOwnsContent)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return Invalid("id", errUserOwnsContent)
		}
		return err
	}
	s.env.Logger.Info("用户已删除", "user_id", id, "operator", viewer.UserID)
	return nil
}

// ToggleStatus 启用或停用用户
func (s *userService) ToggleStatus(ctx context.Context, id int64, viewer auth.Principal) (*model.User, error) {
	if id == viewer.UserID {
		return nil, Invalid("id", "不能停用自己")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status := model.UserStatusSuspended
	if !user.IsActive() {
		status = model.UserStatusActive
	}
	now := s.env.now()
	if err := s.users.Update(ctx, id, map[string]interface{}{"status": status, "updated_at": now}); err != nil {
		return nil, err
	}
	user.Status = status
	user.UpdatedAt = now
	return user, nil
}

// Login 使用用户名或邮箱登录
func (s *userService) Login(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountSuspended
	}

	// 只有在用户没有token时才生成新的token
	if user.Token == "" {
		user.Token = rand.String(32)
		if err := s.users.Update(ctx, user.ID, map[string]interface{}{"token": user.Token}); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *userService) GetByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.users.GetByToken(ctx, token)
}

// ResetToken 重新生成用户token，旧token立即失效
func (s *userService) ResetToken(ctx context.Context, id int64) (string, error) {
	token := rand.String(32)
	if err := s.users.Update(ctx, id, map[string]interface{}{"token": token, "updated_at": s.env.now()}); err != nil {
		return "", err
	}
	return token, nil
}

func (s *userService) FormOptions(op fillable.Operation, viewer auth.Principal) *FormOptions {
	return &FormOptions{
		Fields:   fillable.User.Fields(op, viewer),
		Statuses: []string{model.UserStatusActive, model.UserStatusSuspended},
		Roles:    model.Roles,
	}
}
