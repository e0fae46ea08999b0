package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"admincms/internal/auth"
	"admincms/internal/model"
	"admincms/internal/query"
	"admincms/internal/repository"
	"admincms/pkg/storage"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen 用于识别文件类型的头部长度
const sniffLen = 3072

// UploadLimits 上传限制
type UploadLimits struct {
	MaxSize      int64
	AllowedTypes []string
}

// Upload 待保存的上传文件
type Upload struct {
	Name           string
	Size           int64
	Reader         io.Reader
	AttachableType string
	AttachableID   int64
}

// MediaService 上传文件服务接口
type MediaService interface {
	List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.Media], error)
	Upload(ctx context.Context, u Upload, viewer auth.Principal) (*model.Media, error)
	Open(ctx context.Context, id int64) (*model.Media, io.ReadCloser, error)
	Delete(ctx context.Context, id int64, viewer auth.Principal) error
}

type mediaService struct {
	env    Env
	limits UploadLimits
	store  storage.Store
	media  repository.MediaRepository
	posts  repository.PostRepository
	ads    repository.AdvertisementRepository
}

// NewMediaService 创建上传文件服务实例
func NewMediaService(env Env, limits UploadLimits, store storage.Store, media repository.MediaRepository, posts repository.PostRepository, ads repository.AdvertisementRepository) MediaService {
	return &mediaService{env: env, limits: limits, store: store, media: media, posts: posts, ads: ads}
}

func (s *mediaService) List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.Media], error) {
	q := repository.MediaQuery.WithPageSizes(s.env.Pages).Build(p, viewer, s.env.now())
	return s.media.List(ctx, q)
}

// checkAttachable 校验关联目标存在且当前用户有权限
func (s *mediaService) checkAttachable(ctx context.Context, u Upload, viewer auth.Principal) error {
	if u.AttachableType == "" && u.AttachableID == 0 {
		return nil
	}
	if u.AttachableType == "" || u.AttachableID == 0 {
		return Invalid("attachable_id", "关联类型和关联ID必须同时提供")
	}

	var owner int64
	switch u.AttachableType {
	case model.AttachablePost:
		post, err := s.posts.GetByID(ctx, u.AttachableID, false)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return Invalid("attachable_id", "关联的文章不存在")
			}
			return err
		}
		owner = post.UserID
	case model.AttachableAdvertisement:
		ad, err := s.ads.GetByID(ctx, u.AttachableID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return Invalid("attachable_id", "关联的广告不存在")
			}
			return err
		}
		owner = ad.CreatedBy
	default:
		return Invalid("attachable_type", "不支持的关联类型")
	}
	if !viewer.CanAccess(owner) {
		return ErrForbidden
	}
	return nil
}

func (s *mediaService) allowed(mime *mimetype.MIME) bool {
	for _, t := range s.limits.AllowedTypes {
		if mime.Is(t) {
			return true
		}
	}
	return false
}

// Upload 校验大小和文件类型后保存文件，写库失败时删除已保存的文件
func (s *mediaService) Upload(ctx context.Context, u Upload, viewer auth.Principal) (*model.Media, error) {
	if s.limits.MaxSize > 0 && u.Size > s.limits.MaxSize {
		return nil, Invalid("file", fmt.Sprintf("文件大小不能超过 %d KB", s.limits.MaxSize>>10))
	}
	if err := s.checkAttachable(ctx, u, viewer); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(u.Reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, Invalid("file", "文件不能为空")
	}
	mime := mimetype.Detect(head)
	if !s.allowed(mime) {
		return nil, Invalid("file", "不支持的文件类型 "+mime.String())
	}

	now := s.env.now()
	path, err := s.store.Put(ctx, u.Name, io.MultiReader(bytes.NewReader(head), u.Reader), mime.String())
	if err != nil {
		return nil, fmt.Errorf("保存文件失败: %w", err)
	}

	attrs := map[string]interface{}{
		"user_id":       viewer.UserID,
		"disk":          s.store.Disk(),
		"path":          path,
		"original_name": u.Name,
		"mime_type":     mime.String(),
		"size":          u.Size,
		"created_at":    now,
	}
	if u.AttachableType != "" {
		attrs["attachable_type"] = u.AttachableType
		attrs["attachable_id"] = u.AttachableID
	}
	id, err := s.media.Create(ctx, attrs)
	if err != nil {
		if derr := s.store.Delete(ctx, path); derr != nil {
			s.env.Logger.Warn("删除未入库的文件失败", "path", path, "error", derr)
		}
		return nil, fmt.Errorf("保存文件记录失败: %w", err)
	}
	return s.media.GetByID(ctx, id)
}

// Open 读取文件内容，调用方负责关闭
func (s *mediaService) Open(ctx context.Context, id int64) (*model.Media, io.ReadCloser, error) {
	m, err := s.media.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, m.Path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return m, rc, nil
}

func (s *mediaService) Delete(ctx context.Context, id int64, viewer auth.Principal) error {
	m, err := s.media.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.CanAccess(m.UserID) {
		return ErrForbidden
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, m.Path); err != nil {
		s.env.Logger.Warn("删除文件失败", "media_id", id, "path", m.Path, "error", err)
	}
	return nil
}
