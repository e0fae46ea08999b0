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
	"admincms/pkg/cache"
)

// AdZoneService 广告位服务接口
type AdZoneService interface {
	List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.AdZone], error)
	Get(ctx context.Context, id int64) (*model.AdZone, error)
	Create(ctx context.Context, attrs map[string]interface{}, viewer auth.Principal) (*model.AdZone, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}, viewer auth.Principal) (*model.AdZone, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (*model.AdZone, error)
	FormOptions(op fillable.Operation, viewer auth.Principal) *FormOptions
}

type adZoneService struct {
	env   Env
	zones repository.AdZoneRepository
}

// NewAdZoneService 创建广告位服务实例
func NewAdZoneService(env Env, zones repository.AdZoneRepository) AdZoneService {
	return &adZoneService{env: env, zones: zones}
}

func (s *adZoneService) List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.AdZone], error) {
	q := repository.AdZoneQuery.WithPageSizes(s.env.Pages).Build(p, viewer, s.env.now())
	return s.zones.List(ctx, q)
}

func (s *adZoneService) Get(ctx context.Context, id int64) (*model.AdZone, error) {
	return s.zones.GetByID(ctx, id)
}

func (s *adZoneService) Create(ctx context.Context, attrs map[string]interface{}, viewer auth.Principal) (*model.AdZone, error) {
	attrs = s.env.writable(fillable.AdZone, "ad_zone", attrs, fillable.Create, viewer)
	if slug, ok := attrs["slug"].(string); ok {
		taken, err := s.zones.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, Invalid("slug", "该slug已被使用")
		}
	}
	id, err := s.zones.Create(ctx, stamp(attrs, s.env.now(), true))
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, Invalid("slug", "该slug已被使用")
	}
	if err != nil {
		return nil, fmt.Errorf("创建广告位失败: %w", err)
	}
	return s.zones.GetByID(ctx, id)
}

func (s *adZoneService) Update(ctx context.Context, id int64, attrs map[string]interface{}, viewer auth.Principal) (*model.AdZone, error) {
	attrs = s.env.writable(fillable.AdZone, "ad_zone", attrs, fillable.Update, viewer)
	if err := s.zones.Update(ctx, id, stamp(attrs, s.env.now(), false)); err != nil {
		return nil, err
	}
	s.env.invalidate(cacheZonesPrefix)
	return s.zones.GetByID(ctx, id)
}

// Delete 删除广告位，广告位下仍有广告时拒绝
func (s *adZoneService) Delete(ctx context.Context, id int64) error {
	if _, err := s.zones.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.zones.CountAds(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return Invalid("ad_zone", fmt.Sprintf("广告位下还有 %d 个广告，无法删除", n))
	}
	if err := s.zones.Delete(ctx, id); err != nil {
		return err
	}
	s.env.invalidate(cacheZonesPrefix)
	return nil
}

// ToggleStatus 启用或停用广告位
func (s *adZoneService) ToggleStatus(ctx context.Context, id int64) (*model.AdZone, error) {
	zone, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	attrs := map[string]interface{}{"is_active": !zone.IsActive, "updated_at": s.env.now()}
	if err := s.zones.Update(ctx, id, attrs); err != nil {
		return nil, err
	}
	s.env.invalidate(cacheZonesPrefix)
	zone.IsActive = !zone.IsActive
	return zone, nil
}

func (s *adZoneService) FormOptions(op fillable.Operation, viewer auth.Principal) *FormOptions {
	return &FormOptions{Fields: fillable.AdZone.Fields(op, viewer)}
}

// AdvertisementService 广告服务接口
type AdvertisementService interface {
	List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.AdvertisementView], error)
	Get(ctx context.Context, id int64, viewer auth.Principal) (*model.Advertisement, error)
	Create(ctx context.Context, attrs map[string]interface{}, viewer auth.Principal) (*model.Advertisement, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}, viewer auth.Principal) (*model.Advertisement, error)
	Delete(ctx context.Context, id int64, viewer auth.Principal) error
	ToggleStatus(ctx context.Context, id int64, viewer auth.Principal) (*model.Advertisement, error)
	RunningForZone(ctx context.Context, slug string) ([]model.AdvertisementView, error)
	ExpireFinished(ctx context.Context) (int64, error)
	FormOptions(ctx context.Context, op fillable.Operation, viewer auth.Principal) (*FormOptions, error)
}

type advertisementService struct {
	env   Env
	ads   repository.AdvertisementRepository
	zones repository.AdZoneRepository
	media repository.MediaRepository
	users repository.UserRepository
}

// NewAdvertisementService 创建广告服务实例
func NewAdvertisementService(env Env, ads repository.AdvertisementRepository, zones repository.AdZoneRepository, media repository.MediaRepository, users repository.UserRepository) AdvertisementService {
	return &advertisementService{env: env, ads: ads, zones: zones, media: media, users: users}
}

// List 广告列表，非管理员只能看到自己创建的广告
func (s *advertisementService) List(ctx context.Context, p query.Params, viewer auth.Principal) (*query.Page[model.AdvertisementView], error) {
	now := s.env.now()
	q := repository.AdvertisementQuery.WithPageSizes(s.env.Pages).Build(p, viewer, now)
	page, err := s.ads.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("查询广告列表失败: %w", err)
	}
	return query.Map(page, func(a model.Advertisement) model.AdvertisementView { return a.View(now) }), nil
}

func (s *advertisementService) Get(ctx context.Context, id int64, viewer auth.Principal) (*model.Advertisement, error) {
	ad, err := s.ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanAccess(ad.CreatedBy) {
		return nil, ErrForbidden
	}
	media, err := s.media.ForAttachable(ctx, model.AttachableAdvertisement, []int64{id})
	if err != nil {
		return nil, err
	}
	ad.Media = media[id]
	return ad, nil
}

// checkWindow 校验广告位存在以及结束时间晚于开始时间
func (s *advertisementService) checkWindow(ctx context.Context, attrs map[string]interface{}, current *model.Advertisement) error {
	if zoneID, ok := attrs["ad_zone_id"].(int64); ok {
		if _, err := s.zones.GetByID(ctx, zoneID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return Invalid("ad_zone_id", "广告位不存在")
			}
			return err
		}
	}

	var start time.Time
	var end *time.Time
	if current != nil {
		start, end = current.StartTime, current.EndTime
	}
	if v, ok := attrs["start_time"].(time.Time); ok {
		start = v
	}
	if v, ok := attrs["end_time"].(time.Time); ok {
		end = &v
	}
	if end != nil && !end.After(start) {
		return Invalid("end_time", "结束时间必须晚于开始时间")
	}
	return nil
}

func (s *advertisementService) Create(ctx context.Context, attrs map[string]interface{}, viewer auth.Principal) (*model.Advertisement, error) {
	attrs = s.env.writable(fillable.Advertisement, "advertisement", attrs, fillable.Create, viewer)
	if err := checkOwner(ctx, s.users, "created_by", attrs); err != nil {
		return nil, err
	}
	if _, ok := attrs["created_by"]; !ok {
		attrs["created_by"] = viewer.UserID
	}
	if err := s.checkWindow(ctx, attrs, nil); err != nil {
		return nil, err
	}
	id, err := s.ads.Create(ctx, stamp(attrs, s.env.now(), true))
	if err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, Invalid("created_by", "用户不存在")
		}
		return nil, fmt.Errorf("创建广告失败: %w", err)
	}
	s.env.invalidate(cacheZonesPrefix)
	return s.ads.GetByID(ctx, id)
}

func (s *advertisementService) Update(ctx context.Context, id int64, attrs map[string]interface{}, viewer auth.Principal) (*model.Advertisement, error) {
	ad, err := s.ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanAccess(ad.CreatedBy) {
		return nil, ErrForbidden
	}
	attrs = s.env.writable(fillable.Advertisement, "advertisement", attrs, fillable.Update, viewer)
	if err := checkOwner(ctx, s.users, "created_by", attrs); err != nil {
		return nil, err
	}
	if err := s.checkWindow(ctx, attrs, ad); err != nil {
		return nil, err
	}
	if err := s.ads.Update(ctx, id, stamp(attrs, s.env.now(), false)); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, Invalid("created_by", "用户不存在")
		}
		return nil, err
	}
	s.env.invalidate(cacheZonesPrefix)
	return s.Get(ctx, id, viewer)
}

func (s *advertisementService) Delete(ctx context.Context, id int64, viewer auth.Principal) error {
	ad, err := s.ads.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.CanAccess(ad.CreatedBy) {
		return ErrForbidden
	}
	if err := s.ads.Delete(ctx, id); err != nil {
		return err
	}
	s.env.invalidate(cacheZonesPrefix)
	return nil
}

// ToggleStatus 在投放和停用之间切换，已结束的广告不能重新投放
func (s *advertisementService) ToggleStatus(ctx context.Context, id int64, viewer auth.Principal) (*model.Advertisement, error) {
	ad, err := s.ads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanAccess(ad.CreatedBy) {
		return nil, ErrForbidden
	}

	now := s.env.now()
	status := model.AdStatusActive
	if ad.Status == model.AdStatusActive {
		status = model.AdStatusInactive
	} else if ad.EndTime != nil && !ad.EndTime.After(now) {
		return nil, Invalid("end_time", "广告已结束，请先修改结束时间")
	}
	if err := s.ads.Update(ctx, id, map[string]interface{}{"status": status, "updated_at": now}); err != nil {
		return nil, err
	}
	s.env.invalidate(cacheZonesPrefix)
	ad.Status = status
	ad.UpdatedAt = now
	return ad, nil
}

// RunningForZone 前台获取广告位中正在投放的广告，停用的广告位视为不存在
func (s *advertisementService) RunningForZone(ctx context.Context, slug string) ([]model.AdvertisementView, error) {
	zone, err := s.zones.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !zone.IsActive {
		return nil, ErrNotFound
	}

	now := s.env.now()
	ads, err := cache.Remember(ctx, s.env.Cache, cacheZonesPrefix+slug+":ads", func(ctx context.Context) ([]model.Advertisement, error) {
		return s.ads.Scheduled(ctx, zone.ID, now)
	})
	if err != nil {
		return nil, err
	}

	// 缓存的是排期中的广告，缓存期间有的开始有的结束
	views := make([]model.AdvertisementView, 0, len(ads))
	for i := range ads {
		if ads[i].IsRunning(now) {
			views = append(views, ads[i].View(now))
		}
	}
	return views, nil
}

// ExpireFinished 将已结束的广告标记为过期
func (s *advertisementService) ExpireFinished(ctx context.Context) (int64, error) {
	n, err := s.ads.ExpireFinished(ctx, s.env.now())
	if err != nil {
		return 0, fmt.Errorf("标记过期广告失败: %w", err)
	}
	if n > 0 {
		s.env.invalidate(cacheZonesPrefix)
	}
	return n, nil
}

func (s *advertisementService) FormOptions(ctx context.Context, op fillable.Operation, viewer auth.Principal) (*FormOptions, error) {
	zones, err := s.zones.All(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]ZoneOption, 0, len(zones))
	for _, z := range zones {
		options = append(options, ZoneOption{ID: z.ID, Name: z.Name, Slug: z.Slug})
	}
	return &FormOptions{
		Fields:   fillable.Advertisement.Fields(op, viewer),
		Statuses: model.AdStatuses,
		Zones:    options,
	}, nil
}
