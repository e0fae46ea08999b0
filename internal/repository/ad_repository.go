package repository

import (
	"context"
	"fmt"
	"time"

	"admincms/internal/model"
	"admincms/internal/query"

	"github.com/jmoiron/sqlx"
)

// AdZoneRepository 广告位仓库接口
type AdZoneRepository interface {
	List(ctx context.Context, q *query.Query) (*query.Page[model.AdZone], error)
	All(ctx context.Context) ([]model.AdZone, error)
	GetByID(ctx context.Context, id int64) (*model.AdZone, error)
	GetBySlug(ctx context.Context, slug string) (*model.AdZone, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CountAds(ctx context.Context, zoneID int64) (int64, error)
	Create(ctx context.Context, attrs map[string]interface{}) (int64, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// AdvertisementRepository 广告仓库接口
type AdvertisementRepository interface {
	List(ctx context.Context, q *query.Query) (*query.Page[model.Advertisement], error)
	GetByID(ctx context.Context, id int64) (*model.Advertisement, error)
	Scheduled(ctx context.Context, zoneID int64, now time.Time) ([]model.Advertisement, error)
	Create(ctx context.Context, attrs map[string]interface{}) (int64, error)
	Update(ctx context.Context, id int64, attrs map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	ExpireFinished(ctx context.Context, now time.Time) (int64, error)
}

var (
	zoneWritable = newColumnSet("name", "slug", "description", "width", "height", "is_active", "created_at", "updated_at")
	adWritable   = newColumnSet(
		"ad_zone_id", "created_by", "title", "description", "image", "link_url", "status",
		"priority", "start_time", "end_time", "created_at", "updated_at",
	)
)

type adZoneRepository struct {
	conn
}

// NewAdZoneRepository 创建广告位仓库实例
func NewAdZoneRepository(db *sqlx.DB) AdZoneRepository {
	return &adZoneRepository{conn{db: db}}
}

func (r *adZoneRepository) List(ctx context.Context, q *query.Query) (*query.Page[model.AdZone], error) {
	return query.Fetch[model.AdZone](ctx, r.ext(), q)
}

// All 全部广告位，用于表单选项
func (r *adZoneRepository) All(ctx context.Context) ([]model.AdZone, error) {
	var zones []model.AdZone
	stmt := "SELECT " + AdZoneQuery.SelectColumns() + " FROM ad_zones ORDER BY name, id"
	if err := sqlx.SelectContext(ctx, r.ext(), &zones, stmt); err != nil {
		return nil, fmt.Errorf("查询广告位失败: %w", err)
	}
	return zones, nil
}

func (r *adZoneRepository) GetByID(ctx context.Context, id int64) (*model.AdZone, error) {
	zone := &model.AdZone{}
	if err := r.get(ctx, zone, "SELECT "+AdZoneQuery.SelectColumns()+" FROM ad_zones WHERE id = ?", id); err != nil {
		return nil, err
	}
	return zone, nil
}

func (r *adZoneRepository) GetBySlug(ctx context.Context, slug string) (*model.AdZone, error) {
	zone := &model.AdZone{}
	if err := r.get(ctx, zone, "SELECT "+AdZoneQuery.SelectColumns()+" FROM ad_zones WHERE slug = ?", slug); err != nil {
		return nil, err
	}
	return zone, nil
}

func (r *adZoneRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM ad_zones WHERE slug = ?", slug)
}

// CountAds 广告位下的广告数量
func (r *adZoneRepository) CountAds(ctx context.Context, zoneID int64) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, r.ext(), &n, "SELECT COUNT(*) FROM advertisements WHERE ad_zone_id = ?", zoneID)
	return n, err
}

func (r *adZoneRepository) Create(ctx context.Context, attrs map[string]interface{}) (int64, error) {
	return r.insert(ctx, "ad_zones", zoneWritable, attrs)
}

func (r *adZoneRepository) Update(ctx context.Context, id int64, attrs map[string]interface{}) error {
	return r.update(ctx, "ad_zones", zoneWritable, id, attrs)
}

func (r *adZoneRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "ad_zones", id)
}

type advertisementRepository struct {
	conn
}

// NewAdvertisementRepository 创建广告仓库实例
func NewAdvertisementRepository(db *sqlx.DB) AdvertisementRepository {
	return &advertisementRepository{conn{db: db}}
}

func (r *advertisementRepository) List(ctx context.Context, q *query.Query) (*query.Page[model.Advertisement], error) {
	return query.Fetch[model.Advertisement](ctx, r.ext(), q)
}

func (r *advertisementRepository) GetByID(ctx context.Context, id int64) (*model.Advertisement, error) {
	ad := &model.Advertisement{}
	if err := r.get(ctx, ad, "SELECT "+AdvertisementQuery.SelectColumns()+" FROM advertisements WHERE id = ?", id); err != nil {
		return nil, err
	}
	return ad, nil
}

// Scheduled 广告位下启用且尚未结束的广告，包含未到开始时间的，按优先级从高到低
func (r *advertisementRepository) Scheduled(ctx context.Context, zoneID int64, now time.Time) ([]model.Advertisement, error) {
	const stmt = "SELECT %s FROM advertisements WHERE ad_zone_id = ? AND status = ? AND (end_time IS NULL OR end_time > ?)" +
		" ORDER BY priority DESC, id ASC"

	var ads []model.Advertisement
	if err := sqlx.SelectContext(ctx, r.ext(), &ads, fmt.Sprintf(stmt, AdvertisementQuery.SelectColumns()),
		zoneID, model.AdStatusActive, now); err != nil {
		return nil, fmt.Errorf("查询排期中的广告失败: %w", err)
	}
	return ads, nil
}

func (r *advertisementRepository) Create(ctx context.Context, attrs map[string]interface{}) (int64, error) {
	return r.insert(ctx, "advertisements", adWritable, attrs)
}

func (r *advertisementRepository) Update(ctx context.Context, id int64, attrs map[string]interface{}) error {
	return r.update(ctx, "advertisements", adWritable, id, attrs)
}

func (r *advertisementRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "advertisements", id)
}

// ExpireFinished 将已过结束时间的投放中广告标记为过期
func (r *advertisementRepository) ExpireFinished(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.ext().ExecContext(ctx,
		"UPDATE advertisements SET status = ?, updated_at = ? WHERE status = ? AND end_time IS NOT NULL AND end_time <= ?",
		model.AdStatusExpired, now, model.AdStatusActive, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
