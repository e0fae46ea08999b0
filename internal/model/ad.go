package model

import "time"

// 广告状态
const (
	AdStatusActive   = "active"
	AdStatusInactive = "inactive"
	AdStatusExpired  = "expired"
)

// AdStatuses 所有合法广告状态
var AdStatuses = []string{AdStatusActive, AdStatusInactive, AdStatusExpired}

// AdZone 广告位模型
type AdZone struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	Width       int       `db:"width" json:"width"`
	Height      int       `db:"height" json:"height"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Advertisement 广告模型
type Advertisement struct {
	ID          int64      `db:"id" json:"id"`
	AdZoneID    int64      `db:"ad_zone_id" json:"ad_zone_id"`
	CreatedBy   int64      `db:"created_by" json:"created_by"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Image       string     `db:"image" json:"image"`
	LinkURL     string     `db:"link_url" json:"link_url"`
	Status      string     `db:"status" json:"status"`
	Priority    int        `db:"priority" json:"priority"`
	StartTime   time.Time  `db:"start_time" json:"start_time"`
	EndTime     *time.Time `db:"end_time" json:"end_time"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	Media []Media `db:"-" json:"media,omitempty"`
}

// IsRunning 广告在给定时间是否处于投放中
func (a *Advertisement) IsRunning(now time.Time) bool {
	if a.Status != AdStatusActive || now.Before(a.StartTime) {
		return false
	}
	return a.EndTime == nil || now.Before(*a.EndTime)
}

// AdvertisementView 广告返回结构，附带计算属性
type AdvertisementView struct {
	*Advertisement
	Running bool `json:"is_running"`
}

// View 生成带计算属性的返回结构
func (a *Advertisement) View(now time.Time) AdvertisementView {
	return AdvertisementView{Advertisement: a, Running: a.IsRunning(now)}
}
