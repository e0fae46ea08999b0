package types

import "time"

// AdZoneCreateRequest 创建广告位
type AdZoneCreateRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	Slug        string `json:"slug" binding:"required,slug,max=128"`
	Description string `json:"description" binding:"max=2000"`
	Width       int    `json:"width" binding:"gte=0,lte=10000"`
	Height      int    `json:"height" binding:"gte=0,lte=10000"`
	IsActive    *bool  `json:"is_active"`
}

func (r *AdZoneCreateRequest) Attributes() map[string]interface{} {
	a := attrs{
		"name":        r.Name,
		"slug":        r.Slug,
		"description": r.Description,
		"width":       r.Width,
		"height":      r.Height,
		"is_active":   true,
	}
	a.setBool("is_active", r.IsActive)
	return a
}

// AdZoneUpdateRequest 更新广告位
type AdZoneUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=128"`
	Slug        *string `json:"slug" binding:"omitempty,slug,max=128"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Width       *int    `json:"width" binding:"omitempty,gte=0,lte=10000"`
	Height      *int    `json:"height" binding:"omitempty,gte=0,lte=10000"`
	IsActive    *bool   `json:"is_active"`
}

func (r *AdZoneUpdateRequest) Attributes() map[string]interface{} {
	a := attrs{}
	a.setString("name", r.Name)
	a.setString("slug", r.Slug)
	a.setString("description", r.Description)
	a.setInt("width", r.Width)
	a.setInt("height", r.Height)
	a.setBool("is_active", r.IsActive)
	return a
}

// AdvertisementCreateRequest 创建广告
type AdvertisementCreateRequest struct {
	AdZoneID    int64      `json:"ad_zone_id" binding:"required,gt=0"`
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description" binding:"max=2000"`
	Image       string     `json:"image" binding:"max=255"`
	LinkURL     string     `json:"link_url" binding:"omitempty,url,max=500"`
	Priority    int        `json:"priority" binding:"gte=0,lte=100"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     *time.Time `json:"end_time"`
	Status      string     `json:"status" binding:"required,oneof=active inactive expired"`
	CreatedBy   *int64     `json:"created_by" binding:"omitempty,gt=0"`
}

func (r *AdvertisementCreateRequest) Attributes() map[string]interface{} {
	a := attrs{
		"ad_zone_id":  r.AdZoneID,
		"title":       r.Title,
		"description": r.Description,
		"image":       r.Image,
		"link_url":    r.LinkURL,
		"priority":    r.Priority,
		"start_time":  r.StartTime,
		"status":      r.Status,
	}
	if r.EndTime != nil {
		a.set("end_time", *r.EndTime)
	}
	a.setInt64("created_by", r.CreatedBy)
	return a
}

// AdvertisementUpdateRequest 更新广告
type AdvertisementUpdateRequest struct {
	AdZoneID    *int64     `json:"ad_zone_id" binding:"omitempty,gt=0"`
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Image       *string    `json:"image" binding:"omitempty,max=255"`
	LinkURL     *string    `json:"link_url" binding:"omitempty,url,max=500"`
	Priority    *int       `json:"priority" binding:"omitempty,gte=0,lte=100"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Status      *string    `json:"status" binding:"omitempty,oneof=active inactive expired"`
	CreatedBy   *int64     `json:"created_by" binding:"omitempty,gt=0"`
}

func (r *AdvertisementUpdateRequest) Attributes() map[string]interface{} {
	a := attrs{}
	a.setInt64("ad_zone_id", r.AdZoneID)
	a.setString("title", r.Title)
	a.setString("description", r.Description)
	a.setString("image", r.Image)
	a.setString("link_url", r.LinkURL)
	a.setInt("priority", r.Priority)
	if r.StartTime != nil {
		a.set("start_time", *r.StartTime)
	}
	if r.EndTime != nil {
		a.set("end_time", *r.EndTime)
	}
	a.setString("status", r.Status)
	a.setInt64("created_by", r.CreatedBy)
	return a
}
