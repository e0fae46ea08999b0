package model

import "time"

// 可关联媒体的模型类型
const (
	AttachablePost          = "post"
	AttachableAdvertisement = "advertisement"
)

// Media 上传文件模型，通过 attachable_type/attachable_id 多态关联
type Media struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Disk           string    `db:"disk" json:"disk"`
	Path           string    `db:"path" json:"-"`
	OriginalName   string    `db:"original_name" json:"original_name"`
	MimeType       string    `db:"mime_type" json:"mime_type"`
	Size           int64     `db:"size" json:"size"`
	AttachableType *string   `db:"attachable_type" json:"attachable_type"`
	AttachableID   *int64    `db:"attachable_id" json:"attachable_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
