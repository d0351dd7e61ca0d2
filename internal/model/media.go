package model

import (
	"time"

	"gorm.io/gorm"
)

// MediaItem 媒体库条目，其他实体只通过 URL 引用
type MediaItem struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	URL       string    `gorm:"size:1000;not null" json:"url"`
	Type      string    `gorm:"size:100" json:"type"` // MIME
	ObjectKey string    `gorm:"size:500" json:"object_key,omitempty"`
	Size      int64     `json:"size,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (MediaItem) TableName() string {
	return "media"
}

func (m *MediaItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
