package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	AppTypeWeb    = "web"
	AppTypeMobile = "mobile"
	AppTypeAPI    = "api"
)

// MaintenanceConfig 维护页展示内容
type MaintenanceConfig struct {
	Message     string   `json:"message"`
	ButtonTitle string   `json:"button_title,omitempty"`
	ButtonURL   string   `json:"button_url,omitempty"`
	MediaURL    string   `json:"media_url,omitempty"`
	TargetUsers []string `json:"target_users,omitempty"` // 为空表示所有用户
}

type Application struct {
	ID                string             `gorm:"primaryKey;size:26" json:"id"`
	Name              string             `gorm:"size:100;not null" json:"name"`
	URL               string             `gorm:"size:500" json:"url"`
	Type              string             `gorm:"size:20;not null" json:"type"` // web, mobile, api
	Status            bool               `gorm:"index" json:"status"`           // true 表示维护中
	MaintenanceConfig *MaintenanceConfig `gorm:"type:text;serializer:json" json:"maintenance_config,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// AppStatusHistory 状态变更记录，只追加
type AppStatusHistory struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	AppID     string    `gorm:"size:26;not null;index" json:"app_id"`
	Status    bool      `json:"status"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (AppStatusHistory) TableName() string {
	return "app_status_history"
}

func (h *AppStatusHistory) BeforeCreate(tx *gorm.DB) error {
	ensureID(&h.ID)
	return nil
}
