package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	EventStatusScheduled  = "scheduled"
	EventStatusInProgress = "in_progress"
	EventStatusResolved   = "resolved"
)

// MaintenanceEvent 历史维护事件，仅用于报表，与 Application.Status 无关联
type MaintenanceEvent struct {
	ID          string     `gorm:"primaryKey;size:26" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Date        time.Time  `gorm:"index" json:"date"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Status      string     `gorm:"size:20;index" json:"status"`
	AppID       string     `gorm:"size:26;index" json:"app_id"`
	AppName     string     `gorm:"size:100" json:"app_name"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (MaintenanceEvent) TableName() string {
	return "maintenance_events"
}

func (e *MaintenanceEvent) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
