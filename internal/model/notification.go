package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ChannelTelegram = "telegram"
	ChannelEmail    = "email"
	ChannelAll      = "all"

	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationPartial = "partial"
	NotificationFailed  = "failed"
)

type Notification struct {
	ID                string     `gorm:"primaryKey;size:26" json:"id"`
	Title             string     `gorm:"size:200;not null" json:"title"`
	Message           string     `gorm:"type:text;not null" json:"message"`
	ImageURL          string     `gorm:"size:1000" json:"image_url,omitempty"`
	Channel           string     `gorm:"size:20;not null" json:"channel"` // telegram, email, all
	Status            string     `gorm:"size:20;index" json:"status"`
	TelegramMessageID int64      `json:"telegram_message_id,omitempty"`
	Pinned            bool       `json:"pinned"`
	EmailStatus       string     `gorm:"size:20" json:"email_status,omitempty"`
	Error             string     `gorm:"type:text" json:"error,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
