package model

import (
	"time"

	"gorm.io/gorm"
)

// Admin 控制台操作员
type Admin struct {
	ID           string    `gorm:"primaryKey;size:26" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:100" json:"name"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	GithubLogin  *string   `gorm:"size:100;uniqueIndex" json:"github_login,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
