package model

import (
	"time"

	"gorm.io/gorm"
)

// DiscountCode 折扣码，状态在读取时由有效期推导，不落库
type DiscountCode struct {
	ID          string      `gorm:"primaryKey;size:26" json:"id"`
	Titre       string      `gorm:"size:200;not null" json:"titre"`
	Code        string      `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Pourcentage float64     `json:"pourcentage"`
	DebutDate   time.Time   `gorm:"index" json:"debutdate"`
	FinDate     time.Time   `gorm:"index" json:"findate"`
	Tous        bool        `json:"tous"`                              // 对所有用户有效
	Plan        string      `gorm:"size:100" json:"plan,omitempty"`    // 限定套餐，为空表示不限
	People      StringArray `gorm:"type:text" json:"people,omitempty"` // tous=false 时的用户 ID 白名单
	ImageURL    string      `gorm:"size:1000" json:"image_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (DiscountCode) TableName() string {
	return "discount_codes"
}

func (d *DiscountCode) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
