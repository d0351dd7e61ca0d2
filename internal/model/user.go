package model

import (
	"time"

	"gorm.io/gorm"
)

// User 终端用户档案，referral 与 pricing 为子集合
type User struct {
	ID            string    `gorm:"primaryKey;size:26" json:"id"`
	Email         string    `gorm:"size:100;index" json:"email"`
	DisplayName   string    `gorm:"size:100" json:"display_name"`
	PhotoURL      string    `gorm:"size:500" json:"photo_url,omitempty"`
	Phone         string    `gorm:"size:30" json:"phone,omitempty"`
	ReferralCode  string    `gorm:"size:20;index" json:"referral_code,omitempty"`
	ReferredBy    string    `gorm:"size:26" json:"referred_by,omitempty"`
	SoldeReferral float64   `gorm:"column:solde_referral;default:0" json:"solde_referral"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// ReferralEntry 佣金流水，与 User.SoldeReferral 同步更新
type ReferralEntry struct {
	ID          string    `gorm:"primaryKey;size:26" json:"id"`
	UserID      string    `gorm:"size:26;not null;index" json:"user_id"`
	FromUserID  string    `gorm:"size:26" json:"from_user_id,omitempty"`
	Amount      float64   `json:"amount"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (ReferralEntry) TableName() string {
	return "user_referrals"
}

func (r *ReferralEntry) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// UserPricing 用户在某个产品上的有效套餐
type UserPricing struct {
	ID        string     `gorm:"primaryKey;size:26" json:"id"`
	UserID    string     `gorm:"size:26;not null;index" json:"user_id"`
	ProductID string     `gorm:"size:26;not null;index" json:"product_id"`
	PlanID    string     `gorm:"size:26" json:"plan_id"`
	PlanName  string     `gorm:"size:100" json:"plan_name"`
	Period    string     `gorm:"size:20" json:"period"`
	Price     float64    `json:"price"`
	StartedAt time.Time  `json:"started_at"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (UserPricing) TableName() string {
	return "user_pricings"
}

func (p *UserPricing) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
