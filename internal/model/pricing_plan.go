package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAnnual  = "annual"
)

// PricingPlan 属于某个 Application
type PricingPlan struct {
	ID              string      `gorm:"primaryKey;size:26" json:"id"`
	AppID           string      `gorm:"size:26;not null;index" json:"app_id"`
	Name            string      `gorm:"size:100;not null" json:"name"`
	Price           float64     `json:"price"`
	PromoPrice      *float64    `json:"promo_price,omitempty"`
	Currency        string      `gorm:"size:10;not null" json:"currency"`
	Period          string      `gorm:"size:20;not null" json:"period"`
	Features        StringArray `gorm:"type:text" json:"features"`
	MissingFeatures StringArray `gorm:"type:text" json:"missing_features,omitempty"`
	Popular         bool        `json:"popular"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (PricingPlan) TableName() string {
	return "pricing_plans"
}

func (p *PricingPlan) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
