package dto

import "time"

// DiscountRequest 创建/更新折扣码
type DiscountRequest struct {
	Titre       string    `json:"titre" binding:"required,max=200"`
	Code        string    `json:"code" binding:"required,max=50"`
	Pourcentage float64   `json:"pourcentage" binding:"gt=0,lte=100"`
	DebutDate   time.Time `json:"debutdate" binding:"required"`
	FinDate     time.Time `json:"findate" binding:"required"`
	Tous        bool      `json:"tous"`
	Plan        string    `json:"plan,omitempty" binding:"omitempty,max=100"`
	People      []string  `json:"people,omitempty"`
	ImageURL    string    `json:"image_url,omitempty" binding:"omitempty,url"`
}

// DiscountResponse 折扣码及其推导状态
type DiscountResponse struct {
	ID          string    `json:"id"`
	Titre       string    `json:"titre"`
	Code        string    `json:"code"`
	Pourcentage float64   `json:"pourcentage"`
	DebutDate   time.Time `json:"debutdate"`
	FinDate     time.Time `json:"findate"`
	Tous        bool      `json:"tous"`
	Plan        string    `json:"plan,omitempty"`
	People      []string  `json:"people,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Status      string    `json:"status"` // active, expired, scheduled, unknown
}

// ValidateDiscountRequest 公开站点校验折扣码
type ValidateDiscountRequest struct {
	Code   string `json:"code" binding:"required"`
	UserID string `json:"user_id,omitempty"`
	Plan   string `json:"plan,omitempty"`
}

// ValidateDiscountResponse 校验结果
type ValidateDiscountResponse struct {
	Valid       bool    `json:"valid"`
	Code        string  `json:"code"`
	Pourcentage float64 `json:"pourcentage,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}
