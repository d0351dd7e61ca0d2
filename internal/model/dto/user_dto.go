package dto

// AddReferralRequest 追加佣金流水
type AddReferralRequest struct {
	FromUserID  string  `json:"from_user_id,omitempty"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"max=500"`
}

// ActivatePricingRequest 为用户开通套餐
type ActivatePricingRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	PlanID    string `json:"plan_id" binding:"required"`
}
