package dto

// PlanRequest 创建/更新套餐，features_text 每行一项
type PlanRequest struct {
	Name                string   `json:"name" binding:"required,max=100"`
	Price               float64  `json:"price" binding:"min=0"`
	PromoPrice          *float64 `json:"promo_price,omitempty" binding:"omitempty,min=0"`
	Currency            string   `json:"currency" binding:"required,max=10"`
	Period              string   `json:"period" binding:"required,oneof=daily weekly monthly annual"`
	FeaturesText        string   `json:"features_text"`
	MissingFeaturesText string   `json:"missing_features_text"`
	Popular             bool     `json:"popular"`
}

// PlanResponse 套餐，附带可直接编辑的文本形式
type PlanResponse struct {
	ID                  string   `json:"id"`
	AppID               string   `json:"app_id"`
	Name                string   `json:"name"`
	Price               float64  `json:"price"`
	PromoPrice          *float64 `json:"promo_price,omitempty"`
	Currency            string   `json:"currency"`
	Period              string   `json:"period"`
	Features            []string `json:"features"`
	MissingFeatures     []string `json:"missing_features"`
	FeaturesText        string   `json:"features_text"`
	MissingFeaturesText string   `json:"missing_features_text"`
	Popular             bool     `json:"popular"`
}
