package dto

// ContentResponse 内容生成流程的统一返回
type ContentResponse struct {
	Success   bool   `json:"success"`
	Text      string `json:"text,omitempty"`
	Title     string `json:"title,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	MessageID int64  `json:"message_id,omitempty"`
	Posted    bool   `json:"posted"`
	Skipped   bool   `json:"skipped,omitempty"` // 模型判断无需发帖（NO_POST）
	Error     string `json:"error,omitempty"`
}

// DailySummaryPostRequest 按主题与摘要生成帖子
type DailySummaryPostRequest struct {
	Topic  string `json:"topic" binding:"required,oneof=status pricing discounts maintenance"`
	Digest string `json:"digest" binding:"required"`
}

// CommunityPostRequest 社区帖子，theme 为空时按星期选择
type CommunityPostRequest struct {
	Theme   string `json:"theme,omitempty" binding:"max=200"`
	Publish bool   `json:"publish"`
}

// StatusAnnouncementRequest 应用状态公告
type StatusAnnouncementRequest struct {
	AppID   string `json:"app_id" binding:"required"`
	Publish bool   `json:"publish"`
}

// PricingAnnouncementRequest 套餐公告
type PricingAnnouncementRequest struct {
	PlanID  string `json:"plan_id" binding:"required"`
	Publish bool   `json:"publish"`
}

// DiscountAnnouncementRequest 折扣码公告
type DiscountAnnouncementRequest struct {
	DiscountID string `json:"discount_id" binding:"required"`
	Publish    bool   `json:"publish"`
}

// MaintenanceAnnouncementRequest 维护事件公告
type MaintenanceAnnouncementRequest struct {
	EventID string `json:"event_id" binding:"required"`
	Publish bool   `json:"publish"`
}

// NotificationTextRequest 由简介生成通知标题与正文
type NotificationTextRequest struct {
	Brief string `json:"brief" binding:"required,max=2000"`
	Tone  string `json:"tone,omitempty" binding:"omitempty,oneof=neutral enthusiastic formal urgent"`
}

// GenerateImageRequest 生成图片并存入媒体库
type GenerateImageRequest struct {
	Prompt string `json:"prompt" binding:"required,max=2000"`
}

// PublishRequest 直接发布到 Telegram 频道
type PublishRequest struct {
	Text     string `json:"text" binding:"required,max=4096"`
	ImageURL string `json:"image_url,omitempty" binding:"omitempty,url"`
	Pin      bool   `json:"pin"`
}
