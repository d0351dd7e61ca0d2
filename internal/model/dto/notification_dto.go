package dto

// CreateNotificationRequest 创建并分发通知
type CreateNotificationRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Message  string `json:"message" binding:"required,max=4000"`
	ImageURL string `json:"image_url,omitempty" binding:"omitempty,url"`
	Channel  string `json:"channel" binding:"required,oneof=telegram email all"`
	Pin      bool   `json:"pin"`
}
