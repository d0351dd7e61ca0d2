package dto

import "time"

// MaintenanceEventRequest 创建/更新维护事件
type MaintenanceEventRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=5000"`
	Date        time.Time  `json:"date" binding:"required"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Status      string     `json:"status" binding:"required,oneof=scheduled in_progress resolved"`
	AppID       string     `json:"app_id" binding:"required"`
	// 为 true 时生成并发布维护公告
	Announce bool `json:"announce"`
}
