package dto

// MaintenanceConfigInput 维护页配置
type MaintenanceConfigInput struct {
	Message     string   `json:"message" binding:"max=2000"`
	ButtonTitle string   `json:"button_title,omitempty" binding:"omitempty,max=100"`
	ButtonURL   string   `json:"button_url,omitempty" binding:"omitempty,url"`
	MediaURL    string   `json:"media_url,omitempty" binding:"omitempty,url"`
	TargetUsers []string `json:"target_users,omitempty"`
}

// CreateApplicationRequest 创建应用
type CreateApplicationRequest struct {
	Name              string                  `json:"name" binding:"required,max=100"`
	URL               string                  `json:"url" binding:"omitempty,url"`
	Type              string                  `json:"type" binding:"required,oneof=web mobile api"`
	MaintenanceConfig *MaintenanceConfigInput `json:"maintenance_config,omitempty"`
}

// UpdateApplicationRequest 更新应用设置
type UpdateApplicationRequest struct {
	Name              *string                 `json:"name,omitempty" binding:"omitempty,max=100"`
	URL               *string                 `json:"url,omitempty" binding:"omitempty,url"`
	Type              *string                 `json:"type,omitempty" binding:"omitempty,oneof=web mobile api"`
	MaintenanceConfig *MaintenanceConfigInput `json:"maintenance_config,omitempty"`
}

// UpdateStatusRequest 切换维护状态
type UpdateStatusRequest struct {
	Status            *bool                   `json:"status" binding:"required"`
	MaintenanceConfig *MaintenanceConfigInput `json:"maintenance_config,omitempty"`
	// 为 true 时生成并发布状态公告
	Announce bool `json:"announce"`
}

// UpdateStatusResponse 切换结果
type UpdateStatusResponse struct {
	Status            bool   `json:"status"`
	Timestamp         string `json:"timestamp"`
	Announced         bool   `json:"announced"`
	AnnouncementError string `json:"announcement_error,omitempty"`
}
