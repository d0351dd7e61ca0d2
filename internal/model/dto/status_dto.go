package dto

// DayStatus 某一天的状态
type DayStatus struct {
	Date  string `json:"date"`  // 2006-01-02（UTC）
	State string `json:"state"` // operational, maintenance, partial, unknown
}

// AppStatus 公开状态页中的一个应用
type AppStatus struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	URL         string       `json:"url"`
	Type        string       `json:"type"`
	Maintenance bool         `json:"maintenance"`
	State       string       `json:"state"`
	Timeline    []*DayStatus `json:"timeline"`
}

// PublicStatusResponse 公开状态页
type PublicStatusResponse struct {
	Operational bool         `json:"operational"`
	UpdatedAt   string       `json:"updated_at"`
	Apps        []*AppStatus `json:"apps"`
}

// MaintenanceMessageResponse 应用维护提示
type MaintenanceMessageResponse struct {
	AppID       string `json:"app_id"`
	AppName     string `json:"app_name"`
	Maintenance bool   `json:"maintenance"`
	Message     string `json:"message,omitempty"`
	ButtonTitle string `json:"button_title,omitempty"`
	ButtonURL   string `json:"button_url,omitempty"`
	MediaURL    string `json:"media_url,omitempty"`
}
