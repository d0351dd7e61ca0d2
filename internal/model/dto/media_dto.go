package dto

// RegisterMediaRequest 登记外部媒体 URL
type RegisterMediaRequest struct {
	URL  string `json:"url" binding:"required,url"`
	Type string `json:"type" binding:"required,max=100"`
}

// UploadMediaResponse 上传结果
type UploadMediaResponse struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}
