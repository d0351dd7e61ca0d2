package dto

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string     `json:"token"`
	Admin *AdminInfo `json:"admin"`
}

// AdminInfo 管理员信息（返回给前端）
type AdminInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	GithubLogin string `json:"github_login,omitempty"`
}

// CreateAdminRequest 创建管理员（命令行）
type CreateAdminRequest struct {
	Email       string
	Password    string
	Name        string
	GithubLogin string
}
