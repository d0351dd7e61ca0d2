package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/api/middleware"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/oauth"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	// GitHub 登录成功后的默认回跳地址
	consoleURL string
}

func NewAuthHandler(authService *service.AuthService, consoleURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		consoleURL:  consoleURL,
	}
}

// Login 邮箱密码登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// Me 当前管理员
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	admin, err := h.authService.GetAdminByID(adminID)
	if err != nil {
		writeError(c, err)
		return
	}

	info := &dto.AdminInfo{ID: admin.ID, Email: admin.Email, Name: admin.Name}
	if admin.GithubLogin != nil {
		info.GithubLogin = *admin.GithubLogin
	}
	response.Success(c, info)
}

// GithubAuth 跳转到 GitHub 授权页
// GET /api/v1/auth/github?return_url=
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	authURL, err := h.authService.GithubAuthURL(c.Request.Context(), c.Query("return_url"))
	if err != nil {
		if errors.Is(err, service.ErrGithubDisabled) {
			response.ParamError(c, err.Error())
			return
		}
		_ = c.Error(err)
		response.ServerError(c, "")
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// GithubCallback GitHub 回调，成功后带 token 跳回控制台；没有回跳地址时直接返回 JSON
// GET /api/v1/auth/github/callback
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		response.ParamError(c, "缺少 code 或 state")
		return
	}

	resp, returnURL, err := h.authService.GithubCallback(c.Request.Context(), code, state)
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrInvalidState):
			response.AuthError(c, "登录已过期，请重试")
		case errors.Is(err, service.ErrGithubNotAllowed), errors.Is(err, service.ErrGithubDisabled):
			response.PermissionError(c, err.Error())
		default:
			_ = c.Error(err)
			response.AuthError(c, "GitHub 登录失败")
		}
		return
	}

	target := returnURL
	if target == "" {
		target = h.consoleURL
	}
	if target == "" {
		response.SuccessWithMessage(c, "登录成功", resp)
		return
	}

	redirect, err := withQuery(target, "token", resp.Token)
	if err != nil {
		response.ParamError(c, "回跳地址无效")
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

func withQuery(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
