package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/jwt"
	"github.com/qs3c/predict_admin_server/internal/pkg/oauth"
	"github.com/qs3c/predict_admin_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrAdminNotFound      = errors.New("管理员不存在")
	ErrGithubDisabled     = errors.New("未配置 GitHub 登录")
	ErrGithubNotAllowed   = errors.New("该 GitHub 账号未绑定管理员")
	ErrWeakPassword       = errors.New("密码至少 8 位")
	ErrEmailRequired      = errors.New("邮箱不能为空")
	ErrNoCredential       = errors.New("密码与 GitHub 登录名至少提供一个")
)

type AuthService struct {
	adminRepo   *repository.AdminRepository
	cfg         *config.Config
	githubOAuth *oauth.GithubOAuth
	stateStore  *oauth.StateStore
}

func NewAuthService(adminRepo *repository.AdminRepository, cfg *config.Config, stateStore *oauth.StateStore) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		cfg:         cfg,
		githubOAuth: oauth.NewGithubOAuth(&cfg.OAuth.Github),
		stateStore:  stateStore,
	}
}

// Login 邮箱密码登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	admin, err := s.adminRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 仅绑定 GitHub 的账号没有密码
	if admin.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(admin)
}

// GetAdminByID 根据 ID 获取管理员
func (s *AuthService) GetAdminByID(id string) (*model.Admin, error) {
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// GithubAuthURL 生成 state 并返回 GitHub 授权地址
func (s *AuthService) GithubAuthURL(ctx context.Context, returnURL string) (string, error) {
	if !s.githubOAuth.Enabled() {
		return "", ErrGithubDisabled
	}
	state, err := s.stateStore.GenerateState(ctx, returnURL)
	if err != nil {
		return "", err
	}
	return s.githubOAuth.GetAuthURL(state), nil
}

// GithubCallback 校验 state 后换取 GitHub 用户，只允许已绑定的管理员登录。
// 返回登录结果以及发起登录时记录的回跳地址
func (s *AuthService) GithubCallback(ctx context.Context, code, state string) (*dto.LoginResponse, string, error) {
	if !s.githubOAuth.Enabled() {
		return nil, "", ErrGithubDisabled
	}

	returnURL, err := s.stateStore.ConsumeState(ctx, state)
	if err != nil {
		return nil, "", err
	}

	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange code: %w", err)
	}

	githubUser, err := s.githubOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get github user: %w", err)
	}

	admin, err := s.adminRepo.GetByGithubLogin(githubUser.Login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrGithubNotAllowed
		}
		return nil, "", err
	}

	resp, err := s.issueToken(admin)
	if err != nil {
		return nil, "", err
	}
	return resp, returnURL, nil
}

// CreateAdmin 创建管理员账号，密码与 GitHub 登录名至少提供一个
func (s *AuthService) CreateAdmin(req *dto.CreateAdminRequest) (*model.Admin, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}

	exists, err := s.adminRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	admin := &model.Admin{
		Email: email,
		Name:  strings.TrimSpace(req.Name),
	}

	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, ErrWeakPassword
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash := string(hashed)
		admin.PasswordHash = &hash
	}

	if login := strings.ToLower(strings.TrimSpace(req.GithubLogin)); login != "" {
		admin.GithubLogin = &login
	}

	if admin.PasswordHash == nil && admin.GithubLogin == nil {
		return nil, ErrNoCredential
	}

	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) issueToken(admin *model.Admin) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(admin.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		Admin: buildAdminInfo(admin),
	}, nil
}

func buildAdminInfo(admin *model.Admin) *dto.AdminInfo {
	info := &dto.AdminInfo{
		ID:    admin.ID,
		Email: admin.Email,
		Name:  admin.Name,
	}
	if admin.GithubLogin != nil {
		info.GithubLogin = *admin.GithubLogin
	}
	return info
}
