package testutil

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
)

func create(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("Failed to create fixture %T: %v", v, err)
	}
}

func unique() int64 {
	return time.Now().UnixNano() % 1000000
}

// TestAdmin 创建管理员，密码为 password
func TestAdmin(t *testing.T, db *gorm.DB, opts ...func(*model.Admin)) *model.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	passwordHash := string(hash)
	admin := &model.Admin{
		Email:        fmt.Sprintf("admin_%d@predict.app", unique()),
		Name:         "Admin",
		PasswordHash: &passwordHash,
	}

	for _, opt := range opts {
		opt(admin)
	}
	create(t, db, admin)
	return admin
}

// WithGithubLogin 绑定 GitHub 登录名
func WithGithubLogin(login string) func(*model.Admin) {
	return func(a *model.Admin) {
		a.GithubLogin = &login
	}
}

// TestApplication 创建应用，默认正常运行
func TestApplication(t *testing.T, db *gorm.DB, opts ...func(*model.Application)) *model.Application {
	t.Helper()

	app := &model.Application{
		Name: fmt.Sprintf("App %d", unique()),
		URL:  "https://predict.app",
		Type: model.AppTypeWeb,
	}

	for _, opt := range opts {
		opt(app)
	}
	create(t, db, app)
	return app
}

// InMaintenance 设置为维护中
func InMaintenance(message string, targetUsers ...string) func(*model.Application) {
	return func(a *model.Application) {
		a.Status = true
		a.MaintenanceConfig = &model.MaintenanceConfig{Message: message, TargetUsers: targetUsers}
	}
}

// WithAppName 设置应用名
func WithAppName(name string) func(*model.Application) {
	return func(a *model.Application) {
		a.Name = name
	}
}

// TestStatusHistory 追加一条状态记录
func TestStatusHistory(t *testing.T, db *gorm.DB, appID string, status bool, at time.Time) *model.AppStatusHistory {
	t.Helper()

	h := &model.AppStatusHistory{AppID: appID, Status: status, Timestamp: at.UTC()}
	create(t, db, h)
	return h
}

// TestPlan 创建套餐
func TestPlan(t *testing.T, db *gorm.DB, appID string, opts ...func(*model.PricingPlan)) *model.PricingPlan {
	t.Helper()

	plan := &model.PricingPlan{
		AppID:    appID,
		Name:     "Premium",
		Price:    9.99,
		Currency: "EUR",
		Period:   model.PeriodMonthly,
		Features: model.StringArray{"Pronostics illimités", "Support prioritaire"},
	}

	for _, opt := range opts {
		opt(plan)
	}
	create(t, db, plan)
	return plan
}

// TestDiscountCode 创建当前有效的折扣码
func TestDiscountCode(t *testing.T, db *gorm.DB, opts ...func(*model.DiscountCode)) *model.DiscountCode {
	t.Helper()

	now := time.Now().UTC()
	code := &model.DiscountCode{
		Titre:       "Offre de lancement",
		Code:        fmt.Sprintf("PROMO%d", unique()),
		Pourcentage: 20,
		DebutDate:   now.Add(-24 * time.Hour),
		FinDate:     now.Add(7 * 24 * time.Hour),
		Tous:        true,
	}

	for _, opt := range opts {
		opt(code)
	}
	create(t, db, code)
	return code
}

// WithValidity 设置有效期
func WithValidity(start, end time.Time) func(*model.DiscountCode) {
	return func(d *model.DiscountCode) {
		d.DebutDate = start.UTC()
		d.FinDate = end.UTC()
	}
}

// TestMaintenanceEvent 创建维护事件
func TestMaintenanceEvent(t *testing.T, db *gorm.DB, opts ...func(*model.MaintenanceEvent)) *model.MaintenanceEvent {
	t.Helper()

	event := &model.MaintenanceEvent{
		Title:       "Mise à jour serveur",
		Description: "Migration de la base de données",
		Date:        time.Now().UTC().Add(-time.Hour),
		Status:      model.EventStatusInProgress,
		AppName:     "Predict Web",
	}

	for _, opt := range opts {
		opt(event)
	}
	create(t, db, event)
	return event
}

// TestUser 创建终端用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := unique()
	user := &model.User{
		Email:        fmt.Sprintf("user_%d@example.com", n),
		DisplayName:  fmt.Sprintf("user_%d", n),
		ReferralCode: fmt.Sprintf("REF%d", n),
	}

	for _, opt := range opts {
		opt(user)
	}
	create(t, db, user)
	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// TestMedia 创建媒体条目
func TestMedia(t *testing.T, db *gorm.DB, opts ...func(*model.MediaItem)) *model.MediaItem {
	t.Helper()

	item := &model.MediaItem{
		URL:  fmt.Sprintf("https://cdn.predict.app/media/%d.png", unique()),
		Type: "image/png",
	}

	for _, opt := range opts {
		opt(item)
	}
	create(t, db, item)
	return item
}

// TestNotification 创建已发送的通知
func TestNotification(t *testing.T, db *gorm.DB, opts ...func(*model.Notification)) *model.Notification {
	t.Helper()

	now := time.Now().UTC()
	n := &model.Notification{
		Title:   "Nouveauté",
		Message: "Une nouvelle fonctionnalité est disponible",
		Channel: model.ChannelTelegram,
		Status:  model.NotificationSent,
		SentAt:  &now,
	}

	for _, opt := range opts {
		opt(n)
	}
	create(t, db, n)
	return n
}
