package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/pkg/ai"
	"github.com/qs3c/predict_admin_server/internal/pkg/telegram"
)

var ErrProviderUnavailable = errors.New("未配置 AI 服务")

// Telegram 图片说明的长度上限
const captionLimit = 1024

// ContentResult 内容流程的结果
type ContentResult struct {
	Success   bool
	Text      string
	Title     string
	ImageURL  string
	MediaID   string
	MessageID int64
	Posted    bool
	Pinned    bool
}

// ContentService 内容生成流程：模板 -> 模型 -> 解析 -> 可选发布，不做重试
type ContentService struct {
	provider  ai.Provider
	messenger Messenger
	media     *MediaService
	cfg       *config.Config
	log       *zap.Logger
	now       func() time.Time
}

func NewContentService(
	provider ai.Provider,
	messenger Messenger,
	media *MediaService,
	cfg *config.Config,
	log *zap.Logger,
) *ContentService {
	return &ContentService{
		provider:  provider,
		messenger: messenger,
		media:     media,
		cfg:       cfg,
		log:       orNop(log),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CheckBroadcastConfig 广播前检查配置，缺失时在任何外部调用之前返回
func (s *ContentService) CheckBroadcastConfig() error {
	if s.provider == nil {
		return ErrProviderUnavailable
	}
	if (s.cfg.AI.Provider == "" || s.cfg.AI.Provider == "gemini") && s.cfg.AI.APIKey == "" {
		return ai.ErrMissingAPIKey
	}
	if s.messenger == nil || s.cfg.Telegram.BotToken == "" {
		return telegram.ErrMissingToken
	}
	if s.cfg.Telegram.ChannelID == "" {
		return telegram.ErrMissingChatID
	}
	return nil
}

// GenerateDailySummaryPost 根据主题摘要决定是否发帖
func (s *ContentService) GenerateDailySummaryPost(ctx context.Context, topic, digest string) (*ai.PostDecision, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	prompt := fmt.Sprintf(promptDailySummary, promptSystemStyle, topicLabel(topic), digest)
	raw, err := s.provider.Generate(ctx, prompt, ai.WithJSON())
	if err != nil {
		return nil, fmt.Errorf("generate %s summary: %w", topic, err)
	}

	decision := ai.ParsePostDecision(raw)
	return &decision, nil
}

// GenerateCommunityPost theme 为空时按星期选择
func (s *ContentService) GenerateCommunityPost(ctx context.Context, theme string) (*ContentResult, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = communityThemes[s.now().Weekday()]
	}
	return s.textFlow(ctx, fmt.Sprintf(promptCommunityPost, promptSystemStyle, theme))
}

// GenerateStatusAnnouncement 维护开始或结束的公告
func (s *ContentService) GenerateStatusAnnouncement(ctx context.Context, app *model.Application) (*ContentResult, error) {
	if !app.Status {
		return s.textFlow(ctx, fmt.Sprintf(promptStatusOff, promptSystemStyle, app.Name, app.Type))
	}

	message := "aucun message"
	if app.MaintenanceConfig != nil && app.MaintenanceConfig.Message != "" {
		message = app.MaintenanceConfig.Message
	}
	result, err := s.textFlow(ctx, fmt.Sprintf(promptStatusOn, promptSystemStyle, app.Name, app.Type, message))
	if err != nil {
		return nil, err
	}
	if app.MaintenanceConfig != nil {
		result.ImageURL = app.MaintenanceConfig.MediaURL
	}
	return result, nil
}

// GeneratePricingAnnouncement 套餐公告
func (s *ContentService) GeneratePricingAnnouncement(ctx context.Context, plan *model.PricingPlan, appName string) (*ContentResult, error) {
	details := FormatPlanLine(appName, plan)
	if len(plan.Features) > 0 {
		details += "\nInclus : " + strings.Join(plan.Features, ", ")
	}
	return s.textFlow(ctx, fmt.Sprintf(promptPricing, promptSystemStyle, appName, details))
}

// GenerateDiscountAnnouncement 折扣码公告，附带折扣码图片
func (s *ContentService) GenerateDiscountAnnouncement(ctx context.Context, code *model.DiscountCode) (*ContentResult, error) {
	result, err := s.textFlow(ctx, fmt.Sprintf(promptDiscount, promptSystemStyle, FormatDiscountLine(code)))
	if err != nil {
		return nil, err
	}
	result.ImageURL = code.ImageURL
	return result, nil
}

// GenerateMaintenanceAnnouncement 维护事件公告
func (s *ContentService) GenerateMaintenanceAnnouncement(ctx context.Context, event *model.MaintenanceEvent) (*ContentResult, error) {
	details := FormatEventLine(event)
	if event.Description != "" {
		details += "\n" + event.Description
	}
	return s.textFlow(ctx, fmt.Sprintf(promptMaintenance, promptSystemStyle, details))
}

// GenerateNotificationText 由简介生成通知标题与正文
func (s *ContentService) GenerateNotificationText(ctx context.Context, brief, tone string) (*ContentResult, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	label, ok := toneLabels[tone]
	if !ok {
		label = tone
	}

	raw, err := s.provider.Generate(ctx, fmt.Sprintf(promptNotification, promptSystemStyle, brief, label), ai.WithJSON())
	if err != nil {
		return nil, fmt.Errorf("generate notification: %w", err)
	}

	var out struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(ai.StripCodeFence(raw)), &out); err != nil {
		return nil, fmt.Errorf("parse notification: %w", err)
	}
	out.Title = strings.TrimSpace(out.Title)
	out.Message = strings.TrimSpace(out.Message)
	if out.Title == "" || out.Message == "" {
		return nil, ai.ErrEmptyResponse
	}

	return &ContentResult{Success: true, Title: out.Title, Text: out.Message}, nil
}

// GenerateImage 生成图片并存入媒体库
func (s *ContentService) GenerateImage(ctx context.Context, prompt string) (*ContentResult, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}
	if s.media == nil {
		return nil, ErrStorageNotConfigured
	}

	img, err := s.provider.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}

	item, err := s.media.StoreGenerated(ctx, img.MIMEType, img.Data)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	return &ContentResult{Success: true, ImageURL: item.URL, MediaID: item.ID}, nil
}

// PublishToTelegram 发布到频道；有图片时用 sendPhoto，pin 为 true 时静默置顶
func (s *ContentService) PublishToTelegram(ctx context.Context, text, imageURL string, pin bool) (*ContentResult, error) {
	if s.messenger == nil {
		return nil, telegram.ErrMissingToken
	}

	chatID := s.cfg.Telegram.ChannelID
	msg, err := sendWithImage(ctx, s.messenger, chatID, text, imageURL)
	if err != nil {
		return nil, fmt.Errorf("publish to telegram: %w", err)
	}

	result := &ContentResult{
		Success:   true,
		Text:      text,
		ImageURL:  imageURL,
		MessageID: msg.MessageID,
		Posted:    true,
	}

	if pin {
		if err := s.messenger.PinChatMessage(ctx, chatID, msg.MessageID, true); err != nil {
			s.log.Warn("pin message failed", zap.Int64("message_id", msg.MessageID), zap.Error(err))
		} else {
			result.Pinned = true
		}
	}
	return result, nil
}

func (s *ContentService) textFlow(ctx context.Context, prompt string) (*ContentResult, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	raw, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(ai.StripCodeFence(raw))
	if text == "" {
		return nil, ai.ErrEmptyResponse
	}
	return &ContentResult{Success: true, Text: text}, nil
}

// FormatPlanLine "<app> - <plan>: <price> <currency>/<period>"，有促销价时附加
func FormatPlanLine(appName string, plan *model.PricingPlan) string {
	line := fmt.Sprintf("%s - %s: %s %s/%s", appName, plan.Name, formatAmount(plan.Price), plan.Currency, plan.Period)
	if plan.PromoPrice != nil {
		line += fmt.Sprintf(" (promo: %s %s)", formatAmount(*plan.PromoPrice), plan.Currency)
	}
	return line
}

// FormatDiscountLine 折扣码的一行描述
func FormatDiscountLine(code *model.DiscountCode) string {
	line := fmt.Sprintf("%s - %s: -%s%% jusqu'au %s", code.Code, code.Titre, formatAmount(code.Pourcentage), code.FinDate.UTC().Format("2006-01-02"))
	if code.Plan != "" {
		line += " (plan " + code.Plan + ")"
	}
	if !code.Tous {
		line += " (réservé à certains utilisateurs)"
	}
	return line
}

// FormatEventLine 维护事件的一行描述
func FormatEventLine(event *model.MaintenanceEvent) string {
	return fmt.Sprintf("%s %s: %s (%s)", event.Date.UTC().Format("2006-01-02 15:04"), event.AppName, event.Title, event.Status)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
