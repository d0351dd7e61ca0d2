package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/pkg/queue"
	"github.com/qs3c/predict_admin_server/internal/repository"
)

var (
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrNotPinned            = errors.New("通知未置顶")
	ErrEmailQueueDisabled   = errors.New("邮件队列不可用")
	ErrMessengerDisabled    = errors.New("未配置 Telegram")
)

// 单个渠道的投递状态
const (
	deliverySent   = "sent"
	deliveryQueued = "queued"
	deliveryFailed = "failed"
)

type NotificationService struct {
	repo       *repository.NotificationRepository
	messenger  Messenger
	emailQueue EmailEnqueuer
	cfg        *config.Config
	publisher  *pubsub.Publisher
	log        *zap.Logger
	now        func() time.Time
}

func NewNotificationService(
	repo *repository.NotificationRepository,
	messenger Messenger,
	emailQueue EmailEnqueuer,
	cfg *config.Config,
	publisher *pubsub.Publisher,
	log *zap.Logger,
) *NotificationService {
	return &NotificationService{
		repo:       repo,
		messenger:  messenger,
		emailQueue: emailQueue,
		cfg:        cfg,
		publisher:  publisher,
		log:        orNop(log),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationService) List(page, pageSize int) ([]*model.Notification, int64, error) {
	return s.repo.List(page, pageSize)
}

func (s *NotificationService) Get(id string) (*model.Notification, error) {
	n, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

// Create 保存通知后立即分发：Telegram 同步发送，邮件进入队列由 worker 发送。
// 渠道失败记录在通知上，不作为返回错误
func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*model.Notification, error) {
	n := &model.Notification{
		Title:    strings.TrimSpace(req.Title),
		Message:  req.Message,
		ImageURL: req.ImageURL,
		Channel:  req.Channel,
		Status:   model.NotificationPending,
	}
	if err := s.repo.Create(n); err != nil {
		return nil, err
	}

	var telegramState string
	var errs []string

	if n.Channel == model.ChannelTelegram || n.Channel == model.ChannelAll {
		if err := s.sendTelegram(ctx, n, req.Pin); err != nil {
			telegramState = deliveryFailed
			errs = append(errs, "telegram: "+err.Error())
			s.log.Error("notification telegram failed", zap.String("id", n.ID), zap.Error(err))
		} else {
			telegramState = deliverySent
			sentAt := s.now()
			n.SentAt = &sentAt
		}
	}

	withEmail := n.Channel == model.ChannelEmail || n.Channel == model.ChannelAll
	if withEmail {
		n.EmailStatus = deliveryQueued
	}
	n.Status = aggregateStatus(telegramState, n.EmailStatus)
	n.Error = strings.Join(errs, "; ")

	// 入队前先落库：worker 可能立刻取到任务并回写邮件结果
	if err := s.repo.Update(n); err != nil {
		return nil, err
	}

	if withEmail {
		if err := s.enqueueEmail(ctx, n); err != nil {
			s.log.Error("notification email enqueue failed", zap.String("id", n.ID), zap.Error(err))
			errs = append(errs, "email: "+err.Error())
			n.EmailStatus = deliveryFailed
			n.Status = aggregateStatus(telegramState, n.EmailStatus)
			n.Error = strings.Join(errs, "; ")
			if err := s.repo.UpdateFields(n.ID, map[string]interface{}{
				"email_status": n.EmailStatus,
				"status":       n.Status,
				"error":        n.Error,
			}); err != nil {
				return nil, err
			}
		}
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionNotifications, pubsub.OpCreate, n.ID)
	return n, nil
}

// MarkEmailResult worker 发送邮件后回写结果
func (s *NotificationService) MarkEmailResult(ctx context.Context, id string, sendErr error) error {
	n, err := s.Get(id)
	if err != nil {
		return err
	}

	telegramState := ""
	if n.Channel == model.ChannelAll {
		telegramState = deliverySent
		if n.TelegramMessageID == 0 {
			telegramState = deliveryFailed
		}
	}

	if sendErr != nil {
		n.EmailStatus = deliveryFailed
		if n.Error != "" {
			n.Error += "; "
		}
		n.Error += "email: " + sendErr.Error()
	} else {
		n.EmailStatus = deliverySent
		if n.SentAt == nil {
			sentAt := s.now()
			n.SentAt = &sentAt
		}
	}
	n.Status = aggregateStatus(telegramState, n.EmailStatus)

	// 只写邮件相关字段，不覆盖 Telegram 结果
	if err := s.repo.UpdateFields(n.ID, map[string]interface{}{
		"email_status": n.EmailStatus,
		"status":       n.Status,
		"error":        n.Error,
		"sent_at":      n.SentAt,
	}); err != nil {
		return err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionNotifications, pubsub.OpUpdate, n.ID)
	return nil
}

// Unpin 取消频道置顶
func (s *NotificationService) Unpin(ctx context.Context, id string) error {
	n, err := s.Get(id)
	if err != nil {
		return err
	}
	if !n.Pinned || n.TelegramMessageID == 0 {
		return ErrNotPinned
	}
	if s.messenger == nil {
		return ErrMessengerDisabled
	}

	if err := s.messenger.UnpinChatMessage(ctx, s.cfg.Telegram.ChannelID, n.TelegramMessageID); err != nil {
		return err
	}

	if err := s.repo.UpdateFields(n.ID, map[string]interface{}{"pinned": false}); err != nil {
		return err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionNotifications, pubsub.OpUpdate, n.ID)
	return nil
}

func (s *NotificationService) sendTelegram(ctx context.Context, n *model.Notification, pin bool) error {
	if s.messenger == nil {
		return ErrMessengerDisabled
	}

	text := formatTelegramNotification(n.Title, n.Message)
	chatID := s.cfg.Telegram.ChannelID

	msg, err := sendWithImage(ctx, s.messenger, chatID, text, n.ImageURL)
	if err != nil {
		return err
	}
	n.TelegramMessageID = msg.MessageID

	if pin {
		// 置顶失败不影响发送结果
		if err := s.messenger.PinChatMessage(ctx, chatID, msg.MessageID, true); err != nil {
			s.log.Warn("pin notification failed", zap.String("id", n.ID), zap.Error(err))
		} else {
			n.Pinned = true
		}
	}
	return nil
}

func (s *NotificationService) enqueueEmail(ctx context.Context, n *model.Notification) error {
	if s.emailQueue == nil {
		return ErrEmailQueueDisabled
	}
	return s.emailQueue.Push(ctx, &queue.EmailJob{
		NotificationID: n.ID,
		Subject:        n.Title,
		Message:        n.Message,
		ImageURL:       n.ImageURL,
	})
}

func formatTelegramNotification(title, message string) string {
	if title == "" {
		return message
	}
	return "<b>" + escapeHTML(title) + "</b>\n\n" + message
}

// aggregateStatus 按各渠道状态汇总，空字符串表示该渠道未参与
func aggregateStatus(states ...string) string {
	var ok, failed, queued int
	for _, st := range states {
		switch st {
		case deliverySent:
			ok++
		case deliveryQueued:
			ok++
			queued++
		case deliveryFailed:
			failed++
		}
	}

	switch {
	case failed > 0 && ok > 0:
		return model.NotificationPartial
	case failed > 0:
		return model.NotificationFailed
	case queued > 0:
		return model.NotificationPending
	case ok > 0:
		return model.NotificationSent
	default:
		return model.NotificationPending
	}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
