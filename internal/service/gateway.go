package service

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/pkg/queue"
	"github.com/qs3c/predict_admin_server/internal/pkg/telegram"
)

// Messenger 消息网关，*telegram.Client 实现
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) (*telegram.Message, error)
	SendPhoto(ctx context.Context, chatID, photoURL, caption string) (*telegram.Message, error)
	PinChatMessage(ctx context.Context, chatID string, messageID int64, disableNotification bool) error
	UnpinChatMessage(ctx context.Context, chatID string, messageID int64) error
}

// ObjectStore 对象存储，*oss.Client 实现
type ObjectStore interface {
	UploadFile(objectKey string, data []byte, contentType string) (string, error)
	Delete(objectKey string) error
}

// EmailEnqueuer 邮件任务队列，*queue.Queue 实现
type EmailEnqueuer interface {
	Push(ctx context.Context, job *queue.EmailJob) error
}

var (
	_ Messenger     = (*telegram.Client)(nil)
	_ EmailEnqueuer = (*queue.Queue)(nil)
)

// publishChange 写操作之后通知订阅方，失败只记录日志
func publishChange(ctx context.Context, pub *pubsub.Publisher, log *zap.Logger, collection, op, id string) {
	if err := pub.PublishChange(ctx, collection, op, id); err != nil {
		log.Warn("publish change failed",
			zap.String("collection", collection),
			zap.String("op", op),
			zap.String("id", id),
			zap.Error(err),
		)
	}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// sendWithImage 无图时发文本；说明不超过 captionLimit 时作为图片说明发送，
// 否则先发图片再单独发文本，返回承载文本的那条消息
func sendWithImage(ctx context.Context, messenger Messenger, chatID, text, imageURL string) (*telegram.Message, error) {
	switch {
	case imageURL == "":
		return messenger.SendMessage(ctx, chatID, text)
	case utf8.RuneCountInString(text) <= captionLimit:
		return messenger.SendPhoto(ctx, chatID, imageURL, text)
	default:
		if _, err := messenger.SendPhoto(ctx, chatID, imageURL, ""); err != nil {
			return nil, err
		}
		return messenger.SendMessage(ctx, chatID, text)
	}
}
