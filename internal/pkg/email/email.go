package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/qs3c/predict_admin_server/config"
)

var (
	ErrMissingAPIKey     = errors.New("brevo api key is not configured")
	ErrNoRecipients      = errors.New("no email recipients configured")
	ErrMissingSenderInfo = errors.New("email sender is not configured")
)

// Message 一封通知邮件
type Message struct {
	Subject string
	HTML    string
}

// Sender 邮件发送渠道
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// NewSender 按 email.provider 选择 Brevo API 或 SMTP relay
func NewSender(cfg *config.Config) Sender {
	if cfg.Email.Provider == "smtp" {
		return NewSMTPSender(&cfg.Email)
	}
	return NewBrevoSender(&cfg.Brevo, cfg.Email.Recipients)
}

// RenderNotification 通知邮件正文，message 允许 Telegram 风格的简单 HTML
func RenderNotification(title, message, imageURL string) string {
	var img string
	if imageURL != "" {
		img = fmt.Sprintf(`<p style="text-align: center;"><img src="%s" alt="" style="max-width: 100%%; border-radius: 8px;"></p>`, html.EscapeString(imageURL))
	}
	body := strings.ReplaceAll(message, "\n", "<br>")

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">%s</h2>
        %s
        <p>%s</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">Predict - cet email a été envoyé automatiquement, merci de ne pas y répondre.</p>
    </div>
</body>
</html>
`, html.EscapeString(title), img, body)
}
