package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/qs3c/predict_admin_server/config"
)

// SMTPSender 通过 Brevo SMTP relay 发送，收件人为 email.recipients
type SMTPSender struct {
	dialer     *gomail.Dialer
	from       string
	recipients []string
}

func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		dialer:     gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:       cfg.From,
		recipients: cfg.Recipients,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if s.from == "" {
		return ErrMissingSenderInfo
	}
	if len(s.recipients) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.from)
	m.SetHeader("Bcc", s.recipients...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
