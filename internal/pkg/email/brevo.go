package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qs3c/predict_admin_server/config"
)

const defaultBrevoBaseURL = "https://api.brevo.com/v3"

// BrevoSender 配置了联系人列表时创建并立即发送 campaign，否则走事务邮件接口
type BrevoSender struct {
	cfg        *config.BrevoConfig
	baseURL    string
	recipients []string
	http       *http.Client
}

func NewBrevoSender(cfg *config.BrevoConfig, recipients []string) *BrevoSender {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBrevoBaseURL
	}
	return &BrevoSender{
		cfg:        cfg,
		baseURL:    strings.TrimRight(baseURL, "/"),
		recipients: recipients,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

func (s *BrevoSender) Send(ctx context.Context, msg *Message) error {
	if s.cfg.APIKey == "" {
		return ErrMissingAPIKey
	}
	if s.cfg.SenderEmail == "" {
		return ErrMissingSenderInfo
	}
	sender := brevoContact{Name: s.cfg.SenderName, Email: s.cfg.SenderEmail}

	if len(s.cfg.ListIDs) > 0 {
		return s.sendCampaign(ctx, sender, msg)
	}
	if len(s.recipients) == 0 {
		return ErrNoRecipients
	}

	to := make([]brevoContact, 0, len(s.recipients))
	for _, r := range s.recipients {
		to = append(to, brevoContact{Email: r})
	}
	return s.post(ctx, "/smtp/email", map[string]interface{}{
		"sender":      sender,
		"to":          to,
		"subject":     msg.Subject,
		"htmlContent": msg.HTML,
	}, nil)
}

func (s *BrevoSender) sendCampaign(ctx context.Context, sender brevoContact, msg *Message) error {
	var created struct {
		ID int64 `json:"id"`
	}
	err := s.post(ctx, "/emailCampaigns", map[string]interface{}{
		"name":        fmt.Sprintf("%s - %s", msg.Subject, time.Now().UTC().Format("2006-01-02 15:04")),
		"subject":     msg.Subject,
		"sender":      sender,
		"htmlContent": msg.HTML,
		"recipients":  map[string]interface{}{"listIds": s.cfg.ListIDs},
	}, &created)
	if err != nil {
		return err
	}

	return s.post(ctx, fmt.Sprintf("/emailCampaigns/%d/sendNow", created.ID), nil, nil)
}

func (s *BrevoSender) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal brevo request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("api-key", s.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo error %s: status %d, body: %s", path, resp.StatusCode, string(data))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode brevo response: %w", err)
		}
	}
	return nil
}
