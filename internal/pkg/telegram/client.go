package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/qs3c/predict_admin_server/config"
)

const defaultBaseURL = "https://api.telegram.org"

var (
	ErrMissingToken  = errors.New("telegram bot token is not configured")
	ErrMissingChatID = errors.New("telegram chat id is not configured")
)

// APIError Bot API 返回 ok=false
type APIError struct {
	Code        int    `json:"error_code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

// Message 发送成功后返回的消息
type Message struct {
	MessageID int64 `json:"message_id"`
	Date      int64 `json:"date"`
}

// Client Telegram Bot API，每次调用一个请求，不做重试
type Client struct {
	token    string
	endpoint string
	http     *http.Client
}

func NewClient(cfg *config.TelegramConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		token:    cfg.BotToken,
		endpoint: strings.TrimRight(baseURL, "/") + "/bot%s/%s",
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// SendMessage 发送 HTML 格式文本
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (*Message, error) {
	chat, err := c.chat(chatID)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, tgbotapi.MessageConfig{
		BaseChat:  chat,
		Text:      text,
		ParseMode: tgbotapi.ModeHTML,
	})
}

// SendPhoto 发送图片（URL），caption 为 HTML
func (c *Client) SendPhoto(ctx context.Context, chatID, photoURL, caption string) (*Message, error) {
	chat, err := c.chat(chatID)
	if err != nil {
		return nil, err
	}

	photo := tgbotapi.PhotoConfig{
		BaseFile: tgbotapi.BaseFile{BaseChat: chat, File: tgbotapi.FileURL(photoURL)},
	}
	if caption != "" {
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeHTML
	}
	return c.send(ctx, photo)
}

// PinChatMessage 置顶消息
func (c *Client) PinChatMessage(ctx context.Context, chatID string, messageID int64, disableNotification bool) error {
	chat, err := c.chat(chatID)
	if err != nil {
		return err
	}
	return c.request(ctx, tgbotapi.PinChatMessageConfig{
		ChatID:              chat.ChatID,
		ChannelUsername:     chat.ChannelUsername,
		MessageID:           int(messageID),
		DisableNotification: disableNotification,
	})
}

// UnpinChatMessage 取消置顶
func (c *Client) UnpinChatMessage(ctx context.Context, chatID string, messageID int64) error {
	chat, err := c.chat(chatID)
	if err != nil {
		return err
	}
	return c.request(ctx, tgbotapi.UnpinChatMessageConfig{
		ChatID:          chat.ChatID,
		ChannelUsername: chat.ChannelUsername,
		MessageID:       int(messageID),
	})
}

// chat 数字 id 走 chat_id，@频道名走 channel username；同时检查 token
func (c *Client) chat(chatID string) (tgbotapi.BaseChat, error) {
	if c.token == "" {
		return tgbotapi.BaseChat{}, ErrMissingToken
	}
	if chatID == "" {
		return tgbotapi.BaseChat{}, ErrMissingChatID
	}
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return tgbotapi.BaseChat{ChatID: id}, nil
	}
	return tgbotapi.BaseChat{ChannelUsername: chatID}, nil
}

// bot 不调用 NewBotAPI，避免额外的 getMe 请求
func (c *Client) bot(ctx context.Context) *tgbotapi.BotAPI {
	bot := &tgbotapi.BotAPI{
		Token:  c.token,
		Client: &contextClient{ctx: ctx, http: c.http},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(c.endpoint)
	return bot
}

func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) (*Message, error) {
	sent, err := c.bot(ctx).Send(msg)
	if err != nil {
		return nil, c.wrap(err)
	}
	return &Message{MessageID: int64(sent.MessageID), Date: int64(sent.Date)}, nil
}

func (c *Client) request(ctx context.Context, req tgbotapi.Chattable) error {
	if _, err := c.bot(ctx).Request(req); err != nil {
		return c.wrap(err)
	}
	return nil
}

func (c *Client) wrap(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return &APIError{Code: apiErr.Code, Description: apiErr.Message}
	}
	// 错误信息里不能带出 token
	return fmt.Errorf("telegram request failed: %w", redact(err, c.token))
}

// contextClient 让 tgbotapi 的请求跟随调用方的 ctx
type contextClient struct {
	ctx  context.Context
	http *http.Client
}

func (c *contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req.WithContext(c.ctx))
}

func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<redacted>"))
}
