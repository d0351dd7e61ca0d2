package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/pkg/ai"
	"github.com/qs3c/predict_admin_server/internal/pkg/queue"
	"github.com/qs3c/predict_admin_server/internal/pkg/telegram"
)

const testChannel = "@predict_test"

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24,
		},
		Telegram: config.TelegramConfig{
			BotToken:  "123:test",
			ChannelID: testChannel,
		},
		AI: config.AIConfig{
			Provider: "gemini",
			APIKey:   "test-key",
		},
		Upload: config.UploadConfig{
			MaxSize:      1024,
			AllowedTypes: []string{"image/", "video/"},
		},
	}
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

// sentMessage 记录 fakeMessenger 收到的调用
type sentMessage struct {
	Method    string
	ChatID    string
	Text      string
	PhotoURL  string
	MessageID int64
	Silent    bool
}

type fakeMessenger struct {
	mu     sync.Mutex
	calls  []sentMessage
	nextID int64
	err    error
	pinErr error
}

func (m *fakeMessenger) record(call sentMessage) (*telegram.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	call.MessageID = m.nextID
	m.calls = append(m.calls, call)
	return &telegram.Message{MessageID: m.nextID}, nil
}

func (m *fakeMessenger) SendMessage(ctx context.Context, chatID, text string) (*telegram.Message, error) {
	return m.record(sentMessage{Method: "sendMessage", ChatID: chatID, Text: text})
}

func (m *fakeMessenger) SendPhoto(ctx context.Context, chatID, photoURL, caption string) (*telegram.Message, error) {
	return m.record(sentMessage{Method: "sendPhoto", ChatID: chatID, Text: caption, PhotoURL: photoURL})
}

func (m *fakeMessenger) PinChatMessage(ctx context.Context, chatID string, messageID int64, disableNotification bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pinErr != nil {
		return m.pinErr
	}
	m.calls = append(m.calls, sentMessage{Method: "pinChatMessage", ChatID: chatID, MessageID: messageID, Silent: disableNotification})
	return nil
}

func (m *fakeMessenger) UnpinChatMessage(ctx context.Context, chatID string, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sentMessage{Method: "unpinChatMessage", ChatID: chatID, MessageID: messageID})
	return nil
}

func (m *fakeMessenger) Calls(method string) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, c := range m.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// fakeProvider 按提示词中的关键字返回预设回复
type fakeProvider struct {
	mu      sync.Mutex
	prompts []string
	// 提示词包含 key 时返回对应回复，未命中时返回 fallback
	replies  map[string]string
	failOn   map[string]error
	fallback string
	image    *ai.Image
	imageErr error
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, opts ...ai.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)

	for key, err := range p.failOn {
		if strings.Contains(prompt, key) {
			return "", err
		}
	}
	for key, reply := range p.replies {
		if strings.Contains(prompt, key) {
			return reply, nil
		}
	}
	return p.fallback, nil
}

func (p *fakeProvider) GenerateImage(ctx context.Context, prompt string) (*ai.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if p.imageErr != nil {
		return nil, p.imageErr
	}
	return p.image, nil
}

func (p *fakeProvider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	deleted  []string
	err      error
	deleteOn error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) UploadFile(objectKey string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.objects[objectKey] = data
	return "https://cdn.predict.app/" + objectKey, nil
}

func (s *fakeStore) Delete(objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteOn != nil {
		return s.deleteOn
	}
	delete(s.objects, objectKey)
	s.deleted = append(s.deleted, objectKey)
	return nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []*queue.EmailJob
	err  error
}

func (q *fakeQueue) Push(ctx context.Context, job *queue.EmailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	job.EnqueuedAt = time.Now().UTC()
	q.jobs = append(q.jobs, job)
	return nil
}

var errUpstream = errors.New("upstream unavailable")
