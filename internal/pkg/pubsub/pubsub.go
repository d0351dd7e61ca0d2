package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const channelPrefix = "predict:changes:"

// 集合名称
const (
	CollectionApplications      = "applications"
	CollectionPlans             = "plans"
	CollectionDiscountCodes     = "discount_codes"
	CollectionMaintenanceEvents = "maintenance_events"
	CollectionUsers             = "users"
	CollectionMedia             = "media"
	CollectionNotifications     = "notifications"
)

// Collections 支持实时订阅的集合
var Collections = []string{
	CollectionApplications,
	CollectionPlans,
	CollectionDiscountCodes,
	CollectionMaintenanceEvents,
	CollectionUsers,
	CollectionMedia,
	CollectionNotifications,
}

// 变更类型
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent 集合变更通知，只携带文档 ID，订阅方自行重新读取
type ChangeEvent struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
}

// Channel 返回集合对应的 Redis 频道
func Channel(collection string) string {
	return channelPrefix + collection
}

// IsCollection 判断是否为已知集合
func IsCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishChange 发布变更事件，nil Publisher 直接忽略
func (p *Publisher) PublishChange(ctx context.Context, collection, op, id string) error {
	if p == nil || p.client == nil {
		return nil
	}

	data, err := json.Marshal(&ChangeEvent{
		Collection: collection,
		Op:         op,
		ID:         id,
		At:         time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	return p.client.Publish(ctx, Channel(collection), data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅若干集合的变更，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, collections []string, handler func(*ChangeEvent)) error {
	channels := make([]string, 0, len(collections))
	for _, c := range collections {
		channels = append(channels, Channel(c))
	}

	ps := s.client.Subscribe(ctx, channels...)
	defer ps.Close()

	// 等待订阅确认，避免漏掉紧随其后的发布
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
