package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub 按主题（集合名）分组管理连接
type Hub struct {
	// 同一主题可以有多个连接（多个管理员、多标签页）
	topics map[string]map[*Client]struct{}
	mu     sync.RWMutex
	log    *zap.Logger
}

type Client struct {
	AdminID string
	Topic   string
	Conn    *websocket.Conn
	mu      sync.Mutex // 写锁，防止并发写入
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		topics: make(map[string]map[*Client]struct{}),
		log:    log,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[client.Topic] == nil {
		h.topics[client.Topic] = make(map[*Client]struct{})
	}
	h.topics[client.Topic][client] = struct{}{}

	h.log.Info("ws client connected",
		zap.String("admin_id", client.AdminID),
		zap.String("topic", client.Topic),
		zap.Int("topic_conns", len(h.topics[client.Topic])),
	)
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.topics[client.Topic]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.topics, client.Topic)
		}
	}
	h.log.Info("ws client disconnected", zap.String("admin_id", client.AdminID), zap.String("topic", client.Topic))
}

// Send 向单个连接发送消息
func (h *Hub) Send(client *Client, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.Conn.WriteMessage(websocket.TextMessage, data)
}

// Broadcast 向主题下的所有连接发送消息
func (h *Hub) Broadcast(topic string, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns, ok := h.topics[topic]
	if !ok {
		h.mu.RUnlock()
		return nil
	}
	// 复制一份引用，避免长时间持锁
	clients := make([]*Client, 0, len(conns))
	for c := range conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			h.log.Warn("ws broadcast write failed", zap.String("topic", topic), zap.Error(err))
		}
	}
	return nil
}

// HasSubscribers 主题下是否有在线连接
func (h *Hub) HasSubscribers(topic string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.topics[topic]
	return ok && len(conns) > 0
}

// ConnectionCount 获取在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.topics {
		total += len(conns)
	}
	return total
}
