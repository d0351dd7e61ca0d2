package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/internal/pkg/jwt"
	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/pkg/ws"
	"github.com/qs3c/predict_admin_server/internal/service"
)

type WebSocketHandler struct {
	hub       *ws.Hub
	realtime  *service.RealtimeService
	jwtSecret string
	upgrader  websocket.Upgrader
	log       *zap.Logger
}

// NewWebSocketHandler allowedOrigins 为空或包含 "*" 时不校验 Origin
func NewWebSocketHandler(hub *ws.Hub, realtime *service.RealtimeService, jwtSecret string, allowedOrigins []string, log *zap.Logger) *WebSocketHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebSocketHandler{
		hub:       hub,
		realtime:  realtime,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Handle 订阅一个集合的实时快照：连接建立后立即推送当前快照，之后每次变更推送一次
// GET /api/v1/ws?token=xxx&collection=applications
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := jwt.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	collection := c.Query("collection")
	if !pubsub.IsCollection(collection) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown collection"})
		return
	}

	snapshot, err := h.realtime.Snapshot(collection)
	if err != nil {
		h.log.Error("load snapshot failed", zap.String("collection", collection), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &ws.Client{
		AdminID: claims.AdminID,
		Topic:   collection,
		Conn:    conn,
	}
	h.hub.Register(client)

	if err := h.hub.Send(client, &ws.Message{Type: "snapshot", Data: snapshot}); err != nil {
		h.log.Warn("send initial snapshot failed", zap.String("collection", collection), zap.Error(err))
	}

	// 读取消息只用于检测断开
	go func() {
		defer h.hub.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
