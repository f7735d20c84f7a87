package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/thereayou/club3-chat/internal/middleware"
	ws "github.com/thereayou/club3-chat/internal/websocket"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub        *ws.Hub
	events     ws.EventHandler
	upgrader   websocket.Upgrader
	sendBuffer int
	logger     *zap.Logger
}

// NewWebSocketHandler создает новый WebSocket handler. Пустой allowedOrigins - любой origin.
func NewWebSocketHandler(hub *ws.Hub, events ws.EventHandler, allowedOrigins []string, sendBuffer int, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		events:     events,
		sendBuffer: sendBuffer,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return lo.Contains(allowed, u.Scheme+"://"+u.Host)
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	me := middleware.CurrentIdentity(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, me.ParticipantID, h.sendBuffer)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.events)
}
