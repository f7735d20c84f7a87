package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/thereayou/club3-chat/internal/metrics"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения
	maxMessageSize = 64 * 1024

	DefaultSendBuffer = 256
)

// State состояние соединения: CONNECTED -> DISCONNECTED, обратно не возвращается
type State int

const (
	StateConnected State = iota
	StateDisconnected
)

func (s State) String() string {
	if s == StateConnected {
		return "CONNECTED"
	}
	return "DISCONNECTED"
}

// EventHandler обрабатывает входящие события одного соединения.
// События одного соединения обрабатываются строго по очереди.
type EventHandler interface {
	HandleEvent(ctx context.Context, client *Client, event InboundEvent) error
}

// Client одно живое соединение с реле
type Client struct {
	ID     uuid.UUID
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
	Rooms  map[string]bool

	logger *zap.Logger
	state  State
	mu     sync.RWMutex
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		Hub:    hub,
		Rooms:  make(map[string]bool),
		logger: hub.logger,
	}
}

// NewLocalClient соединение без транспорта: кадры читаются прямо из Send
func NewLocalClient(hub *Hub, userID string, sendBuffer int) *Client {
	return NewClient(hub, nil, userID, sendBuffer)
}

// ReadPump читает события клиента и передает их handler по одному
func (c *Client) ReadPump(handler EventHandler) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", zap.Stringer("connection_id", c.ID), zap.Error(err))
			}
			break
		}

		event, err := DecodeInbound(raw)
		label := "invalid"
		if err == nil {
			label = string(event.Type())
			if handler != nil {
				err = handler.HandleEvent(c.Hub.Context(), c, event)
			}
		}
		if err != nil {
			metrics.RejectedEvents.WithLabelValues(label).Inc()
			c.logger.Info("event rejected", zap.Stringer("connection_id", c.ID), zap.String("event", label), zap.Error(err))
			c.SendError(err)
		}
	}
}

// WritePump отправляет кадры клиенту и держит keepalive
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Отправляем все накопившиеся сообщения
			n := len(c.Send)
			for i := 0; i < n; i++ {
				queued, ok := <-c.Send
				if !ok {
					c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.Conn.WriteMessage(websocket.TextMessage, queued); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent ставит исходящее событие в очередь соединения
func (c *Client) SendEvent(event EventType, data any) error {
	msg, err := EncodeOutbound(event, data)
	if err != nil {
		return err
	}
	return c.enqueue(msg)
}

func (c *Client) SendError(err error) {
	_ = c.SendEvent(EventError, ErrorPayload{Error: err.Error()})
}

func (c *Client) enqueue(msg []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == StateDisconnected {
		return ErrConnectionClosed
	}

	select {
	case c.Send <- msg:
		return nil
	default:
		return ErrClientQueueFull
	}
}

// disconnect закрывает очередь. Дальнейшие enqueue возвращают ErrConnectionClosed.
func (c *Client) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisconnected {
		return
	}
	c.state = StateDisconnected
	close(c.Send)
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) addRoom(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisconnected {
		return false
	}
	c.Rooms[roomID] = true
	return true
}

func (c *Client) removeRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Rooms, roomID)
}

func (c *Client) IsInRoom(roomID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Rooms[roomID]
}

func (c *Client) GetRooms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Keys(c.Rooms)
}
