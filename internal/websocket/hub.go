package websocket

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/thereayou/club3-chat/internal/metrics"
)

// room участники одной комнаты. У каждой комнаты свой мьютекс,
// чтобы рассылка в одну комнату не блокировала остальные.
type room struct {
	mu      sync.RWMutex
	members map[uuid.UUID]*Client
	// dead комната уже удалена из hub.rooms, в нее нельзя входить
	dead bool
}

// Hub реестр соединений и маршрутизатор комнат. Создается один раз на процесс.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]*Client

	// Клиенты по UserID (один пользователь может иметь несколько соединений)
	userClients map[string]map[uuid.UUID]*Client

	rooms map[string]*room

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		logger:      logger,
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[string]map[uuid.UUID]*Client),
		rooms:       make(map[string]*room),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Context отменяется при остановке hub
func (h *Hub) Context() context.Context {
	return h.ctx
}

// Stop закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.RLock()
	clients := lo.Values(h.clients)
	h.mu.RUnlock()

	for _, client := range clients {
		h.Unregister(client)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
}

// Register регистрирует новое соединение
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	metrics.ConnectionsActive.Inc()
	h.logger.Debug("client registered",
		zap.Stringer("connection_id", client.ID),
		zap.String("user_id", client.UserID))
}

// Connect регистрирует соединение без транспорта (сессия внутри процесса)
func (h *Hub) Connect(userID string, sendBuffer int) *Client {
	client := NewLocalClient(h, userID, sendBuffer)
	h.Register(client)
	return client
}

// Unregister переводит соединение в DISCONNECTED и убирает его из всех комнат.
// Повторный вызов ничего не делает.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.ID]
	if ok {
		delete(h.clients, client.ID)
		if userClients, ok := h.userClients[client.UserID]; ok {
			delete(userClients, client.ID)
			if len(userClients) == 0 {
				delete(h.userClients, client.UserID)
			}
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	// сначала DISCONNECTED, чтобы параллельный JoinRoom не оставил висящее членство
	client.disconnect()

	for _, roomID := range client.GetRooms() {
		h.removeFromRoom(client, roomID)
	}

	metrics.ConnectionsActive.Dec()
	h.logger.Debug("client unregistered",
		zap.Stringer("connection_id", client.ID),
		zap.String("user_id", client.UserID))
}

func validRoomID(roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return fmt.Errorf("%w: blank room id", ErrRoomOperation)
	}
	return nil
}

// JoinRoom добавляет соединение в комнату. Повторный вход ничего не меняет.
func (h *Hub) JoinRoom(client *Client, roomID string) error {
	if err := validRoomID(roomID); err != nil {
		return err
	}

	for {
		if client.State() == StateDisconnected {
			return ErrConnectionClosed
		}

		r := h.getOrCreateRoom(roomID)

		r.mu.Lock()
		if r.dead {
			// комнату только что удалили, берем новую
			r.mu.Unlock()
			continue
		}
		_, already := r.members[client.ID]
		r.members[client.ID] = client
		r.mu.Unlock()

		if !client.addRoom(roomID) {
			h.removeFromRoom(client, roomID)
			return ErrConnectionClosed
		}

		if !already {
			metrics.RoomJoins.Inc()
			h.logger.Debug("joined room",
				zap.Stringer("connection_id", client.ID),
				zap.String("room_id", roomID))
		}
		return nil
	}
}

// LeaveRoom удаляет соединение из комнаты. Если его там нет - ничего не делает.
func (h *Hub) LeaveRoom(client *Client, roomID string) error {
	if err := validRoomID(roomID); err != nil {
		return err
	}

	h.removeFromRoom(client, roomID)
	return nil
}

func (h *Hub) getOrCreateRoom(roomID string) *room {
	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if ok {
		return r
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if r, ok := h.rooms[roomID]; ok {
		return r
	}
	r = &room{members: make(map[uuid.UUID]*Client)}
	h.rooms[roomID] = r
	return r
}

func (h *Hub) removeFromRoom(client *Client, roomID string) {
	client.removeRoom(roomID)

	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.Lock()
	_, member := r.members[client.ID]
	delete(r.members, client.ID)
	empty := len(r.members) == 0
	r.mu.Unlock()

	if member {
		metrics.RoomLeaves.Inc()
		h.logger.Debug("left room",
			zap.Stringer("connection_id", client.ID),
			zap.String("room_id", roomID))
	}

	if empty {
		h.collectRoom(roomID)
	}
}

// collectRoom удаляет пустую комнату
func (h *Hub) collectRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return
	}

	r.mu.Lock()
	if len(r.members) == 0 {
		r.dead = true
		delete(h.rooms, roomID)
	}
	r.mu.Unlock()
}

// Broadcast отправляет payload всем, кто сейчас в комнате, включая отправителя.
// Возвращает число соединений, в очередь которых кадр попал. Пустая комната - не ошибка.
func (h *Hub) Broadcast(roomID string, payload []byte) (int, error) {
	if err := validRoomID(roomID); err != nil {
		return 0, err
	}

	metrics.Broadcasts.Inc()

	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return 0, nil
	}

	r.mu.RLock()
	members := lo.Values(r.members)
	r.mu.RUnlock()

	delivered := 0
	for _, client := range members {
		if err := client.enqueue(payload); err != nil {
			metrics.Deliveries.WithLabelValues("dropped").Inc()
			h.logger.Warn("delivery dropped",
				zap.Stringer("connection_id", client.ID),
				zap.String("room_id", roomID),
				zap.Error(err))
			continue
		}
		metrics.Deliveries.WithLabelValues("queued").Inc()
		delivered++
	}

	return delivered, nil
}

// SendToUser отправляет кадр во все соединения пользователя
func (h *Hub) SendToUser(userID string, payload []byte) int {
	h.mu.RLock()
	clients := lo.Values(h.userClients[userID])
	h.mu.RUnlock()

	delivered := 0
	for _, client := range clients {
		if err := client.enqueue(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// RoomMembers возвращает соединения, которые сейчас в комнате
func (h *Hub) RoomMembers(roomID string) []uuid.UUID {
	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return []uuid.UUID{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.members)
}

// GetRoomUsers возвращает список пользователей в комнате
func (h *Hub) GetRoomUsers(roomID string) []string {
	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return []string{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Uniq(lo.MapToSlice(r.members, func(_ uuid.UUID, c *Client) string {
		return c.UserID
	}))
}

// GetOnlineUsers возвращает список онлайн пользователей
func (h *Hub) GetOnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Keys(h.userClients)
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID]) > 0
}

// RoomCount число живых комнат
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
