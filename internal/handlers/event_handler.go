package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
	"github.com/thereayou/club3-chat/internal/session"
	"github.com/thereayou/club3-chat/internal/websocket"
)

// ChatEventHandler обрабатывает входящие события websocket соединения
type ChatEventHandler struct {
	hub    *websocket.Hub
	chats  *session.Controller
	logger *zap.Logger
}

func NewChatEventHandler(hub *websocket.Hub, chats *session.Controller, logger *zap.Logger) *ChatEventHandler {
	return &ChatEventHandler{hub: hub, chats: chats, logger: logger}
}

func (h *ChatEventHandler) HandleEvent(ctx context.Context, client *websocket.Client, event websocket.InboundEvent) error {
	switch e := event.(type) {
	case websocket.JoinRoom:
		return h.handleJoin(client, e)

	case websocket.LeaveRoom:
		return h.hub.LeaveRoom(client, e.RoomID)

	case websocket.SendMessage:
		return h.handleSend(ctx, client, e)

	default:
		return fmt.Errorf("%w: unsupported event %q", websocket.ErrRoomOperation, event.Type())
	}
}

func (h *ChatEventHandler) handleJoin(client *websocket.Client, e websocket.JoinRoom) error {
	key, err := pairkey.Parse(e.RoomID)
	if err != nil {
		return fmt.Errorf("%w: invalid room id %q", websocket.ErrRoomOperation, e.RoomID)
	}

	// в комнату пары входят только ее участники
	if !key.Has(client.UserID) {
		return fmt.Errorf("%w: %w", websocket.ErrRoomOperation, websocket.ErrNotParticipant)
	}

	return h.hub.JoinRoom(client, key.String())
}

func (h *ChatEventHandler) handleSend(ctx context.Context, client *websocket.Client, e websocket.SendMessage) error {
	if e.From != client.UserID {
		return fmt.Errorf("%w: %w: sender mismatch", websocket.ErrRoomOperation, websocket.ErrUnauthorized)
	}

	key, err := pairkey.New(e.From, e.To)
	if err != nil {
		return fmt.Errorf("%w: %v", websocket.ErrRoomOperation, err)
	}
	if key.String() != e.RoomID {
		return fmt.Errorf("%w: room id does not match participants", websocket.ErrRoomOperation)
	}

	at, err := models.ParseTimestamp(e.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp", websocket.ErrRoomOperation)
	}

	res, err := h.chats.Publish(ctx, models.Message{
		From:      e.From,
		To:        e.To,
		Text:      e.Text,
		Timestamp: at,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", websocket.ErrRoomOperation, err)
	}

	// сообщение не отклонено, но отправитель должен знать, что что-то не дошло
	if res.LiveErr != nil {
		client.SendError(fmt.Errorf("message not confirmed delivered live: %w", res.LiveErr))
	}
	if res.StoreErr != nil {
		client.SendError(fmt.Errorf("message not stored: %w", res.StoreErr))
	}

	return nil
}
