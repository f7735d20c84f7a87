package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
	"github.com/thereayou/club3-chat/internal/websocket"
)

// Session представление одной переписки для одного клиента. Живет до Close,
// лента нигде не сохраняется.
type Session struct {
	ctrl   *Controller
	self   string
	peer   string
	key    pairkey.Key
	client *websocket.Client

	mu         sync.RWMutex
	timeline   *Timeline
	historyErr error
	closed     bool

	done chan struct{}
}

func (s *Session) RoomID() string {
	return s.key.String()
}

func (s *Session) ConnectionID() string {
	return s.client.ID.String()
}

// Send отправляет сообщение собеседнику. Сообщение сразу попадает в свою
// ленту; эхо из комнаты отсеется как дубль.
func (s *Session) Send(ctx context.Context, text string, at time.Time) (PublishResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return PublishResult{}, ErrSessionClosed
	}
	msg := models.Message{From: s.self, To: s.peer, Text: text, Timestamp: at.Truncate(models.TimestampPrecision)}
	s.timeline.Add(msg)
	s.mu.Unlock()

	return s.ctrl.Publish(ctx, msg)
}

// Timeline текущая лента по времени
func (s *Session) Timeline() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeline.Messages()
}

// HistoryIncomplete история не загрузилась при открытии; повтор - при следующем Open
func (s *Session) HistoryIncomplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyErr != nil
}

func (s *Session) HistoryErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyErr
}

// Done закрывается, когда соединение сессии отключено
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close выходит из комнаты и отключает соединение. Повторный вызов безопасен.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.ctrl.router.LeaveRoom(s.client, s.key.String())
	s.ctrl.router.Unregister(s.client)
	<-s.done

	s.mu.Lock()
	s.timeline = NewTimeline()
	s.mu.Unlock()
}

func (s *Session) receive(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timeline.Add(msg)
}

// consume читает кадры соединения, пока hub не закроет очередь
func (s *Session) consume() {
	defer close(s.done)

	for frame := range s.client.Send {
		var env websocket.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			s.ctrl.logger.Debug("skip malformed frame", zap.Error(err))
			continue
		}
		if env.Event != websocket.EventReceiveMessage {
			continue
		}

		var payload websocket.ReceiveMessage
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			s.ctrl.logger.Debug("skip malformed message", zap.Error(err))
			continue
		}
		if payload.RoomID != "" && payload.RoomID != s.key.String() {
			continue
		}

		s.receive(models.Message{
			From:      payload.From,
			To:        payload.To,
			Text:      payload.Text,
			Timestamp: payload.Timestamp,
		})
	}
}
