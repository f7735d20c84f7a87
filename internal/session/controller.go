// Package session сводит историю из лога переписки и живую доставку реле
// в одну упорядоченную ленту для пары участников.
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/thereayou/club3-chat/internal/logstore"
	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
	"github.com/thereayou/club3-chat/internal/websocket"
)

const DefaultStoreTimeout = 5 * time.Second

var ErrSessionClosed = errors.New("session is closed")

// Router часть реле, которой пользуется контроллер. *websocket.Hub ее реализует.
type Router interface {
	Connect(userID string, sendBuffer int) *websocket.Client
	Unregister(client *websocket.Client)
	JoinRoom(client *websocket.Client, roomID string) error
	LeaveRoom(client *websocket.Client, roomID string) error
	Broadcast(roomID string, payload []byte) (int, error)
}

type Controller struct {
	router       Router
	store        logstore.Store
	logger       *zap.Logger
	storeTimeout time.Duration
	sendBuffer   int
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithStoreTimeout ограничивает каждое обращение к логу переписки
func WithStoreTimeout(d time.Duration) Option {
	return func(c *Controller) { c.storeTimeout = d }
}

func WithSendBuffer(n int) Option {
	return func(c *Controller) { c.sendBuffer = n }
}

func NewController(router Router, store logstore.Store, opts ...Option) *Controller {
	c := &Controller{
		router:       router,
		store:        store,
		logger:       zap.NewNop(),
		storeTimeout: DefaultStoreTimeout,
		sendBuffer:   websocket.DefaultSendBuffer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PublishResult итог двух независимых эффектов отправки
type PublishResult struct {
	// Delivered сколько соединений получили сообщение вживую
	Delivered int
	// LiveErr сообщение не подтверждено как доставленное вживую
	LiveErr error
	// StoreErr сообщение не записано в лог (logstore.ErrUnavailable)
	StoreErr error
}

// Durable сообщение записано в лог
func (r PublishResult) Durable() bool {
	return r.StoreErr == nil
}

// Publish рассылает сообщение в комнату пары и дописывает его в лог.
// Эффекты независимы: ошибка одного не отменяет другой.
func (c *Controller) Publish(ctx context.Context, msg models.Message) (PublishResult, error) {
	key, err := pairkey.New(msg.From, msg.To)
	if err != nil {
		return PublishResult{}, err
	}

	// живая копия и запись лога должны совпадать по SameAs
	msg.Timestamp = msg.Timestamp.Truncate(models.TimestampPrecision)

	var result PublishResult

	payload, err := websocket.EncodeOutbound(websocket.EventReceiveMessage, websocket.ReceiveMessage{
		RoomID:    key.String(),
		From:      msg.From,
		To:        msg.To,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		result.LiveErr = err
	} else {
		result.Delivered, result.LiveErr = c.router.Broadcast(key.String(), payload)
	}

	storeCtx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()

	if err := c.store.Append(storeCtx, key, msg); err != nil {
		result.StoreErr = err
		c.logger.Warn("append to conversation log failed",
			zap.String("pair_key", key.String()),
			zap.Error(err))
	}

	return result, nil
}

// History возвращает лог пары. Ошибка означает "лог недоступен", а не "лог пуст".
func (c *Controller) History(ctx context.Context, self, peer string) ([]models.Message, error) {
	key, err := pairkey.New(self, peer)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()

	return c.store.LoadAll(storeCtx, key)
}

// Open открывает сессию self с peer: новое соединение в реле, вход в комнату
// пары, загрузка истории. Недоступный лог не мешает открытию - сессия
// помечается HistoryIncomplete и живые сообщения продолжают приходить.
func (c *Controller) Open(ctx context.Context, self, peer string) (*Session, error) {
	key, err := pairkey.New(self, peer)
	if err != nil {
		return nil, err
	}

	client := c.router.Connect(self, c.sendBuffer)

	s := &Session{
		ctrl:     c,
		self:     self,
		peer:     peer,
		key:      key,
		client:   client,
		timeline: NewTimeline(),
		done:     make(chan struct{}),
	}

	// в комнату входим до загрузки истории: то, что придет в промежутке,
	// попадет в ленту вживую, а совпадения с логом отсеются при слиянии
	if err := c.router.JoinRoom(client, key.String()); err != nil {
		c.router.Unregister(client)
		return nil, err
	}

	go s.consume()

	history, err := c.History(ctx, self, peer)

	s.mu.Lock()
	if err != nil {
		s.historyErr = err
		c.logger.Warn("history may be incomplete",
			zap.String("pair_key", key.String()),
			zap.Error(err))
	} else {
		s.timeline.Merge(history)
	}
	s.mu.Unlock()

	return s, nil
}
