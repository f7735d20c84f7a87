package websocket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EventType имя события в кадре
type EventType string

const (
	// Входящие
	EventJoinRoom    EventType = "joinRoom"
	EventSendMessage EventType = "sendMessage"
	EventLeaveRoom   EventType = "leaveRoom"

	// Исходящие
	EventReceiveMessage EventType = "receiveMessage"
	EventError          EventType = "error"
)

// Envelope кадр, которым обмениваются клиент и реле
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// InboundEvent одно из трех входящих событий: JoinRoom, SendMessage, LeaveRoom
type InboundEvent interface {
	Type() EventType
	Room() string
}

type JoinRoom struct {
	RoomID string `json:"roomId" validate:"required"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId" validate:"required"`
}

type SendMessage struct {
	RoomID    string `json:"roomId" validate:"required"`
	From      string `json:"from" validate:"required"`
	To        string `json:"to" validate:"required"`
	Text      string `json:"text" validate:"required"`
	Timestamp string `json:"timestamp" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func (JoinRoom) Type() EventType    { return EventJoinRoom }
func (e JoinRoom) Room() string     { return e.RoomID }
func (LeaveRoom) Type() EventType   { return EventLeaveRoom }
func (e LeaveRoom) Room() string    { return e.RoomID }
func (SendMessage) Type() EventType { return EventSendMessage }
func (e SendMessage) Room() string  { return e.RoomID }

// ReceiveMessage исходящее событие с сообщением комнаты
type ReceiveMessage struct {
	RoomID    string    `json:"roomId"`
	From      string    `json:"from"`
	To        string    `json:"to,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

var validate = validator.New()

// DecodeInbound разбирает кадр клиента. Все, что не является одним из
// трех входящих событий, отклоняется с ErrRoomOperation.
func DecodeInbound(raw []byte) (InboundEvent, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed frame: %v", ErrRoomOperation, err)
	}

	var event InboundEvent
	switch env.Event {
	case EventJoinRoom:
		var e JoinRoom
		if err := decodeData(env.Data, &e); err != nil {
			return nil, err
		}
		event = e
	case EventLeaveRoom:
		var e LeaveRoom
		if err := decodeData(env.Data, &e); err != nil {
			return nil, err
		}
		event = e
	case EventSendMessage:
		var e SendMessage
		if err := decodeData(env.Data, &e); err != nil {
			return nil, err
		}
		event = e
	default:
		return nil, fmt.Errorf("%w: unknown event %q", ErrRoomOperation, env.Event)
	}

	if strings.TrimSpace(event.Room()) == "" {
		return nil, fmt.Errorf("%w: blank room id", ErrRoomOperation)
	}

	return event, nil
}

func decodeData(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", ErrRoomOperation)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: invalid data: %v", ErrRoomOperation, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrRoomOperation, err)
	}
	return nil
}

// EncodeOutbound собирает кадр для отправки клиенту
func EncodeOutbound(event EventType, data any) ([]byte, error) {
	env := Envelope{Event: event}

	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = payload
	}

	return json.Marshal(env)
}
