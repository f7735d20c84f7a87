package websocket

import "errors"

var (
	ErrClientQueueFull  = errors.New("client message queue is full")
	ErrConnectionClosed = errors.New("connection is closed")
	// ErrRoomOperation событие отклонено: пустой roomId, неизвестный тип, битый payload
	ErrRoomOperation  = errors.New("room operation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotParticipant = errors.New("user is not a participant of this room")
)
