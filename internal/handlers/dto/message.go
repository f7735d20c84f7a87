package dto

import (
	"time"

	"github.com/thereayou/club3-chat/internal/models"
)

// SendChatRequest тело POST /api/chats
type SendChatRequest struct {
	Receiver  string `json:"receiver" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Timestamp string `json:"timestamp" binding:"required"`
}

// MessageResponse структура для исходящих сообщений
type MessageResponse struct {
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type SendChatResponse struct {
	Message   MessageResponse `json:"message"`
	Delivered int             `json:"delivered"`
	Stored    bool            `json:"stored"`
}

type PresenceResponse struct {
	RoomID       string   `json:"room_id"`
	Connections  int      `json:"connections"`
	Participants []string `json:"participants"`
	PeerOnline   bool     `json:"peer_online"`
}

func NewMessageResponse(m models.Message) MessageResponse {
	return MessageResponse{
		Sender:    m.From,
		Receiver:  m.To,
		Text:      m.Text,
		Timestamp: m.Timestamp,
	}
}
