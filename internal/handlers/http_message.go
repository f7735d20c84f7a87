package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/thereayou/club3-chat/internal/handlers/dto"
	"github.com/thereayou/club3-chat/internal/logstore"
	"github.com/thereayou/club3-chat/internal/middleware"
	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
	"github.com/thereayou/club3-chat/internal/session"
)

type HTTPMessageHandler struct {
	chats *session.Controller
}

func NewHTTPMessageHandler(chats *session.Controller) *HTTPMessageHandler {
	return &HTTPMessageHandler{chats: chats}
}

// GetChat возвращает историю переписки с ?peer= по времени
func (h *HTTPMessageHandler) GetChat(c *gin.Context) {
	me := middleware.CurrentIdentity(c)
	peer := c.Query("peer")

	if peer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing peer"})
		return
	}

	messages, err := h.chats.History(c.Request.Context(), me.ParticipantID, peer)
	if err != nil {
		respondChatError(c, err, "failed to load messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room_id":  pairkey.MustNew(me.ParticipantID, peer).String(),
		"messages": lo.Map(messages, func(m models.Message, _ int) dto.MessageResponse { return dto.NewMessageResponse(m) }),
	})
}

// SendChat отправляет сообщение через HTTP (альтернатива WebSocket)
func (h *HTTPMessageHandler) SendChat(c *gin.Context) {
	me := middleware.CurrentIdentity(c)

	var req dto.SendChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	at, err := models.ParseTimestamp(req.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timestamp"})
		return
	}

	msg := models.Message{
		From:      me.ParticipantID,
		To:        req.Receiver,
		Text:      req.Message,
		Timestamp: at,
	}

	res, err := h.chats.Publish(c.Request.Context(), msg)
	if err != nil {
		respondChatError(c, err, "failed to send message")
		return
	}

	body := dto.SendChatResponse{
		Message:   dto.NewMessageResponse(msg),
		Delivered: res.Delivered,
		Stored:    res.Durable(),
	}

	if !res.Durable() {
		// живая доставка могла пройти, но в историю сообщение не попало
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to store message", "result": body})
		return
	}

	c.JSON(http.StatusCreated, body)
}

func respondChatError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, pairkey.ErrInvalidParticipant):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer"})
	case errors.Is(err, logstore.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "conversation log unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
