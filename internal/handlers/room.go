package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/club3-chat/internal/handlers/dto"
	"github.com/thereayou/club3-chat/internal/middleware"
	"github.com/thereayou/club3-chat/internal/pairkey"
	"github.com/thereayou/club3-chat/internal/websocket"
)

type RoomHandler struct {
	hub *websocket.Hub
}

func NewRoomHandler(hub *websocket.Hub) *RoomHandler {
	return &RoomHandler{hub: hub}
}

// GetPresence кто сейчас подключен к комнате пары (me, :peer)
func (h *RoomHandler) GetPresence(c *gin.Context) {
	me := middleware.CurrentIdentity(c)
	peer := c.Param("peer")

	key, err := pairkey.New(me.ParticipantID, peer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer"})
		return
	}

	participants := h.hub.GetRoomUsers(key.String())

	c.JSON(http.StatusOK, dto.PresenceResponse{
		RoomID:       key.String(),
		Connections:  len(h.hub.RoomMembers(key.String())),
		Participants: participants,
		PeerOnline:   h.hub.IsOnline(peer),
	})
}
