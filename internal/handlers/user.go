package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/club3-chat/internal/middleware"
)

type UserHandler struct {
	users UserStore
}

// NewUserHandler users может быть nil, если идентичность выдает внешний провайдер
func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe возвращает информацию о текущем участнике
func (h *UserHandler) GetMe(c *gin.Context) {
	me := middleware.CurrentIdentity(c)

	resp := gin.H{
		"participant_id": me.ParticipantID,
		"display_name":   me.DisplayName,
	}

	if h.users != nil {
		if user, err := h.users.GetUser(c.Request.Context(), me.ParticipantID); err == nil {
			resp["email"] = user.Email
			resp["avatar_url"] = user.AvatarURL
			resp["created_at"] = user.CreatedAt
			resp["last_seen_at"] = user.LastSeenAt
		}
	}

	c.JSON(http.StatusOK, resp)
}
