package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/services"
)

const IdentityKey = "identity"

// AuthMiddleware проверяет Bearer токен
func AuthMiddleware(identity services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		authenticate(c, identity, token)
	}
}

// WSAuthMiddleware специальный middleware для WebSocket: браузер не может
// выставить заголовок, поэтому токен принимается и из ?token=
func WSAuthMiddleware(identity services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c)
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		authenticate(c, identity, token)
	}
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func authenticate(c *gin.Context, identity services.IdentityService, token string) {
	id, err := identity.Identify(c.Request.Context(), token)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, services.ErrTokenRevoked) {
			msg = "token is blacklisted"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}

	c.Set(IdentityKey, *id)
	c.Next()
}

// CurrentIdentity участник, от имени которого пришел запрос
func CurrentIdentity(c *gin.Context) models.Identity {
	return c.MustGet(IdentityKey).(models.Identity)
}
