package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thereayou/club3-chat/internal/handlers"
	"github.com/thereayou/club3-chat/internal/logging"
	"github.com/thereayou/club3-chat/internal/middleware"
	"github.com/thereayou/club3-chat/internal/services"
)

type routeHandlers struct {
	auth     *handlers.AuthHandler // nil без учетных записей
	user     *handlers.UserHandler
	messages *handlers.HTTPMessageHandler
	rooms    *handlers.RoomHandler
	ws       *handlers.WebSocketHandler
}

func (s *Server) newRouter(identity services.IdentityService, h routeHandlers) *gin.Engine {
	if !s.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(logging.GinLogger(s.Logger), gin.Recovery())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth endpoints
	if h.auth != nil {
		authGroup := r.Group("/auth")
		{
			authGroup.POST("/register", h.auth.Register)
			authGroup.POST("/login", h.auth.Login)
			authGroup.POST("/logout", middleware.AuthMiddleware(identity), h.auth.Logout)
		}
	}

	// API endpoints
	api := r.Group("/api", middleware.AuthMiddleware(identity))
	{
		api.GET("/me", h.user.GetMe)
		api.GET("/chats", h.messages.GetChat)
		api.POST("/chats", h.messages.SendChat)
		api.GET("/chats/:peer/presence", h.rooms.GetPresence)
	}

	r.GET("/ws", middleware.WSAuthMiddleware(identity), h.ws.HandleWebSocket)

	return r
}

func (s *Server) health(c *gin.Context) {
	status := gin.H{"status": "ok", "rooms": s.Hub.RoomCount()}

	if s.Redis != nil {
		if err := s.Redis.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
	}
	if s.DB != nil {
		if err := s.DB.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, status)
}
