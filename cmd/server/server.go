package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/thereayou/club3-chat/internal/config"
	"github.com/thereayou/club3-chat/internal/database"
	"github.com/thereayou/club3-chat/internal/handlers"
	"github.com/thereayou/club3-chat/internal/logging"
	"github.com/thereayou/club3-chat/internal/logstore"
	"github.com/thereayou/club3-chat/internal/services"
	"github.com/thereayou/club3-chat/internal/session"
	"github.com/thereayou/club3-chat/internal/websocket"
	"github.com/thereayou/club3-chat/pkg/auth"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	Config     *config.Config
	Logger     *zap.Logger
	Router     *gin.Engine
	DB         *database.Database // nil без DATABASE_URL
	Redis      *redis.Client      // nil без REDIS_URL
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub
	Chats      *session.Controller
}

func NewServer() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	s := &Server{Config: cfg, Logger: logger}

	if cfg.DatabaseURL != "" {
		dbConn, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres connect failed: %w", err)
		}
		s.DB = dbConn
	}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis connect failed: %w", err)
		}
		s.Redis = rdb
	}

	store, err := s.newLogStore()
	if err != nil {
		return nil, err
	}

	var blacklist services.Blacklist = services.NewMemoryBlacklist()
	if s.Redis != nil {
		blacklist = services.NewRedisBlacklist(s.Redis)
	}

	s.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	identity := services.NewJWTIdentityService(s.JWTManager, blacklist)

	s.Hub = websocket.NewHub(logger)
	s.Chats = session.NewController(s.Hub, store,
		session.WithLogger(logger),
		session.WithStoreTimeout(cfg.LogStoreTimeout),
		session.WithSendBuffer(cfg.SendBuffer),
	)

	h := routeHandlers{
		user:     handlers.NewUserHandler(nil),
		messages: handlers.NewHTTPMessageHandler(s.Chats),
		rooms:    handlers.NewRoomHandler(s.Hub),
		ws: handlers.NewWebSocketHandler(s.Hub,
			handlers.NewChatEventHandler(s.Hub, s.Chats, logger),
			cfg.AllowedOrigins, cfg.SendBuffer, logger),
	}
	if s.DB != nil {
		h.auth = handlers.NewAuthHandler(s.DB, s.JWTManager, blacklist, logger)
		h.user = handlers.NewUserHandler(s.DB)
	}

	s.Router = s.newRouter(identity, h)

	return s, nil
}

func (s *Server) newLogStore() (logstore.Store, error) {
	switch s.Config.LogStore {
	case config.LogStoreRedis:
		return logstore.Instrument(config.LogStoreRedis, logstore.NewRedisStore(s.Redis)), nil
	case config.LogStorePostgres:
		return logstore.Instrument(config.LogStorePostgres, logstore.NewPostgresStore(s.DB)), nil
	case config.LogStoreMemory:
		s.Logger.Warn("conversation log is in memory and will not survive restart")
		return logstore.Instrument(config.LogStoreMemory, logstore.NewMemoryStore()), nil
	default:
		return nil, fmt.Errorf("unknown LOG_STORE %q", s.Config.LogStore)
	}
}

// Run обслуживает запросы до SIGINT/SIGTERM, затем мягко останавливается
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:    ":" + s.Config.Port,
		Handler: s.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("server starting", zap.String("port", s.Config.Port), zap.String("log_store", s.Config.LogStore))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := httpSrv.Shutdown(shutdownCtx)
	s.Hub.Stop()
	s.close()

	return err
}

func (s *Server) close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Warn("redis close", zap.Error(err))
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			s.Logger.Warn("postgres close", zap.Error(err))
		}
	}
	_ = s.Logger.Sync()
}
