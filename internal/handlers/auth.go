package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/thereayou/club3-chat/internal/database"
	"github.com/thereayou/club3-chat/internal/handlers/dto"
	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/services"
	"github.com/thereayou/club3-chat/pkg/auth"
)

// UserStore учетные записи встроенного провайдера идентичности
type UserStore interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastSeen(ctx context.Context, id string) error
}

type AuthHandler struct {
	users      UserStore
	jwtManager *auth.JWTManager
	blacklist  services.Blacklist
	logger     *zap.Logger
}

func NewAuthHandler(users UserStore, jwtMgr *auth.JWTManager, blacklist services.Blacklist, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, jwtManager: jwtMgr, blacklist: blacklist, logger: logger}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot hash password"})
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := h.users.SaveUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		h.logger.Info("register failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user registered", "participant_id": user.ID.String()})
}

// Login выдаёт JWT и обновляет last_seen
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.users.TouchLastSeen(c.Request.Context(), user.ID.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update last seen"})
		return
	}

	token, err := h.jwtManager.Generate(user.ID.String(), user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	exp, err := h.jwtManager.Expiry(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:          token,
		ParticipantID:  user.ID.String(),
		TokenExpiresAt: exp.UTC().Format(time.RFC3339),
	})
}

// Logout ставит токен в черный список до истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken, err := auth.ExtractTokenFromHeader(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := h.blacklist.Revoke(c.Request.Context(), rawToken, time.Until(exp)); err != nil {
		h.logger.Error("revoke token failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not revoke token"})
		return
	}

	c.Status(http.StatusOK)
}
