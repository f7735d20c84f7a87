package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/pkg/auth"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token is blacklisted")
)

// IdentityService внешний провайдер идентичности: по токену возвращает
// стабильный id участника и отображаемое имя
type IdentityService interface {
	Identify(ctx context.Context, token string) (*models.Identity, error)
}

// JWTIdentityService принимает HS256 токены, подписанные общим секретом
type JWTIdentityService struct {
	jwtManager *auth.JWTManager
	blacklist  Blacklist
}

func NewJWTIdentityService(jwtManager *auth.JWTManager, blacklist Blacklist) *JWTIdentityService {
	return &JWTIdentityService{jwtManager: jwtManager, blacklist: blacklist}
}

func (s *JWTIdentityService) Identify(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	// Проверяем, не в черном списке ли токен
	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.jwtManager.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}

	return &models.Identity{ParticipantID: claims.Subject, DisplayName: name}, nil
}
