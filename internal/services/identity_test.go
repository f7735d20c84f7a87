package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/club3-chat/pkg/auth"
)

func TestJWTIdentityService_Identify(t *testing.T) {
	jwtMgr := auth.NewJWTManager("secret", time.Hour)
	svc := NewJWTIdentityService(jwtMgr, NewMemoryBlacklist())
	ctx := context.Background()

	token, err := jwtMgr.Generate("alice", "Alice A.")
	require.NoError(t, err)

	id, err := svc.Identify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "alice", id.ParticipantID)
	require.Equal(t, "Alice A.", id.DisplayName)

	// без имени показываем id
	bare, err := jwtMgr.Generate("bob", "")
	require.NoError(t, err)
	id, err = svc.Identify(ctx, bare)
	require.NoError(t, err)
	require.Equal(t, "bob", id.DisplayName)

	_, err = svc.Identify(ctx, "")
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Identify(ctx, "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIdentityService_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	jwtMgr := auth.NewJWTManager("secret", time.Hour)
	blacklist := NewRedisBlacklist(client)
	svc := NewJWTIdentityService(jwtMgr, blacklist)
	ctx := context.Background()

	token, err := jwtMgr.Generate("alice", "Alice")
	require.NoError(t, err)

	require.NoError(t, blacklist.Revoke(ctx, token, time.Minute))
	require.True(t, mr.Exists("blacklist:"+token))

	_, err = svc.Identify(ctx, token)
	require.ErrorIs(t, err, ErrTokenRevoked)

	mr.FastForward(2 * time.Minute)
	_, err = svc.Identify(ctx, token)
	require.NoError(t, err)
}

func TestJWTIdentityService_BlacklistUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	jwtMgr := auth.NewJWTManager("secret", time.Hour)
	svc := NewJWTIdentityService(jwtMgr, NewRedisBlacklist(client))

	token, err := jwtMgr.Generate("alice", "")
	require.NoError(t, err)

	_, err = svc.Identify(context.Background(), token)
	require.Error(t, err)
}

func TestMemoryBlacklist(t *testing.T) {
	b := NewMemoryBlacklist()
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "t1", time.Hour))
	require.NoError(t, b.Revoke(ctx, "t2", -time.Second))

	revoked, err := b.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "t2")
	require.NoError(t, err)
	require.False(t, revoked)
}
