package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Blacklist отозванные до истечения токены (logout)
type Blacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

func (b *RedisBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, blacklistKey(token), 1, ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// MemoryBlacklist для запуска без redis
type MemoryBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = time.Now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	until, ok := b.tokens[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(b.tokens, token)
		return false, nil
	}
	return true, nil
}
