package logstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
)

// RedisStore держит лог пары в sorted set, score = время сообщения в миллисекундах
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func messagesKey(key pairkey.Key) string {
	return fmt.Sprintf("chat:%s:messages", key)
}

func seqKey(key pairkey.Key) string {
	return fmt.Sprintf("chat:%s:seq", key)
}

func (s *RedisStore) Append(ctx context.Context, key pairkey.Key, msg models.Message) error {
	// Seq делает каждый элемент уникальным, иначе ZADD склеит одинаковые сообщения
	seq, err := s.client.Incr(ctx, seqKey(key)).Result()
	if err != nil {
		return unavailable("append", err)
	}
	msg.Seq = seq

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = s.client.ZAdd(ctx, messagesKey(key), &redis.Z{
		Score:  float64(msg.Timestamp.UnixMilli()),
		Member: string(data),
	}).Err()
	if err != nil {
		return unavailable("append", err)
	}

	return nil
}

func (s *RedisStore) LoadAll(ctx context.Context, key pairkey.Key) ([]models.Message, error) {
	results, err := s.client.ZRange(ctx, messagesKey(key), 0, -1).Result()
	if err != nil {
		return nil, unavailable("load", err)
	}

	messages := make([]models.Message, 0, len(results))
	for _, data := range results {
		var msg models.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			// битая запись: лог неполон, пропускать ее нельзя
			return nil, unavailable("load", fmt.Errorf("decode entry: %w", err))
		}
		messages = append(messages, msg)
	}

	// score округлен до миллисекунд, точный порядок восстанавливаем здесь
	SortMessages(messages)

	return messages, nil
}
