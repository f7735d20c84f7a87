package logstore

import (
	"context"
	"sync"

	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
)

// MemoryStore лог в памяти процесса, для разработки и тестов
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[pairkey.Key][]models.Message
	seq  map[pairkey.Key]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs: make(map[pairkey.Key][]models.Message),
		seq:  make(map[pairkey.Key]int64),
	}
}

func (s *MemoryStore) Append(ctx context.Context, key pairkey.Key, msg models.Message) error {
	if err := ctx.Err(); err != nil {
		return unavailable("append", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq[key]++
	msg.Seq = s.seq[key]
	s.logs[key] = append(s.logs[key], msg)

	return nil
}

func (s *MemoryStore) LoadAll(ctx context.Context, key pairkey.Key) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("load", err)
	}

	s.mu.RLock()
	messages := make([]models.Message, len(s.logs[key]))
	copy(messages, s.logs[key])
	s.mu.RUnlock()

	SortMessages(messages)

	return messages, nil
}
