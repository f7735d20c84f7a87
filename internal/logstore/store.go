// Package logstore хранит упорядоченный лог переписки для каждой пары участников.
package logstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/thereayou/club3-chat/internal/metrics"
	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// ErrUnavailable хранилище недоступно или не ответило вовремя.
// Отсутствие лога ошибкой не является.
var ErrUnavailable = errors.New("conversation log unavailable")

type Store interface {
	// Append добавляет сообщение в лог пары, создавая лог при необходимости
	Append(ctx context.Context, key pairkey.Key, msg models.Message) error
	// LoadAll возвращает лог пары по возрастанию времени; пустой срез, если лога нет
	LoadAll(ctx context.Context, key pairkey.Key) ([]models.Message, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// SortMessages стабильно сортирует по времени, при равенстве по позиции в логе
func SortMessages(messages []models.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i], messages[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.Seq < b.Seq
	})
}

type instrumented struct {
	backend string
	next    Store
}

// Instrument оборачивает хранилище метриками задержки и отказов
func Instrument(backend string, next Store) Store {
	return &instrumented{backend: backend, next: next}
}

func (s *instrumented) Append(ctx context.Context, key pairkey.Key, msg models.Message) error {
	start := time.Now()
	err := s.next.Append(ctx, key, msg)
	s.observe("append", start, err)
	return err
}

func (s *instrumented) LoadAll(ctx context.Context, key pairkey.Key) ([]models.Message, error) {
	start := time.Now()
	messages, err := s.next.LoadAll(ctx, key)
	s.observe("load_all", start, err)
	return messages, err
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	metrics.LogStoreLatency.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LogStoreFailures.WithLabelValues(s.backend, op).Inc()
	}
}
