package logstore

import (
	"context"

	"github.com/thereayou/club3-chat/internal/models"
	"github.com/thereayou/club3-chat/internal/pairkey"
)

type chatMessageDB interface {
	AppendChatMessage(ctx context.Context, message *models.ChatMessage) error
	GetChatMessages(ctx context.Context, pairKey string) ([]models.ChatMessage, error)
}

// PostgresStore лог в таблице chat_messages через gorm
type PostgresStore struct {
	db chatMessageDB
}

func NewPostgresStore(db chatMessageDB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, key pairkey.Key, msg models.Message) error {
	row := &models.ChatMessage{
		PairKey:  key.String(),
		Sender:   msg.From,
		Receiver: msg.To,
		Text:     msg.Text,
		SentAt:   msg.Timestamp.UTC(),
	}

	if err := s.db.AppendChatMessage(ctx, row); err != nil {
		return unavailable("append", err)
	}
	return nil
}

func (s *PostgresStore) LoadAll(ctx context.Context, key pairkey.Key) ([]models.Message, error) {
	rows, err := s.db.GetChatMessages(ctx, key.String())
	if err != nil {
		return nil, unavailable("load", err)
	}

	messages := make([]models.Message, len(rows))
	for i, row := range rows {
		messages[i] = row.ToMessage()
	}
	SortMessages(messages)

	return messages, nil
}
