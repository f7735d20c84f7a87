package database

import (
	"context"

	"github.com/thereayou/club3-chat/internal/models"
)

// AppendChatMessage добавляет сообщение в лог пары. Существующие строки не трогает.
func (d *Database) AppendChatMessage(ctx context.Context, message *models.ChatMessage) error {
	return d.db.WithContext(ctx).Create(message).Error
}

// GetChatMessages возвращает весь лог пары в порядке времени отправки.
// При равном времени порядок определяется порядком вставки.
func (d *Database) GetChatMessages(ctx context.Context, pairKey string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage

	err := d.db.WithContext(ctx).
		Where("pair_key = ?", pairKey).
		Order("sent_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}
