package models

import (
	"strings"
	"time"
)

// Message одно сообщение переписки. Не меняется после создания.
type Message struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// Seq позиция в логе, заполняется хранилищем
	Seq int64 `json:"seq,omitempty"`
}

// TimestampPrecision точность времени, которую сохраняют все бэкенды лога
// (postgres timestamptz хранит микросекунды)
const TimestampPrecision = time.Microsecond

// SameAs сравнивает сообщения по отправителю, времени и тексту.
// Используется для отсева эха собственных сообщений.
func (m Message) SameAs(other Message) bool {
	return m.From == other.From &&
		m.Text == other.Text &&
		m.Timestamp.Equal(other.Timestamp)
}

// ParseTimestamp разбирает клиентский ISO-8601 timestamp
func ParseTimestamp(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
}

// ChatMessage строка таблицы chat_messages (postgres лог переписки)
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	PairKey   string    `gorm:"index:idx_chat_pair_sent,priority:1;not null"`
	Sender    string    `gorm:"not null"`
	Receiver  string    `gorm:"not null"`
	Text      string    `gorm:"not null"`
	SentAt    time.Time `gorm:"index:idx_chat_pair_sent,priority:2;not null"`
	CreatedAt time.Time
}

func (c ChatMessage) ToMessage() Message {
	return Message{
		From:      c.Sender,
		To:        c.Receiver,
		Text:      c.Text,
		Timestamp: c.SentAt,
		Seq:       c.ID,
	}
}
