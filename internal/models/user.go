package models

import (
	"github.com/google/uuid"
	"time"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	AvatarURL    string
	LastSeenAt   time.Time
	CreatedAt    time.Time
}

// Identity участник чата, как его видит ядро: непрозрачный id и отображаемое имя
type Identity struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

func (u *User) Identity() Identity {
	return Identity{ParticipantID: u.ID.String(), DisplayName: u.Username}
}
