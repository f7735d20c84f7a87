package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/thereayou/club3-chat/internal/models"
)

var ErrUserExists = errors.New("user already exists")

func (d *Database) SaveUser(ctx context.Context, user *models.User) error {
	err := d.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserExists
	}
	return err
}

func (d *Database) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastSeen gorm.ErrRecordNotFound, если пользователя нет
func (d *Database) TouchLastSeen(ctx context.Context, id string) error {
	res := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
