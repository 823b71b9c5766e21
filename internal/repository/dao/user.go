package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// User mirrors the identity provider's account table. This service only
// ever reads it: accounts are provisioned elsewhere.
type User struct {
	ID uint `gorm:"primaryKey"`

	Email     string `gorm:"unique;not null"`
	FirstName string `gorm:"not null"`
	LastName  string

	Role            string `gorm:"not null"` // "participant", "organizer", or "admin"
	ParticipantType string `gorm:"not null;default:'Non-IIIT'"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User
	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}
