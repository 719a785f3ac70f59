package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents the users table.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Phone        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents the sessions table. The token handed to clients is a
// signed wrapper around (UserID, Session.ID); the row is the source of truth
// so a logout revokes the token immediately.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ExpiresAt time.Time
	IsRevoked bool
	CreatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func (Session) TableName() string {
	return "sessions"
}
