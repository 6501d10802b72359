package domain

import (
	"time"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:100"`
	PasswordHash string    `json:"-" gorm:"column:hashed_pwd;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the view of a User that may leave the service.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// RefreshToken is a registry entry. Only the SHA-256 fingerprint of the
// signed token is stored.
type RefreshToken struct {
	TokenHash string    `json:"tokenHash" gorm:"primaryKey;size:64"`
	Subject   string    `json:"subject" gorm:"size:100;not null"`
	UserID    int64     `json:"userId" gorm:"not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the entry is past its signed expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
