package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a domain entity representing an account holder.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an issued authentication token with its lifetime metadata.
// Exactly one Session row exists per issued token; tokens are never reused.
type Session struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	Valid     bool
}

// Expired reports whether the session is past its expiry at time now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
