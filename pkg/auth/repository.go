package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors used by repositories/use cases
var (
	ErrNotFound        = errors.New("not found")
	ErrUsernameTaken   = errors.New("username already used")
	ErrEmailTaken      = errors.New("email address already used")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// UserRepository abstracts user persistence from the domain layer.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionRepository abstracts session persistence. Create mints a fresh
// unique token and stamps the configured lifetime.
type SessionRepository interface {
	Create(ctx context.Context, userID uuid.UUID) (Session, error)
	FindByToken(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}
