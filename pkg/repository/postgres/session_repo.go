package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cryptic-app/accounts/pkg/auth"
)

// SessionRepository implements auth.SessionRepository backed by
// PostgreSQL (pgx). Token uniqueness is backed by the primary key on
// top of the 256-bit random tokens.
type SessionRepository struct {
	db  DB
	ttl time.Duration
}

func NewSessionRepository(db DB, ttl time.Duration) (*SessionRepository, error) {
	repo := &SessionRepository{db: db, ttl: ttl}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SessionRepository) ensureSchema(ctx context.Context) error {
	// No foreign key on user_id: during compensation the session row is
	// removed before the user row, and a user may outlive its sessions.
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			valid BOOLEAN NOT NULL
		);
	`)
	return err
}

func (r *SessionRepository) Create(ctx context.Context, userID uuid.UUID) (auth.Session, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return auth.Session{}, err
	}
	now := time.Now().UTC()
	session := auth.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
		Valid:     true,
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at, valid)
		VALUES ($1, $2, $3, $4, $5)
	`, session.Token, session.UserID, session.CreatedAt, session.ExpiresAt, session.Valid)
	if err != nil {
		return auth.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (auth.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT token, user_id, created_at, expires_at, valid
		FROM sessions WHERE token = $1
	`, token)
	var session auth.Session
	var createdAt, expiresAt time.Time
	if err := row.Scan(&session.Token, &session.UserID, &createdAt, &expiresAt, &session.Valid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Session{}, auth.ErrNotFound
		}
		return auth.Session{}, err
	}
	session.CreatedAt = createdAt.UTC()
	session.ExpiresAt = expiresAt.UTC()
	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}
