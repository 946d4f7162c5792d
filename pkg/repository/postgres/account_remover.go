package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AccountRemover undoes a registration's local side effects in one
// transaction. It implements provision.AccountRemover.
type AccountRemover struct {
	db DB
}

func NewAccountRemover(db DB) *AccountRemover {
	return &AccountRemover{db: db}
}

// RemoveAccount deletes the transient session and the user atomically.
// The session goes first so its token is freed before the user row
// disappears and no half-deleted state is ever visible.
func (r *AccountRemover) RemoveAccount(ctx context.Context, token string, userID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rollback tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return tx.Commit(ctx)
}
