package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errInsufficientFunds = errors.New("insufficient funds")
	errUserNotFound      = errors.New("user not found")
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Debit runs inside the caller's transaction. The balance check and the
// decrement are one conditional UPDATE, so two concurrent calls can never
// both observe a sufficient balance and overspend. Returns the balance
// after the debit.
func (r *Repository) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (int, error) {
	var newBalance int
	err := tx.QueryRow(ctx, `
		UPDATE users
		SET coin_balance = coin_balance - $1, updated_at = now()
		WHERE id = $2 AND coin_balance >= $1
		RETURNING coin_balance
	`, amount, userID).Scan(&newBalance)
	if err == nil {
		return newBalance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	// Zero rows means either the user does not exist or the balance is
	// short; distinguish with an existence probe.
	var exists bool
	if probeErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); probeErr != nil {
		return 0, probeErr
	}
	if !exists {
		return 0, errUserNotFound
	}
	return 0, errInsufficientFunds
}

// Reset restores the default starting allotment and zeroes the counters
// inside the caller's transaction.
func (r *Repository) Reset(ctx context.Context, tx pgx.Tx, userID uuid.UUID, startingBalance int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET coin_balance = $1, love_count = 0, copy_count = 0, updated_at = now()
		WHERE id = $2
	`, startingBalance, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errUserNotFound
	}
	return nil
}

