package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service interface {
	Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (int, error)
	Reset(ctx context.Context, tx pgx.Tx, userID uuid.UUID, startingBalance int) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

var _ Service = (*service)(nil)

func (s *service) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (int, error) {
	return s.repo.Debit(ctx, tx, userID, amount)
}

func (s *service) Reset(ctx context.Context, tx pgx.Tx, userID uuid.UUID, startingBalance int) error {
	return s.repo.Reset(ctx, tx, userID, startingBalance)
}

// ErrInsufficientFunds is returned when the balance is short of the call cost.
var ErrInsufficientFunds = errInsufficientFunds

// ErrUserNotFound is returned when the debited user does not exist.
var ErrUserNotFound = errUserNotFound
