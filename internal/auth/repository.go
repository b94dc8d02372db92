package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotlinehub/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new user with the default starting balance and returns it.
func (r *Repository) Create(ctx context.Context, username, email, passwordHash, phone, role string) (*models.User, error) {
	var u models.User
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, phone_number, role, coin_balance, love_count, copy_count)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0)
		RETURNING id, username, email, phone_number, role, coin_balance, love_count, copy_count, created_at, updated_at
	`, username, email, passwordHash, phone, role, models.DefaultStartingBalance)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.Role,
		&u.CoinBalance, &u.LoveCount, &u.CopyCount, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// HasRole reports whether any user currently holds the given role.
func (r *Repository) HasRole(ctx context.Context, role string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)
	`, role).Scan(&exists)
	return exists, err
}

// GetByEmail returns the user including the password hash for login.
// Returns nil when no user has that email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, phone_number, role,
		       coin_balance, love_count, copy_count, created_at, updated_at
		FROM users WHERE email = $1
	`, email)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PhoneNumber, &u.Role,
		&u.CoinBalance, &u.LoveCount, &u.CopyCount, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
