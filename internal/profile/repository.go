package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotlinehub/backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the profile fields served by GET /api/user.
func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, email, phone_number, role, coin_balance, love_count, copy_count,
		       location_lat, location_lng, created_at, updated_at
		FROM users WHERE id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.Role,
		&u.CoinBalance, &u.LoveCount, &u.CopyCount, &u.LocationLat, &u.LocationLng,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// IncrementCounter bumps love_count or copy_count. column is caller
// controlled code, never user input.
func (r *Repository) IncrementCounter(ctx context.Context, userID uuid.UUID, column string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET `+column+` = `+column+` + 1, updated_at = now() WHERE id = $1
	`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddFavorite is idempotent: re-adding an existing pairing is a no-op.
func (r *Repository) AddFavorite(ctx context.Context, userID, serviceID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO favorites (user_id, service_id) VALUES ($1, $2)
		ON CONFLICT (user_id, service_id) DO NOTHING
	`, userID, serviceID)
	return err
}

// RemoveFavorite is idempotent: removing an absent pairing is a no-op.
func (r *Repository) RemoveFavorite(ctx context.Context, userID, serviceID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND service_id = $2
	`, userID, serviceID)
	return err
}

// ListFavorites returns the caller's favorited services, catalog order.
func (r *Repository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*models.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.description, s.phone_number, s.category,
		       s.priority_level, s.is_active, s.created_by, s.created_at, s.updated_at
		FROM favorites f
		JOIN services s ON s.id = f.service_id
		WHERE f.user_id = $1 AND s.is_active
		ORDER BY s.priority_level DESC, s.category ASC, s.name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Service
	for rows.Next() {
		var s models.Service
		err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PhoneNumber, &s.Category,
			&s.PriorityLevel, &s.IsActive, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// UpdateLocation stores the caller's last-known position.
func (r *Repository) UpdateLocation(ctx context.Context, userID uuid.UUID, lat, lng float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET location_lat = $1, location_lng = $2, updated_at = now() WHERE id = $3
	`, lat, lng, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
