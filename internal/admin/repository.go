package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotlinehub/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users, newest first, without password hashes.
func (r *Repository) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, email, phone_number, role, coin_balance, love_count, copy_count, created_at, updated_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.Role,
			&u.CoinBalance, &u.LoveCount, &u.CopyCount, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// UpdateRole changes a user's role. Returns false when the user is unknown.
func (r *Repository) UpdateRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET role = $1, updated_at = now() WHERE id = $2
	`, role, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GlobalCallEntry is a call record joined with both its user and service
// for the admin call log.
type GlobalCallEntry struct {
	CallID      uuid.UUID `json:"call_id"`
	Username    string    `json:"username"`
	ServiceName string    `json:"service_name"`
	Category    string    `json:"category"`
	CallType    string    `json:"call_type"`
	CallStatus  string    `json:"call_status"`
	Cost        int       `json:"cost"`
	CallTime    time.Time `json:"call_time"`
}

// RecentCalls returns the platform-wide call log, newest first.
func (r *Repository) RecentCalls(ctx context.Context, limit int) ([]*GlobalCallEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cr.id, u.username, s.name, s.category, cr.call_type, cr.call_status, cr.cost, cr.created_at
		FROM call_records cr
		JOIN users u ON u.id = cr.user_id
		JOIN services s ON s.id = cr.service_id
		ORDER BY cr.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*GlobalCallEntry
	for rows.Next() {
		var e GlobalCallEntry
		err := rows.Scan(&e.CallID, &e.Username, &e.ServiceName, &e.Category,
			&e.CallType, &e.CallStatus, &e.Cost, &e.CallTime)
		if err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
