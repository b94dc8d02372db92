package calls

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// ActiveServiceExists reports whether the service can currently be called.
func (r *Repository) ActiveServiceExists(ctx context.Context, serviceID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM services WHERE id = $1 AND is_active)
	`, serviceID).Scan(&exists)
	return exists, err
}

// InsertRecord writes one call record inside the caller's transaction.
func (r *Repository) InsertRecord(ctx context.Context, tx pgx.Tx, rec *models.CallRecord) error {
	return tx.QueryRow(ctx, `
		INSERT INTO call_records (user_id, service_id, call_type, call_status, cost, caller_lat, caller_lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, rec.UserID, rec.ServiceID, rec.CallType, rec.CallStatus, rec.Cost, rec.CallerLat, rec.CallerLng).
		Scan(&rec.ID, &rec.CreatedAt)
}

// FindEmergencyTarget returns the highest-priority active police service.
// Runs inside the caller's transaction so the target cannot be
// deactivated between resolution and the record insert.
func (r *Repository) FindEmergencyTarget(ctx context.Context, tx pgx.Tx) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		SELECT id FROM services
		WHERE category = $1 AND is_active
		ORDER BY priority_level DESC, name ASC
		LIMIT 1
	`, models.CategoryPolice).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, errNoEmergencyTarget
		}
		return uuid.Nil, err
	}
	return id, nil
}

// HistoryByUser returns the most recent call records joined with their
// service, newest first.
func (r *Repository) HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cr.id, cr.call_type, cr.call_status, cr.cost, cr.created_at, cr.duration_seconds,
		       s.name, s.phone_number, s.category
		FROM call_records cr
		JOIN services s ON s.id = cr.service_id
		WHERE cr.user_id = $1
		ORDER BY cr.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		err := rows.Scan(&e.CallID, &e.CallType, &e.CallStatus, &e.Cost, &e.CallTime, &e.DurationSeconds,
			&e.ServiceName, &e.PhoneNumber, &e.Category)
		if err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// DeleteByUser removes all call records for one user inside the caller's
// transaction. Only the reset operation may do this.
func (r *Repository) DeleteByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM call_records WHERE user_id = $1`, userID)
	return err
}
