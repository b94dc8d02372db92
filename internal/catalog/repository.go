package catalog

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

const serviceColumns = `id, name, description, phone_number, category, priority_level, is_active, created_by, created_at, updated_at`

func scanService(row pgx.Row) (*models.Service, error) {
	var s models.Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.PhoneNumber, &s.Category,
		&s.PriorityLevel, &s.IsActive, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActive returns active services filtered by exact category and/or a
// case-insensitive substring match on name or description. Ordering is
// stable: priority_level desc, category asc, name asc.
func (r *Repository) ListActive(ctx context.Context, category, search string) ([]*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE is_active`
	args := []any{}
	if category != "" {
		args = append(args, category)
		query += ` AND category = $1`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		if category != "" {
			query += ` AND (name ILIKE $2 OR description ILIKE $2)`
		} else {
			query += ` AND (name ILIKE $1 OR description ILIKE $1)`
		}
	}
	query += ` ORDER BY priority_level DESC, category ASC, name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetActive returns one active service; pgx.ErrNoRows when missing or
// deactivated.
func (r *Repository) GetActive(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return scanService(r.pool.QueryRow(ctx, `
		SELECT `+serviceColumns+` FROM services WHERE id = $1 AND is_active
	`, id))
}

// Categories returns the distinct categories of active services.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM services WHERE is_active ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

type CreateParams struct {
	Name          string
	Description   string
	PhoneNumber   string
	Category      string
	PriorityLevel int
	CreatedBy     uuid.UUID
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (*models.Service, error) {
	return scanService(r.pool.QueryRow(ctx, `
		INSERT INTO services (name, description, phone_number, category, priority_level, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		RETURNING `+serviceColumns+`
	`, p.Name, p.Description, p.PhoneNumber, p.Category, p.PriorityLevel, p.CreatedBy))
}

type UpdateParams struct {
	Name          string
	Description   string
	PhoneNumber   string
	Category      string
	PriorityLevel int
	IsActive      bool
}

// Update rewrites the service fields. Deactivation happens here via
// IsActive; services are never deleted.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET name = $1, description = $2, phone_number = $3, category = $4,
		    priority_level = $5, is_active = $6, updated_at = now()
		WHERE id = $7
	`, p.Name, p.Description, p.PhoneNumber, p.Category, p.PriorityLevel, p.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IsNotFound reports whether err is the repository's not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
