package chat

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

// FindOpenByUser returns the user's waiting or active session, or nil.
func (r *Repository) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, helper_id, status, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1 AND status IN ('waiting', 'active')
		LIMIT 1
	`, userID).Scan(&s.ID, &s.UserID, &s.HelperID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_sessions (user_id, status) VALUES ($1, 'waiting')
		RETURNING id, user_id, helper_id, status, created_at, updated_at
	`, userID).Scan(&s.ID, &s.UserID, &s.HelperID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, helper_id, status, created_at, updated_at
		FROM chat_sessions WHERE id = $1
	`, sessionID).Scan(&s.ID, &s.UserID, &s.HelperID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// WaitingSessions returns the helper queue, oldest first.
func (r *Repository) WaitingSessions(ctx context.Context) ([]*models.WaitingSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cs.id, cs.user_id, u.username, cs.status, cs.created_at, cs.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.session_id = cs.id) AS message_count
		FROM chat_sessions cs
		JOIN users u ON u.id = cs.user_id
		WHERE cs.status = 'waiting'
		ORDER BY cs.created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.WaitingSession
	for rows.Next() {
		var s models.WaitingSession
		err := rows.Scan(&s.SessionID, &s.UserID, &s.Username, &s.Status, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount)
		if err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Assign moves a waiting session to active with a compare-and-set, so
// two helpers racing for the same session cannot both win.
func (r *Repository) Assign(ctx context.Context, sessionID, helperID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE chat_sessions
		SET helper_id = $1, status = 'active', updated_at = now()
		WHERE id = $2 AND status = 'waiting'
	`, helperID, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errAssignConflict
	}
	return nil
}

func (r *Repository) Close(ctx context.Context, sessionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE chat_sessions SET status = 'closed', updated_at = now()
		WHERE id = $1 AND status != 'closed'
	`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errSessionNotFound
	}
	return nil
}

// SessionsByParticipant returns sessions where the caller is the user or
// the helper, newest first.
func (r *Repository) SessionsByParticipant(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, helper_id, status, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1 OR helper_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ChatSession
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.HelperID, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// MessagesBySession returns a session's messages in chronological order.
// The client polls this endpoint; there is no push delivery.
func (r *Repository) MessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, service_id, session_id, body, message_type, is_emergency, created_at
		FROM messages WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.ServiceID, &m.SessionID,
			&m.Body, &m.MessageType, &m.IsEmergency, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CreateMessage appends one message. Messages are never updated or deleted.
func (r *Repository) CreateMessage(ctx context.Context, m *models.Message) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, service_id, session_id, body, message_type, is_emergency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, m.SenderID, m.ReceiverID, m.ServiceID, m.SessionID, m.Body, m.MessageType, m.IsEmergency).
		Scan(&m.ID, &m.CreatedAt)
}
