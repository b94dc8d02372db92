package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hotlinehub/backend/internal/models"
)

var (
	errSessionNotFound = errors.New("session not found")
	errAssignConflict  = errors.New("session already assigned")
)

// ErrSessionNotFound is returned for unknown or already-closed sessions.
var ErrSessionNotFound = errSessionNotFound

// ErrAssignConflict is returned when the session was assigned to another
// helper between listing and claiming it.
var ErrAssignConflict = errAssignConflict

// ErrNotParticipant is returned when the caller is neither side of the
// session (admins are exempt).
var ErrNotParticipant = errors.New("not a session participant")

// ErrInvalidMessageType is returned for message types outside text/location.
var ErrInvalidMessageType = errors.New("invalid message type")

// ChatRepo is the repository surface the service needs.
type ChatRepo interface {
	FindOpenByUser(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error)
	CreateSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.ChatSession, error)
	WaitingSessions(ctx context.Context) ([]*models.WaitingSession, error)
	Assign(ctx context.Context, sessionID, helperID uuid.UUID) error
	Close(ctx context.Context, sessionID uuid.UUID) error
	SessionsByParticipant(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error)
	MessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.Message, error)
	CreateMessage(ctx context.Context, m *models.Message) error
}

type Service struct {
	repo ChatRepo
}

func NewService(repo ChatRepo) *Service {
	return &Service{repo: repo}
}

// OpenSession returns the user's existing waiting/active session, or
// creates a new waiting one. The second return reports reuse.
func (s *Service) OpenSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, bool, error) {
	existing, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}
	created, err := s.repo.CreateSession(ctx, userID)
	return created, false, err
}

func (s *Service) WaitingSessions(ctx context.Context) ([]*models.WaitingSession, error) {
	return s.repo.WaitingSessions(ctx)
}

// Assign claims a waiting session for a helper. Losing the race surfaces
// as ErrAssignConflict; an unknown session as ErrSessionNotFound.
func (s *Service) Assign(ctx context.Context, sessionID, helperID uuid.UUID) error {
	if err := s.repo.Assign(ctx, sessionID, helperID); err != nil {
		if errors.Is(err, errAssignConflict) {
			if _, getErr := s.repo.GetSession(ctx, sessionID); getErr != nil {
				return ErrSessionNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Service) MySessions(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	return s.repo.SessionsByParticipant(ctx, userID)
}

// Messages returns the session transcript after checking the caller is a
// participant (or admin).
func (s *Service) Messages(ctx context.Context, sessionID, callerID uuid.UUID, callerRole string) ([]*models.Message, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(session, callerID, callerRole) {
		return nil, ErrNotParticipant
	}
	return s.repo.MessagesBySession(ctx, sessionID)
}

type SendMessageParams struct {
	SessionID   *uuid.UUID
	ReceiverID  *uuid.UUID
	ServiceID   *uuid.UUID
	Body        string
	MessageType string
	IsEmergency bool
}

// SendMessage appends a message, enforcing session participation when
// the message belongs to a session.
func (s *Service) SendMessage(ctx context.Context, senderID uuid.UUID, senderRole string, p SendMessageParams) (*models.Message, error) {
	if p.MessageType == "" {
		p.MessageType = models.MessageTypeText
	}
	if p.MessageType != models.MessageTypeText && p.MessageType != models.MessageTypeLocation {
		return nil, ErrInvalidMessageType
	}
	if p.SessionID != nil {
		session, err := s.repo.GetSession(ctx, *p.SessionID)
		if err != nil {
			return nil, err
		}
		if !isParticipant(session, senderID, senderRole) {
			return nil, ErrNotParticipant
		}
	}
	m := &models.Message{
		SenderID:    senderID,
		ReceiverID:  p.ReceiverID,
		ServiceID:   p.ServiceID,
		SessionID:   p.SessionID,
		Body:        p.Body,
		MessageType: p.MessageType,
		IsEmergency: p.IsEmergency,
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Close marks a session closed; only a participant (or admin) may do it.
func (s *Service) Close(ctx context.Context, sessionID, callerID uuid.UUID, callerRole string) error {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !isParticipant(session, callerID, callerRole) {
		return ErrNotParticipant
	}
	return s.repo.Close(ctx, sessionID)
}

// AppendEmergencyAlert implements alerts.Notifier: the emergency-alert
// worker delivers the dispatched call as an emergency location message
// addressed to the target service.
func (s *Service) AppendEmergencyAlert(ctx context.Context, userID, serviceID uuid.UUID, lat, lng *float64) error {
	body := "Emergency call placed"
	if lat != nil && lng != nil {
		body = fmt.Sprintf("Emergency call placed at %f, %f", *lat, *lng)
	}
	return s.repo.CreateMessage(ctx, &models.Message{
		SenderID:    userID,
		ServiceID:   &serviceID,
		Body:        body,
		MessageType: models.MessageTypeLocation,
		IsEmergency: true,
	})
}

// AppendEmergencyLocation implements profile.LocationMessenger.
func (s *Service) AppendEmergencyLocation(ctx context.Context, senderID, serviceID uuid.UUID, body string) error {
	return s.repo.CreateMessage(ctx, &models.Message{
		SenderID:    senderID,
		ServiceID:   &serviceID,
		Body:        body,
		MessageType: models.MessageTypeLocation,
		IsEmergency: true,
	})
}

func isParticipant(session *models.ChatSession, callerID uuid.UUID, callerRole string) bool {
	if callerRole == models.RoleAdmin {
		return true
	}
	if session.UserID == callerID {
		return true
	}
	return session.HelperID != nil && *session.HelperID == callerID
}
