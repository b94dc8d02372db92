package calls

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hotlinehub/backend/internal/alerts"
	"github.com/hotlinehub/backend/internal/ledger"
	"github.com/hotlinehub/backend/internal/models"
)

var errNoEmergencyTarget = errors.New("no active police service configured")

// ErrNoEmergencyTarget is returned when an emergency call cannot resolve
// a target because no active police service exists. A misconfigured
// directory is reported, never papered over with a fallback id.
var ErrNoEmergencyTarget = errNoEmergencyTarget

// ErrServiceNotFound is returned when the called service is missing or
// deactivated.
var ErrServiceNotFound = errors.New("service not found")

const historyLimit = 50

// Location is an optional caller geolocation; absence is not an error.
type Location struct {
	Lat *float64
	Lng *float64
}

// PlacedCall is the result of a successful call placement.
type PlacedCall struct {
	CallID           uuid.UUID
	CoinsSpent       int
	RemainingBalance int
}

// InsertAlertTxFunc enqueues an emergency alert job within the given
// transaction. Provided by main using river.Client.InsertTx.
type InsertAlertTxFunc func(ctx context.Context, tx pgx.Tx, args alerts.EmergencyAlertJobArgs) error

// CallRepo is the repository surface the service needs; narrowed so tests
// can stub it.
type CallRepo interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	ActiveServiceExists(ctx context.Context, serviceID uuid.UUID) (bool, error)
	InsertRecord(ctx context.Context, tx pgx.Tx, rec *models.CallRecord) error
	FindEmergencyTarget(ctx context.Context, tx pgx.Tx) (uuid.UUID, error)
	HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.HistoryEntry, error)
	DeleteByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

type Service interface {
	PlaceCall(ctx context.Context, userID, serviceID uuid.UUID, loc Location) (*PlacedCall, error)
	PlaceEmergencyCall(ctx context.Context, userID uuid.UUID, loc Location) (*PlacedCall, error)
	History(ctx context.Context, userID uuid.UUID) ([]*models.HistoryEntry, error)
	ResetUser(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo        CallRepo
	ledger      ledger.Service
	insertAlert InsertAlertTxFunc
}

// NewService creates the call-ledger service. insertAlert is typically a
// closure over river.Client.InsertTx.
func NewService(repo CallRepo, ledgerSvc ledger.Service, insertAlert InsertAlertTxFunc) Service {
	return &service{repo: repo, ledger: ledgerSvc, insertAlert: insertAlert}
}

var _ Service = (*service)(nil)

// PlaceCall debits the call cost and writes the call record as one
// transaction. If the balance is short nothing is written; a record can
// never exist without its debit.
func (s *service) PlaceCall(ctx context.Context, userID, serviceID uuid.UUID, loc Location) (*PlacedCall, error) {
	active, err := s.repo.ActiveServiceExists(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrServiceNotFound
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	remaining, err := s.ledger.Debit(ctx, tx, userID, models.CallCost)
	if err != nil {
		return nil, err
	}
	rec := &models.CallRecord{
		UserID:     userID,
		ServiceID:  serviceID,
		CallType:   models.CallTypeDirect,
		CallStatus: models.CallStatusCompleted,
		Cost:       models.CallCost,
		CallerLat:  loc.Lat,
		CallerLng:  loc.Lng,
	}
	if err := s.repo.InsertRecord(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &PlacedCall{CallID: rec.ID, CoinsSpent: models.CallCost, RemainingBalance: remaining}, nil
}

// PlaceEmergencyCall resolves the highest-priority active police service
// as the implicit target, then follows the same debit-and-record
// transaction with the emergency cost, and enqueues the alert job in the
// same transaction.
func (s *service) PlaceEmergencyCall(ctx context.Context, userID uuid.UUID, loc Location) (*PlacedCall, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	targetID, err := s.repo.FindEmergencyTarget(ctx, tx)
	if err != nil {
		return nil, err
	}
	remaining, err := s.ledger.Debit(ctx, tx, userID, models.EmergencyCallCost)
	if err != nil {
		return nil, err
	}
	rec := &models.CallRecord{
		UserID:     userID,
		ServiceID:  targetID,
		CallType:   models.CallTypeEmergency,
		CallStatus: models.CallStatusInitiated,
		Cost:       models.EmergencyCallCost,
		CallerLat:  loc.Lat,
		CallerLng:  loc.Lng,
	}
	if err := s.repo.InsertRecord(ctx, tx, rec); err != nil {
		return nil, err
	}
	if s.insertAlert != nil {
		err := s.insertAlert(ctx, tx, alerts.EmergencyAlertJobArgs{
			CallID:    rec.ID,
			UserID:    userID,
			ServiceID: targetID,
			Lat:       loc.Lat,
			Lng:       loc.Lng,
		})
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &PlacedCall{CallID: rec.ID, CoinsSpent: models.EmergencyCallCost, RemainingBalance: remaining}, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]*models.HistoryEntry, error) {
	return s.repo.HistoryByUser(ctx, userID, historyLimit)
}

// ResetUser restores the starting balance, zeroes the counters and clears
// the user's call records in one transaction.
func (s *service) ResetUser(ctx context.Context, userID uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.ledger.Reset(ctx, tx, userID, models.DefaultStartingBalance); err != nil {
		return err
	}
	if err := s.repo.DeleteByUser(ctx, tx, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
