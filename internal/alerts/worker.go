package alerts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/hotlinehub/backend/internal/metrics"
)

// EmergencyAlertJobArgs is enqueued inside the call-ledger transaction
// when an emergency call is placed, so an alert job exists exactly when
// the call record does.
type EmergencyAlertJobArgs struct {
	CallID    uuid.UUID `json:"call_id"`
	UserID    uuid.UUID `json:"user_id"`
	ServiceID uuid.UUID `json:"service_id"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
}

func (EmergencyAlertJobArgs) Kind() string { return "emergency_alert" }

// Notifier defines the contract the worker needs to deliver an alert.
// Delivery is an append-only emergency message addressed to the service;
// at-least-once execution may duplicate it, which is acceptable.
type Notifier interface {
	AppendEmergencyAlert(ctx context.Context, userID, serviceID uuid.UUID, lat, lng *float64) error
}

type EmergencyAlertWorker struct {
	river.WorkerDefaults[EmergencyAlertJobArgs]
	notifier Notifier
	m        *metrics.Metrics
}

func NewEmergencyAlertWorker(notifier Notifier, m *metrics.Metrics) *EmergencyAlertWorker {
	return &EmergencyAlertWorker{notifier: notifier, m: m}
}

func (w *EmergencyAlertWorker) Work(ctx context.Context, job *river.Job[EmergencyAlertJobArgs]) error {
	args := job.Args
	if err := w.notifier.AppendEmergencyAlert(ctx, args.UserID, args.ServiceID, args.Lat, args.Lng); err != nil {
		w.count("error")
		return fmt.Errorf("deliver emergency alert for call %s: %w", args.CallID, err)
	}
	w.count("ok")
	return nil
}

func (w *EmergencyAlertWorker) count(outcome string) {
	if w.m != nil {
		w.m.EmergencyAlerts.WithLabelValues(outcome).Inc()
	}
}
