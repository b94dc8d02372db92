package calls

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hotlinehub/backend/internal/ledger"
	"github.com/hotlinehub/backend/internal/metrics"
	"github.com/hotlinehub/backend/internal/middleware"
	"github.com/hotlinehub/backend/internal/models"
)

// Request/response structs use snake_case JSON to match the client.

type PlaceCallRequest struct {
	ServiceID string   `json:"service_id"`
	UserLat   *float64 `json:"user_lat"`
	UserLng   *float64 `json:"user_lng"`
}

type PlaceCallResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	CoinsSpent       int    `json:"coins_spent"`
	RemainingBalance int    `json:"remaining_balance"`
	CallID           string `json:"call_id"`
}

type EmergencyRequest struct {
	IncidentType string   `json:"incident_type"`
	UserLat      *float64 `json:"user_lat"`
	UserLng      *float64 `json:"user_lng"`
}

type EmergencyResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	CoinsSpent int    `json:"coins_spent"`
	CallID     string `json:"call_id"`
}

type Handler struct {
	svc Service
	m   *metrics.Metrics
	log *slog.Logger
}

func NewHandler(svc Service, m *metrics.Metrics, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, m: m, log: log}
}

// PlaceCall handles POST /api/call.
func (h *Handler) PlaceCall(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req PlaceCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		http.Error(w, "invalid service_id", http.StatusBadRequest)
		return
	}
	placed, err := h.svc.PlaceCall(r.Context(), id.UserID, serviceID, Location{Lat: req.UserLat, Lng: req.UserLng})
	if err != nil {
		h.callError(w, models.CallTypeDirect, err)
		return
	}
	h.countCall(models.CallTypeDirect, "ok")
	writeJSON(w, http.StatusOK, PlaceCallResponse{
		Success:          true,
		Message:          "call recorded successfully",
		CoinsSpent:       placed.CoinsSpent,
		RemainingBalance: placed.RemainingBalance,
		CallID:           placed.CallID.String(),
	})
}

// PlaceEmergency handles POST /api/emergency.
func (h *Handler) PlaceEmergency(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req EmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	placed, err := h.svc.PlaceEmergencyCall(r.Context(), id.UserID, Location{Lat: req.UserLat, Lng: req.UserLng})
	if err != nil {
		h.callError(w, models.CallTypeEmergency, err)
		return
	}
	h.countCall(models.CallTypeEmergency, "ok")
	writeJSON(w, http.StatusOK, EmergencyResponse{
		Success:    true,
		Message:    "emergency alert sent",
		CoinsSpent: placed.CoinsSpent,
		CallID:     placed.CallID.String(),
	})
}

// History handles GET /api/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	entries, err := h.svc.History(r.Context(), id.UserID)
	if err != nil {
		h.log.Error("get history failed", "error", err)
		http.Error(w, "failed to get call history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Reset handles POST /api/reset: zeroes economy state for the caller only.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.svc.ResetUser(r.Context(), id.UserID); err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.log.Error("reset failed", "error", err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "user data reset successfully"})
}

func (h *Handler) callError(w http.ResponseWriter, callType string, err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		h.countCall(callType, "insufficient_funds")
		if h.m != nil {
			h.m.InsufficientFunds.Inc()
		}
		http.Error(w, "insufficient coin balance", http.StatusBadRequest)
	case errors.Is(err, ledger.ErrUserNotFound):
		h.countCall(callType, "not_found")
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, ErrServiceNotFound):
		h.countCall(callType, "not_found")
		http.Error(w, "service not found", http.StatusNotFound)
	case errors.Is(err, ErrNoEmergencyTarget):
		h.countCall(callType, "no_target")
		http.Error(w, "no emergency service configured", http.StatusServiceUnavailable)
	default:
		h.countCall(callType, "error")
		h.log.Error("place call failed", "type", callType, "error", err)
		http.Error(w, "failed to record call", http.StatusInternalServerError)
	}
}

func (h *Handler) countCall(callType, outcome string) {
	if h.m != nil {
		h.m.CallsPlaced.WithLabelValues(callType, outcome).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
