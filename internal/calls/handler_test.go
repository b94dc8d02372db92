package calls

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hotlinehub/backend/internal/ledger"
	"github.com/hotlinehub/backend/internal/middleware"
	"github.com/hotlinehub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Stub Service for handler tests.
// ---------------------------------------------------------------------------

type stubCallService struct {
	placed *PlacedCall
	err    error
}

func (s *stubCallService) PlaceCall(context.Context, uuid.UUID, uuid.UUID, Location) (*PlacedCall, error) {
	return s.placed, s.err
}

func (s *stubCallService) PlaceEmergencyCall(context.Context, uuid.UUID, Location) (*PlacedCall, error) {
	return s.placed, s.err
}

func (s *stubCallService) History(context.Context, uuid.UUID) ([]*models.HistoryEntry, error) {
	return nil, s.err
}

func (s *stubCallService) ResetUser(context.Context, uuid.UUID) error {
	return s.err
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	identity := &middleware.Identity{UserID: uuid.New(), Role: models.RoleUser}
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestPlaceCallHandler(t *testing.T) {
	callID := uuid.New()
	svc := &stubCallService{placed: &PlacedCall{CallID: callID, CoinsSpent: models.CallCost, RemainingBalance: 80}}
	h := NewHandler(svc, nil, nil)

	body := `{"service_id":"` + uuid.New().String() + `","user_lat":41.01,"user_lng":28.97}`
	rr := httptest.NewRecorder()
	h.PlaceCall(rr, authedRequest(http.MethodPost, "/api/call", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200, body: %s", rr.Code, rr.Body.String())
	}
	var resp PlaceCallResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.CoinsSpent != models.CallCost || resp.RemainingBalance != 80 {
		t.Errorf("response: %+v", resp)
	}
	if resp.CallID != callID.String() {
		t.Errorf("call_id: got %q, want %q", resp.CallID, callID)
	}
}

func TestPlaceCallHandler_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"insufficient funds", `{"service_id":"` + uuid.New().String() + `"}`, ledger.ErrInsufficientFunds, http.StatusBadRequest},
		{"unknown service", `{"service_id":"` + uuid.New().String() + `"}`, ErrServiceNotFound, http.StatusNotFound},
		{"unknown user", `{"service_id":"` + uuid.New().String() + `"}`, ledger.ErrUserNotFound, http.StatusNotFound},
		{"bad uuid", `{"service_id":"not-a-uuid"}`, nil, http.StatusBadRequest},
		{"bad json", `{`, nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		h := NewHandler(&stubCallService{err: tc.err}, nil, nil)
		rr := httptest.NewRecorder()
		h.PlaceCall(rr, authedRequest(http.MethodPost, "/api/call", tc.body))
		if rr.Code != tc.want {
			t.Errorf("%s: status got %d, want %d", tc.name, rr.Code, tc.want)
		}
	}
}

func TestPlaceCallHandler_Unauthenticated(t *testing.T) {
	h := NewHandler(&stubCallService{}, nil, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/call", strings.NewReader(`{}`))
	h.PlaceCall(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestPlaceEmergencyHandler(t *testing.T) {
	svc := &stubCallService{placed: &PlacedCall{CallID: uuid.New(), CoinsSpent: models.EmergencyCallCost, RemainingBalance: 50}}
	h := NewHandler(svc, nil, nil)

	rr := httptest.NewRecorder()
	h.PlaceEmergency(rr, authedRequest(http.MethodPost, "/api/emergency", `{"incident_type":"fire","user_lat":41.0,"user_lng":29.0}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp EmergencyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.CoinsSpent != models.EmergencyCallCost {
		t.Errorf("response: %+v", resp)
	}
}

func TestPlaceEmergencyHandler_NoTarget(t *testing.T) {
	h := NewHandler(&stubCallService{err: ErrNoEmergencyTarget}, nil, nil)
	rr := httptest.NewRecorder()
	h.PlaceEmergency(rr, authedRequest(http.MethodPost, "/api/emergency", `{}`))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rr.Code)
	}
}

func TestHistoryHandler_EmptyIsArray(t *testing.T) {
	h := NewHandler(&stubCallService{}, nil, nil)
	rr := httptest.NewRecorder()
	h.History(rr, authedRequest(http.MethodGet, "/api/history", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	// An empty history must serialize as [], not null.
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("empty history body: got %q, want []", got)
	}
}

func TestResetHandler(t *testing.T) {
	h := NewHandler(&stubCallService{}, nil, nil)
	rr := httptest.NewRecorder()
	h.Reset(rr, authedRequest(http.MethodPost, "/api/reset", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	h = NewHandler(&stubCallService{err: ledger.ErrUserNotFound}, nil, nil)
	rr = httptest.NewRecorder()
	h.Reset(rr, authedRequest(http.MethodPost, "/api/reset", ""))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown user: status got %d, want 404", rr.Code)
	}
}
