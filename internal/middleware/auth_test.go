package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/hotlinehub/backend/internal/models"
)

type stubValidator struct {
	userID uuid.UUID
	role   string
	err    error
	seen   string
}

func (s *stubValidator) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	s.seen = token
	if s.err != nil {
		return uuid.Nil, "", s.err
	}
	return s.userID, s.role, nil
}

func okHandler(captured **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = IdentityFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	v := &stubValidator{userID: userID, role: models.RoleUser}

	var got *Identity
	handler := Authenticate(v)(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if v.seen != "some.jwt.token" {
		t.Errorf("validator saw token %q", v.seen)
	}
	if got == nil || got.UserID != userID || got.Role != models.RoleUser {
		t.Errorf("identity in context: got %+v", got)
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	v := &stubValidator{}
	var got *Identity
	handler := Authenticate(v)(okHandler(&got))

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status got %d, want 401", header, rr.Code)
		}
	}
	if got != nil {
		t.Error("handler must not run without a token")
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	v := &stubValidator{err: errors.New("token is expired")}
	var got *Identity
	handler := Authenticate(v)(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer expired.jwt")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
	if got != nil {
		t.Error("handler must not run with an invalid token")
	}
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		role string
		want int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleHelper, http.StatusForbidden},
		{models.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		var got *Identity
		handler := RequireAdmin(okHandler(&got))

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: uuid.New(), Role: tc.role}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != tc.want {
			t.Errorf("role %q: status got %d, want %d", tc.role, rr.Code, tc.want)
		}
	}

	// No identity at all.
	var got *Identity
	rr := httptest.NewRecorder()
	RequireAdmin(okHandler(&got)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no identity: status got %d, want 401", rr.Code)
	}
}

func TestRequireHelper(t *testing.T) {
	cases := []struct {
		role string
		want int
	}{
		{models.RoleHelper, http.StatusOK},
		{models.RoleAdmin, http.StatusOK},
		{models.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		var got *Identity
		handler := RequireHelper(okHandler(&got))

		req := httptest.NewRequest(http.MethodGet, "/api/chat/sessions/waiting", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: uuid.New(), Role: tc.role}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != tc.want {
			t.Errorf("role %q: status got %d, want %d", tc.role, rr.Code, tc.want)
		}
	}
}
