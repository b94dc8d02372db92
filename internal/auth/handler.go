package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hotlinehub/backend/internal/metrics"
	"github.com/hotlinehub/backend/internal/models"
)

// Request/response structs use snake_case JSON to match the client.

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone_number"`
	Role     string `json:"role"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CoinBalance int    `json:"coin_balance"`
	LoveCount   int    `json:"love_count"`
	CopyCount   int    `json:"copy_count"`
}

type LoginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	_, err := h.svc.Register(r.Context(), Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			http.Error(w, "user already exists", http.StatusBadRequest)
			return
		}
		if err.Error() == "invalid role" {
			http.Error(w, "invalid role", http.StatusBadRequest)
			return
		}
		h.log.Error("register failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, RegisterResponse{Success: true, Message: "user registered successfully"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "missing email or password", http.StatusBadRequest)
		return
	}
	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.loginMetric("rejected")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.log.Error("login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	h.loginMetric("ok")
	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		User:    userToResponse(user),
	})
}

// Logout exists for client symmetry; tokens are stateless and simply expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "logged out successfully"})
}

func (h *Handler) loginMetric(outcome string) {
	if h.m != nil {
		h.m.Logins.WithLabelValues(outcome).Inc()
	}
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		UserID:      u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		CoinBalance: u.CoinBalance,
		LoveCount:   u.LoveCount,
		CopyCount:   u.CopyCount,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
