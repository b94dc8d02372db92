package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hotlinehub/backend/internal/models"
)

const recentCallsLimit = 100

type Handler struct {
	repo *Repository
	log  *slog.Logger
}

func NewHandler(repo *Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, log: log}
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListUsers(r.Context())
	if err != nil {
		h.log.Error("list users failed", "error", err)
		http.Error(w, "failed to get users", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.User{}
	}
	writeJSON(w, http.StatusOK, list)
}

// CountUsers handles GET /api/admin/users/count.
func (h *Handler) CountUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.repo.CountUsers(r.Context())
	if err != nil {
		h.log.Error("count users failed", "error", err)
		http.Error(w, "failed to count users", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole handles PUT /api/admin/users/{id}/role.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	switch req.Role {
	case models.RoleUser, models.RoleHelper, models.RoleAdmin:
	default:
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}
	ok, err := h.repo.UpdateRole(r.Context(), userID, req.Role)
	if err != nil {
		h.log.Error("update role failed", "error", err)
		http.Error(w, "failed to update role", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// RecentCalls handles GET /api/admin/calls.
func (h *Handler) RecentCalls(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.RecentCalls(r.Context(), recentCallsLimit)
	if err != nil {
		h.log.Error("recent calls failed", "error", err)
		http.Error(w, "failed to get calls", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*GlobalCallEntry{}
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
