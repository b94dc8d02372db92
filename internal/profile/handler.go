package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hotlinehub/backend/internal/middleware"
	"github.com/hotlinehub/backend/internal/models"
)

// LocationMessenger appends an emergency location message when a shared
// position targets a service. Implemented by the chat service.
type LocationMessenger interface {
	AppendEmergencyLocation(ctx context.Context, senderID, serviceID uuid.UUID, body string) error
}

type Handler struct {
	repo      *Repository
	messenger LocationMessenger
	log       *slog.Logger
}

func NewHandler(repo *Repository, messenger LocationMessenger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, messenger: messenger, log: log}
}

// GetMe handles GET /api/user.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := h.repo.Get(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.log.Error("get user failed", "error", err)
		http.Error(w, "failed to get user data", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"coin_balance": u.CoinBalance,
		"love_count":   u.LoveCount,
		"copy_count":   u.CopyCount,
		"username":     u.Username,
	})
}

// Favorite handles POST /api/favorite (love counter).
func (h *Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	h.incrementCounter(w, r, "love_count", "favorite count updated")
}

// Copy handles POST /api/copy.
func (h *Handler) Copy(w http.ResponseWriter, r *http.Request) {
	h.incrementCounter(w, r, "copy_count", "copy count updated")
}

func (h *Handler) incrementCounter(w http.ResponseWriter, r *http.Request, column, message string) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.repo.IncrementCounter(r.Context(), id.UserID, column); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.log.Error("increment counter failed", "column", column, "error", err)
		http.Error(w, "failed to update counter", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": message})
}

type favoriteRequest struct {
	ServiceID string `json:"service_id"`
}

// ListFavorites handles GET /api/favorites.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.repo.ListFavorites(r.Context(), id.UserID)
	if err != nil {
		h.log.Error("list favorites failed", "error", err)
		http.Error(w, "failed to get favorites", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Service{}
	}
	writeJSON(w, http.StatusOK, list)
}

// AddFavorite handles POST /api/favorites.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		http.Error(w, "invalid service_id", http.StatusBadRequest)
		return
	}
	if err := h.repo.AddFavorite(r.Context(), id.UserID, serviceID); err != nil {
		h.log.Error("add favorite failed", "error", err)
		http.Error(w, "failed to add favorite", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// RemoveFavorite handles DELETE /api/favorites/{serviceID}.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	serviceID, err := uuid.Parse(r.PathValue("serviceID"))
	if err != nil {
		http.Error(w, "invalid service id", http.StatusBadRequest)
		return
	}
	if err := h.repo.RemoveFavorite(r.Context(), id.UserID, serviceID); err != nil {
		h.log.Error("remove favorite failed", "error", err)
		http.Error(w, "failed to remove favorite", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type shareLocationRequest struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	ServiceID string   `json:"service_id"`
}

// ShareLocation handles POST /api/share-location: stores the caller's
// position, and when a service is named, sends it an emergency location
// message.
func (h *Handler) ShareLocation(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req shareLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Lat == nil || req.Lng == nil {
		http.Error(w, "missing lat or lng", http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdateLocation(r.Context(), id.UserID, *req.Lat, *req.Lng); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.log.Error("update location failed", "error", err)
		http.Error(w, "failed to share location", http.StatusInternalServerError)
		return
	}
	if req.ServiceID != "" {
		serviceID, err := uuid.Parse(req.ServiceID)
		if err != nil {
			http.Error(w, "invalid service_id", http.StatusBadRequest)
			return
		}
		body := fmt.Sprintf("Emergency location: %f, %f", *req.Lat, *req.Lng)
		if err := h.messenger.AppendEmergencyLocation(r.Context(), id.UserID, serviceID, body); err != nil {
			h.log.Warn("location message failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "location shared successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
