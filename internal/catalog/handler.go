package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hotlinehub/backend/internal/middleware"
	"github.com/hotlinehub/backend/internal/models"
)

type ServiceRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PhoneNumber   string `json:"phone_number"`
	Category      string `json:"category"`
	PriorityLevel int    `json:"priority_level"`
	IsActive      *bool  `json:"is_active"`
}

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// List handles GET /api/services?category=&search=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("category"), r.URL.Query().Get("search"))
	if err != nil {
		h.log.Error("list services failed", "error", err)
		http.Error(w, "failed to get services", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Service{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/services/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid service id", http.StatusBadRequest)
		return
	}
	svc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.log.Error("get service failed", "error", err)
		http.Error(w, "failed to get service", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Categories(r.Context())
	if err != nil {
		h.log.Error("list categories failed", "error", err)
		http.Error(w, "failed to get categories", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []string{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Create handles POST /api/admin/services.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	req, ok := decodeServiceRequest(w, r)
	if !ok {
		return
	}
	svc, err := h.svc.Create(r.Context(), CreateParams{
		Name:          req.Name,
		Description:   req.Description,
		PhoneNumber:   req.PhoneNumber,
		Category:      req.Category,
		PriorityLevel: priorityOrDefault(req.PriorityLevel),
		CreatedBy:     id.UserID,
	})
	if err != nil {
		h.log.Error("create service failed", "error", err)
		http.Error(w, "failed to add service", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "service_id": svc.ID.String()})
}

// Update handles PUT /api/admin/services/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	serviceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid service id", http.StatusBadRequest)
		return
	}
	req, ok := decodeServiceRequest(w, r)
	if !ok {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	err = h.svc.Update(r.Context(), serviceID, UpdateParams{
		Name:          req.Name,
		Description:   req.Description,
		PhoneNumber:   req.PhoneNumber,
		Category:      req.Category,
		PriorityLevel: priorityOrDefault(req.PriorityLevel),
		IsActive:      active,
	})
	if err != nil {
		if IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.log.Error("update service failed", "error", err)
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func decodeServiceRequest(w http.ResponseWriter, r *http.Request) (*ServiceRequest, bool) {
	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return nil, false
	}
	if req.Name == "" || req.PhoneNumber == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return nil, false
	}
	if !models.ValidCategories[strings.ToLower(req.Category)] {
		http.Error(w, "invalid category", http.StatusBadRequest)
		return nil, false
	}
	req.Category = strings.ToLower(req.Category)
	return &req, true
}

func priorityOrDefault(p int) int {
	if p <= 0 {
		return 1
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
