package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hotlinehub/backend/internal/middleware"
	"github.com/hotlinehub/backend/internal/models"
)

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

// OpenSession handles POST /api/chat/session.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	session, existed, err := h.svc.OpenSession(r.Context(), id.UserID)
	if err != nil {
		h.log.Error("open session failed", "error", err)
		http.Error(w, "failed to create chat session", http.StatusInternalServerError)
		return
	}
	status := http.StatusCreated
	message := "chat session created successfully"
	if existed {
		status = http.StatusOK
		message = "active session already exists"
	}
	writeJSON(w, status, map[string]any{"session_id": session.ID.String(), "message": message})
}

// WaitingSessions handles GET /api/chat/sessions/waiting (helper/admin).
func (h *Handler) WaitingSessions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.WaitingSessions(r.Context())
	if err != nil {
		h.log.Error("waiting sessions failed", "error", err)
		http.Error(w, "failed to get waiting sessions", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.WaitingSession{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Assign handles POST /api/chat/session/{id}/assign (helper/admin).
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	if err := h.svc.Assign(r.Context(), sessionID, id.UserID); err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		case errors.Is(err, ErrAssignConflict):
			http.Error(w, "session was already assigned to another helper", http.StatusConflict)
		default:
			h.log.Error("assign session failed", "error", err)
			http.Error(w, "failed to assign session", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": sessionID.String()})
}

// MySessions handles GET /api/chat/sessions/my.
func (h *Handler) MySessions(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.svc.MySessions(r.Context(), id.UserID)
	if err != nil {
		h.log.Error("my sessions failed", "error", err)
		http.Error(w, "failed to get sessions", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.ChatSession{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Messages handles GET /api/chat/messages/{sessionID}.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	sessionID, err := uuid.Parse(r.PathValue("sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	list, err := h.svc.Messages(r.Context(), sessionID, id.UserID, id.Role)
	if err != nil {
		h.sessionError(w, err, "failed to get messages")
		return
	}
	if list == nil {
		list = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, list)
}

type sendMessageRequest struct {
	SessionID   string `json:"session_id"`
	ReceiverID  string `json:"receiver_id"`
	ServiceID   string `json:"service_id"`
	Body        string `json:"message_text"`
	MessageType string `json:"message_type"`
	IsEmergency bool   `json:"is_emergency"`
}

// SendMessage handles POST /api/messages.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Body == "" {
		http.Error(w, "missing message_text", http.StatusBadRequest)
		return
	}
	params := SendMessageParams{
		Body:        req.Body,
		MessageType: req.MessageType,
		IsEmergency: req.IsEmergency,
	}
	var parseErr error
	if params.SessionID, parseErr = parseOptionalUUID(req.SessionID); parseErr != nil {
		http.Error(w, "invalid session_id", http.StatusBadRequest)
		return
	}
	if params.ReceiverID, parseErr = parseOptionalUUID(req.ReceiverID); parseErr != nil {
		http.Error(w, "invalid receiver_id", http.StatusBadRequest)
		return
	}
	if params.ServiceID, parseErr = parseOptionalUUID(req.ServiceID); parseErr != nil {
		http.Error(w, "invalid service_id", http.StatusBadRequest)
		return
	}
	m, err := h.svc.SendMessage(r.Context(), id.UserID, id.Role, params)
	if err != nil {
		h.sessionError(w, err, "failed to send message")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message_id": m.ID.String()})
}

// CloseSession handles POST /api/chat/session/{id}/close.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	if err := h.svc.Close(r.Context(), sessionID, id.UserID, id.Role); err != nil {
		h.sessionError(w, err, "failed to close session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) sessionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, ErrNotParticipant):
		http.Error(w, "not a session participant", http.StatusForbidden)
	case errors.Is(err, ErrInvalidMessageType):
		http.Error(w, "invalid message type", http.StatusBadRequest)
	default:
		h.log.Error(fallback, "error", err)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
