package router

import (
	"net/http"

	"github.com/hotlinehub/backend/internal/admin"
	"github.com/hotlinehub/backend/internal/auth"
	"github.com/hotlinehub/backend/internal/calls"
	"github.com/hotlinehub/backend/internal/catalog"
	"github.com/hotlinehub/backend/internal/chat"
	"github.com/hotlinehub/backend/internal/metrics"
	"github.com/hotlinehub/backend/internal/middleware"
	"github.com/hotlinehub/backend/internal/profile"
)

// Handlers groups the feature handlers mounted under /api.
type Handlers struct {
	Auth    *auth.Handler
	Catalog *catalog.Handler
	Calls   *calls.Handler
	Profile *profile.Handler
	Chat    *chat.Handler
	Admin   *admin.Handler
}

// New returns an http.Handler serving the API under /api.
// Everything except register and login sits behind the auth middleware;
// the admin surface additionally requires the admin role.
func New(h Handlers, authSvc auth.Service, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	authn := middleware.Authenticate(authSvc)

	handle := func(pattern, route string, hf http.HandlerFunc) {
		mux.Handle(pattern, middleware.Instrument(m, route, authn(hf)))
	}
	handleOpen := func(pattern, route string, hf http.HandlerFunc) {
		mux.Handle(pattern, middleware.Instrument(m, route, hf))
	}
	handleHelper := func(pattern, route string, hf http.HandlerFunc) {
		mux.Handle(pattern, middleware.Instrument(m, route, authn(middleware.RequireHelper(hf))))
	}
	handleAdmin := func(pattern, route string, hf http.HandlerFunc) {
		mux.Handle(pattern, middleware.Instrument(m, route, authn(middleware.RequireAdmin(hf))))
	}

	handleOpen("POST /api/register", "register", h.Auth.Register)
	handleOpen("POST /api/login", "login", h.Auth.Login)
	handle("POST /api/logout", "logout", h.Auth.Logout)

	handle("GET /api/services", "services", h.Catalog.List)
	handle("GET /api/services/{id}", "service_detail", h.Catalog.Get)
	handle("GET /api/categories", "categories", h.Catalog.Categories)

	handle("POST /api/call", "call", h.Calls.PlaceCall)
	handle("POST /api/emergency", "emergency", h.Calls.PlaceEmergency)
	handle("GET /api/history", "history", h.Calls.History)
	handle("POST /api/reset", "reset", h.Calls.Reset)

	handle("GET /api/user", "user", h.Profile.GetMe)
	handle("POST /api/favorite", "favorite_counter", h.Profile.Favorite)
	handle("POST /api/copy", "copy_counter", h.Profile.Copy)
	handle("GET /api/favorites", "favorites_list", h.Profile.ListFavorites)
	handle("POST /api/favorites", "favorites_add", h.Profile.AddFavorite)
	handle("DELETE /api/favorites/{serviceID}", "favorites_remove", h.Profile.RemoveFavorite)
	handle("POST /api/share-location", "share_location", h.Profile.ShareLocation)

	handle("POST /api/messages", "messages_send", h.Chat.SendMessage)
	handle("POST /api/chat/session", "chat_open", h.Chat.OpenSession)
	handleHelper("GET /api/chat/sessions/waiting", "chat_waiting", h.Chat.WaitingSessions)
	handleHelper("POST /api/chat/session/{id}/assign", "chat_assign", h.Chat.Assign)
	handle("GET /api/chat/sessions/my", "chat_my", h.Chat.MySessions)
	handle("GET /api/chat/messages/{sessionID}", "chat_messages", h.Chat.Messages)
	handle("POST /api/chat/session/{id}/close", "chat_close", h.Chat.CloseSession)

	handleAdmin("POST /api/admin/services", "admin_service_create", h.Catalog.Create)
	handleAdmin("PUT /api/admin/services/{id}", "admin_service_update", h.Catalog.Update)
	handleAdmin("GET /api/admin/users", "admin_users", h.Admin.ListUsers)
	handleAdmin("GET /api/admin/users/count", "admin_users_count", h.Admin.CountUsers)
	handleAdmin("PUT /api/admin/users/{id}/role", "admin_user_role", h.Admin.UpdateRole)
	handleAdmin("GET /api/admin/calls", "admin_calls", h.Admin.RecentCalls)

	return mux
}
