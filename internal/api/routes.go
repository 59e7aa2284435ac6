package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"boykot-backend/internal/handler"
	"boykot-backend/internal/logger"
	"boykot-backend/internal/middleware"
)

// SetupRouter wires every endpoint to the handler. Protected routes require a
// valid session token; public routes serve the onboarding and browse screens.
func SetupRouter(h *handler.Handler, auth *middleware.Auth) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logger)

	protected := r.PathPrefix("/").Subrouter()
	protected.Use(auth.RequireAuth)

	// Root - API documentation
	r.HandleFunc("/", h.RootHandler).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/auth/check-username", h.CheckUsername).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/session", h.BeginSession).Methods(http.MethodPost)
	protected.HandleFunc("/auth/session", h.CurrentSession).Methods(http.MethodGet)
	protected.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	// Profile & settings
	protected.HandleFunc("/profile", h.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", h.UpdateProfile).Methods(http.MethodPatch, http.MethodPut)
	protected.HandleFunc("/profile/avatar", h.UploadAvatar).Methods(http.MethodPost)
	protected.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet)
	protected.HandleFunc("/settings", h.UpdateSettings).Methods(http.MethodPatch, http.MethodPut)

	// Leaderboard
	r.HandleFunc("/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/users/{userId}", h.GetUserRank).Methods(http.MethodGet)
	protected.HandleFunc("/leaderboard/score", h.AddScore).Methods(http.MethodPost)

	// Boycott directory
	r.HandleFunc("/companies", h.GetCompanies).Methods(http.MethodGet)
	r.HandleFunc("/companies/{id}", h.GetCompany).Methods(http.MethodGet)

	// Announcements & channels
	r.HandleFunc("/announcements", h.GetAnnouncements).Methods(http.MethodGet)
	r.HandleFunc("/channels", h.GetChannels).Methods(http.MethodGet)
	protected.HandleFunc("/channels/subscriptions", h.GetSubscriptions).Methods(http.MethodGet)
	protected.HandleFunc("/channels/{id}/subscribe", h.Subscribe).Methods(http.MethodPost)
	protected.HandleFunc("/channels/{id}/subscribe", h.Unsubscribe).Methods(http.MethodDelete)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warning("404 Not Found: %s %s", r.Method, r.URL.Path)
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
