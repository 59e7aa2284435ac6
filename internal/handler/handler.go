package handler

import (
	"errors"
	"net/http"

	"boykot-backend/internal/directory"
	"boykot-backend/internal/feed"
	"boykot-backend/internal/identity"
	"boykot-backend/internal/leaderboard"
	"boykot-backend/internal/logger"
	"boykot-backend/internal/services"
	"boykot-backend/internal/session"
	"boykot-backend/internal/store"
	"boykot-backend/internal/utils"
)

// Handler bundles the services every endpoint depends on. Constructed once at
// startup and wired into the router; no package-level state.
type Handler struct {
	Resolver    *identity.Resolver
	Sessions    *session.Manager
	Leaderboard *leaderboard.Service
	Directory   *directory.Service
	Feed        *feed.Service
	Avatars     *services.CloudinaryService // nil when cloudinary is not configured
}

func New(
	resolver *identity.Resolver,
	sessions *session.Manager,
	lb *leaderboard.Service,
	dir *directory.Service,
	fd *feed.Service,
	avatars *services.CloudinaryService,
) *Handler {
	return &Handler{
		Resolver:    resolver,
		Sessions:    sessions,
		Leaderboard: lb,
		Directory:   dir,
		Feed:        fd,
		Avatars:     avatars,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.Message(w, "ok")
}

// respondError maps the service error taxonomy onto HTTP status codes.
// Validation and conflict errors render as field-level errors; network and
// backend failures render as generic alerts the client can retry.
func respondError(w http.ResponseWriter, err error) {
	var validationErr *identity.ValidationError
	var queryErr *store.QueryError
	var netErr *store.NetworkError
	var backendErr *store.BackendError

	switch {
	case errors.As(err, &validationErr):
		utils.FieldError(w, http.StatusBadRequest, validationErr.Field, validationErr.Reason)
	case errors.Is(err, identity.ErrUsernameTaken):
		utils.FieldError(w, http.StatusConflict, "username", identity.ErrUsernameTaken.Error())
	case errors.Is(err, identity.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, identity.ErrInvalidCredentials.Error())
	case errors.Is(err, session.ErrUnknownSession):
		utils.Error(w, http.StatusUnauthorized, "invalid or expired session")
	case errors.Is(err, store.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, leaderboard.ErrUnknownPeriod):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &queryErr):
		utils.Error(w, http.StatusBadRequest, queryErr.Error())
	case errors.As(err, &netErr):
		logger.Error("store unreachable: %v", netErr)
		utils.Error(w, http.StatusBadGateway, "service temporarily unavailable")
	case errors.As(err, &backendErr):
		logger.Error("store rejected operation: %v", backendErr)
		utils.Error(w, http.StatusInternalServerError, "internal error")
	default:
		logger.Error("unhandled error: %v", err)
		utils.Error(w, http.StatusInternalServerError, "internal error")
	}
}
