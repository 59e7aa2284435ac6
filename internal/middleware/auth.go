package middleware

import (
	"context"
	"net/http"

	"boykot-backend/internal/session"
	"boykot-backend/internal/utils"
)

type contextKey string

const (
	userContextKey  = contextKey("userID")
	tokenContextKey = contextKey("token")
)

// Auth validates the session token on protected routes and injects the
// session's user id into the request context. Anonymous (unclaimed) sessions
// pass: an identity obtained from Begin is write-capable by design.
type Auth struct {
	Sessions *session.Manager
}

func NewAuth(sessions *session.Manager) *Auth {
	return &Auth{Sessions: sessions}
}

func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := utils.BearerToken(r)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		sess, err := a.Sessions.Resolve(r.Context(), token)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, sess.UserID)
		ctx = context.WithValue(ctx, tokenContextKey, sess.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user's id.
func UserIDFromContext(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(userContextKey).(string)
	return id, ok
}

// TokenFromContext returns the validated session token.
func TokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}
