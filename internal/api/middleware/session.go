package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rentease/gateway/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// RequireSession rejects requests without a valid bearer token and attaches
// the resolved session to the request context.
func RequireSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Missing bearer token")
				return
			}

			s, ok := manager.GetByToken(token)
			if !ok {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Session expired, sign in again")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by RequireSession.
func SessionFrom(r *http.Request) (session.Session, bool) {
	s, ok := r.Context().Value(sessionKey).(session.Session)
	return s, ok
}

// OptionalSession attaches a session when a valid token is present but lets
// anonymous requests through. Used by the public listing view.
func OptionalSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if s, ok := manager.GetByToken(token); ok {
					ctx := context.WithValue(r.Context(), sessionKey, s)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// The websocket endpoint cannot set headers from the browser.
	return r.URL.Query().Get("token")
}
