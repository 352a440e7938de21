// Package api implements the ScholarSync REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/starford/scholarsync/internal/auth"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(token string) (int64, error)
}

// AuthMiddleware requires a valid "Authorization: Bearer <jwt>" header and
// stores the token's user id in the request context.
func AuthMiddleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			userID, err := a.Authenticate(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// WebhookMiddleware checks the shared X-Webhook-Token header. An empty
// token disables the webhook entirely.
func WebhookMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeJSON(w, http.StatusNotFound, errorBody("webhook disabled"))
				return
			}
			got := r.Header.Get("X-Webhook-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// userID returns the authenticated user. Routes behind AuthMiddleware
// always have one.
func userID(r *http.Request) int64 {
	id, _ := auth.UserID(r.Context())
	return id
}
