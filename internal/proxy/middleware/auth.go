// Package middleware gates the boundary: user identity, admin role, the
// integration feature flag, and request ID propagation. User authentication
// itself happens in the host application; the bridge trusts the identity
// headers the host gateway injects.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pysugar/atlassian-bridge/internal/config"
	"github.com/pysugar/atlassian-bridge/internal/logging"
)

const (
	// HeaderUserID carries the authenticated user's id, set by the host
	// gateway after it has verified the session.
	HeaderUserID = "X-User-ID"

	// HeaderUserRole carries the authenticated user's role.
	HeaderUserRole = "X-User-Role"

	// HeaderRequestID is honored if the caller already assigned one.
	HeaderRequestID = "X-Request-ID"

	// RoleAdmin is the role required for the admin endpoints.
	RoleAdmin = "admin"
)

type contextKey string

const userIDKey contextKey = "userId"

// UserID returns the authenticated user id stored by RequireUser.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestID attaches a request id to the context and echoes it back in the
// response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = logging.GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// RequireUser rejects requests that carry no authenticated user identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// RequireAdmin rejects users without the admin role. Must run after
// RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderUserRole) != RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireEnabled answers 503 uniformly while the integration flag is off.
func RequireEnabled(cfg *config.Config) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				writeError(w, http.StatusServiceUnavailable, "Atlassian integration is not enabled")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
