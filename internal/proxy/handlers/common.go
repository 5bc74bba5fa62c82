// Package handlers translates boundary operations into token manager and
// upstream client calls. Atlassian response bodies pass through untouched;
// only status codes are translated.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/pysugar/atlassian-bridge/internal/auth/token"
	"github.com/pysugar/atlassian-bridge/internal/logging"
	"github.com/pysugar/atlassian-bridge/internal/upstream"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeRaw forwards an Atlassian body byte-for-byte.
func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeNoAccess is the soft 403 translation for search and listing
// endpoints: missing a product license is expected, not an error.
func writeNoAccess(w http.ResponseWriter, product string) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": []interface{}{},
		"error":   "no_access",
		"message": "You don't have access to " + product + " on this site.",
	})
}

// resolveToken runs the lifecycle manager and writes the boundary response
// for every failure mode. Returns ("", false) when the response was already
// written.
func resolveToken(w http.ResponseWriter, r *http.Request, mgr *token.Manager, userID string) (string, bool) {
	accessToken, err := mgr.EnsureFresh(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrNoConnection), errors.Is(err, token.ErrRefreshFailed):
			// An exhausted lifecycle is an expected end state, reported
			// as disconnected rather than as a failure.
			writeDetail(w, http.StatusNotFound, "No Atlassian connection found")
		default:
			log.Printf("❌ [%s] Token refresh error for user %s: %v", logging.GetRequestID(r.Context()), userID, err)
			writeDetail(w, http.StatusInternalServerError, "Failed to reach Atlassian")
		}
		return "", false
	}
	return accessToken, true
}

// writeUpstreamError maps a hard passthrough failure onto the boundary,
// preserving the original status where there is one.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	var upErr *upstream.UpstreamError
	switch {
	case errors.Is(err, upstream.ErrForbidden):
		writeDetail(w, http.StatusForbidden, detail)
	case errors.Is(err, upstream.ErrNotFound):
		writeDetail(w, http.StatusNotFound, detail)
	case errors.As(err, &upErr):
		writeDetail(w, upErr.Status, detail)
	default:
		// Transport-level failure. The cause stays in the logs.
		log.Printf("❌ [%s] %s: %v", logging.GetRequestID(r.Context()), detail, err)
		writeDetail(w, http.StatusInternalServerError, detail)
	}
}
