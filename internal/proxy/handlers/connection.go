package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pysugar/atlassian-bridge/internal/auth/token"
	"github.com/pysugar/atlassian-bridge/internal/db"
	"github.com/pysugar/atlassian-bridge/internal/db/models"
	"github.com/pysugar/atlassian-bridge/internal/logging"
	"github.com/pysugar/atlassian-bridge/internal/proxy/middleware"
	"github.com/pysugar/atlassian-bridge/internal/upstream"
)

// ConnectionStatus is the /connection/status response shape.
type ConnectionStatus struct {
	Connected      bool                   `json:"connected"`
	Sites          []upstream.SiteInfo    `json:"sites"`
	ConnectionInfo *models.ConnectionView `json:"connection_info,omitempty"`
}

// CallbackRequest carries the authorization-code exchange parameters. The
// host application validates the CSRF state before calling the bridge; the
// bridge only checks it is present.
type CallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// StatusHandler reports the caller's connection plus the live site list.
// This is the one place an exhausted token lifecycle reads as
// connected=false instead of an error.
func StatusHandler(store *db.ConnectionStore, mgr *token.Manager, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		accessToken, err := mgr.EnsureFresh(r.Context(), userID)
		if err != nil {
			if errors.Is(err, token.ErrNoConnection) || errors.Is(err, token.ErrRefreshFailed) {
				writeJSON(w, http.StatusOK, ConnectionStatus{Connected: false, Sites: []upstream.SiteInfo{}})
				return
			}
			log.Printf("❌ [%s] Status refresh error for user %s: %v", logging.GetRequestID(r.Context()), userID, err)
			writeDetail(w, http.StatusInternalServerError, "Failed to reach Atlassian")
			return
		}

		conn, err := store.GetActiveByUserID(userID)
		if err != nil || conn == nil {
			writeJSON(w, http.StatusOK, ConnectionStatus{Connected: false, Sites: []upstream.SiteInfo{}})
			return
		}

		// Status stays useful when discovery is down: degrade to an empty
		// site list but keep reporting the connection itself.
		sites, err := client.AccessibleSites(r.Context(), accessToken)
		if err != nil {
			log.Printf("⚠️ [%s] Site discovery failed for user %s: %v", logging.GetRequestID(r.Context()), userID, err)
			sites = []upstream.SiteInfo{}
		}

		view := conn.View()
		writeJSON(w, http.StatusOK, ConnectionStatus{
			Connected:      true,
			Sites:          sites,
			ConnectionInfo: &view,
		})
	}
}

// CallbackHandler completes the authorization-code exchange and persists the
// resulting connection, retiring any previous one for the same user.
func CallbackHandler(store *db.ConnectionStore, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req CallbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.State == "" {
			writeDetail(w, http.StatusBadRequest, "code and state are required")
			return
		}

		bundle, err := client.ExchangeCode(r.Context(), req.Code)
		if err != nil {
			var rejected *upstream.RejectedError
			if errors.As(err, &rejected) {
				writeDetail(w, http.StatusBadRequest, "Failed to exchange code for token")
				return
			}
			log.Printf("❌ [%s] Code exchange failed for user %s: %v", logging.GetRequestID(r.Context()), userID, err)
			writeDetail(w, http.StatusInternalServerError, "Failed to establish Atlassian connection")
			return
		}

		accountID, err := client.CurrentUser(r.Context(), bundle.AccessToken)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Failed to get user info from Atlassian")
			return
		}

		conn, err := store.Create(db.CreateParams{
			UserID:             userID,
			AtlassianAccountID: accountID,
			AccessToken:        bundle.AccessToken,
			RefreshToken:       bundle.RefreshToken,
			TokenExpiresAt:     time.Now().Add(time.Duration(bundle.ExpiresIn) * time.Second),
			Scopes:             bundle.Scope,
		})
		if err != nil {
			log.Printf("❌ [%s] Failed to store connection for user %s: %v", logging.GetRequestID(r.Context()), userID, err)
			writeDetail(w, http.StatusInternalServerError, "Failed to establish Atlassian connection")
			return
		}

		log.Printf("🔗 User %s connected Atlassian account %s", userID, accountID)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"detail":     "Atlassian connection established successfully",
			"connection": conn.View(),
		})
	}
}

// DisconnectHandler deactivates the caller's connection. The row survives as
// history; only the active flag flips.
func DisconnectHandler(store *db.ConnectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		ok, err := store.Deactivate(userID)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to disconnect Atlassian connection")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "No active Atlassian connection found")
			return
		}
		writeDetail(w, http.StatusOK, "Atlassian connection disconnected successfully")
	}
}

// siteAccessible reports whether siteID is among the token's accessible
// sites. Fails closed: a discovery error reads as not accessible.
func siteAccessible(ctx context.Context, client *upstream.Client, accessToken, siteID string) bool {
	sites, err := client.AccessibleSites(ctx, accessToken)
	if err != nil {
		return false
	}
	for _, s := range sites {
		if s.ID == siteID {
			return true
		}
	}
	return false
}
