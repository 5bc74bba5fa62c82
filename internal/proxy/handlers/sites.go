package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pysugar/atlassian-bridge/internal/auth/token"
	"github.com/pysugar/atlassian-bridge/internal/proxy/middleware"
	"github.com/pysugar/atlassian-bridge/internal/upstream"
)

// SitesHandler lists the cloud sites the caller's token can reach. Unlike
// the status endpoint, a discovery failure here is surfaced, not silently
// flattened to an empty list.
func SitesHandler(mgr *token.Manager, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		accessToken, ok := resolveToken(w, r, mgr, userID)
		if !ok {
			return
		}

		sites, err := client.AccessibleSites(r.Context(), accessToken)
		if err != nil {
			writeUpstreamError(w, r, err, "Failed to list Atlassian sites")
			return
		}
		writeJSON(w, http.StatusOK, sites)
	}
}

// SpacesHandler lists Confluence spaces for one site. A 403 means the user
// has no Confluence license there and is reported as a soft empty result.
func SpacesHandler(mgr *token.Manager, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		siteID := chi.URLParam(r, "siteId")

		accessToken, ok := resolveToken(w, r, mgr, userID)
		if !ok {
			return
		}

		if !siteAccessible(r.Context(), client, accessToken, siteID) {
			writeDetail(w, http.StatusNotFound, "Site not found")
			return
		}

		body, err := client.Get(r.Context(), accessToken, upstream.ConfluenceSpacesPath(siteID), upstream.ConfluenceSpacesQuery())
		if err != nil {
			if errors.Is(err, upstream.ErrForbidden) {
				writeNoAccess(w, "Confluence")
				return
			}
			writeUpstreamError(w, r, err, "Failed to get Confluence spaces")
			return
		}
		writeRaw(w, body)
	}
}
