package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pysugar/atlassian-bridge/internal/auth/token"
	"github.com/pysugar/atlassian-bridge/internal/proxy/middleware"
	"github.com/pysugar/atlassian-bridge/internal/upstream"
)

const defaultMaxResults = 10

// JiraSearchRequest is the body for POST /search/jira.
type JiraSearchRequest struct {
	SiteID     string `json:"site_id"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// ConfluenceSearchRequest is the body for POST /search/confluence.
type ConfluenceSearchRequest struct {
	SiteID     string `json:"site_id"`
	Query      string `json:"query"`
	SpaceKey   string `json:"space_key,omitempty"`
	MaxResults int    `json:"max_results"`
}

// JiraSearchHandler runs a keyword search over issues. The raw query string
// becomes a JQL text match ordered by recency.
func JiraSearchHandler(mgr *token.Manager, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req JiraSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SiteID == "" || req.Query == "" {
			writeDetail(w, http.StatusBadRequest, "site_id and query are required")
			return
		}
		if req.MaxResults <= 0 {
			req.MaxResults = defaultMaxResults
		}

		accessToken, ok := resolveToken(w, r, mgr, userID)
		if !ok {
			return
		}

		body, err := client.Get(r.Context(), accessToken,
			upstream.JiraSearchPath(req.SiteID),
			upstream.JiraSearchQuery(req.Query, req.MaxResults))
		if err != nil {
			if errors.Is(err, upstream.ErrForbidden) {
				writeNoAccess(w, "Jira")
				return
			}
			writeUpstreamError(w, r, err, "Failed to search Jira issues")
			return
		}
		writeRaw(w, body)
	}
}

// ConfluenceSearchHandler runs a keyword+title search over wiki content,
// optionally scoped to a single space.
func ConfluenceSearchHandler(mgr *token.Manager, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req ConfluenceSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SiteID == "" || req.Query == "" {
			writeDetail(w, http.StatusBadRequest, "site_id and query are required")
			return
		}
		if req.MaxResults <= 0 {
			req.MaxResults = defaultMaxResults
		}

		accessToken, ok := resolveToken(w, r, mgr, userID)
		if !ok {
			return
		}

		if !siteAccessible(r.Context(), client, accessToken, req.SiteID) {
			writeDetail(w, http.StatusNotFound, "Site not found")
			return
		}

		body, err := client.Get(r.Context(), accessToken,
			upstream.ConfluenceSearchPath(req.SiteID),
			upstream.ConfluenceSearchQuery(req.Query, req.SpaceKey, req.MaxResults))
		if err != nil {
			if errors.Is(err, upstream.ErrForbidden) {
				writeNoAccess(w, "Confluence")
				return
			}
			writeUpstreamError(w, r, err, "Failed to search Confluence pages")
			return
		}
		writeRaw(w, body)
	}
}
