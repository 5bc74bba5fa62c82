package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pysugar/atlassian-bridge/internal/auth/token"
	"github.com/pysugar/atlassian-bridge/internal/proxy/middleware"
	"github.com/pysugar/atlassian-bridge/internal/upstream"
)

// JiraIssueHandler fetches one issue with full expansion. Single-item
// fetches translate a 403 into a hard error, unlike the search endpoints.
func JiraIssueHandler(mgr *token.Manager, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		siteID := chi.URLParam(r, "siteId")
		issueKey := chi.URLParam(r, "issueKey")

		accessToken, ok := resolveToken(w, r, mgr, userID)
		if !ok {
			return
		}

		body, err := client.Get(r.Context(), accessToken,
			upstream.JiraIssuePath(siteID, issueKey), upstream.JiraIssueQuery())
		if err != nil {
			writeUpstreamError(w, r, err, "Failed to fetch Jira issue")
			return
		}
		writeRaw(w, body)
	}
}

// ConfluenceContentHandler fetches one content item with body, space and
// version expanded.
func ConfluenceContentHandler(mgr *token.Manager, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		siteID := chi.URLParam(r, "siteId")
		contentID := chi.URLParam(r, "contentId")

		accessToken, ok := resolveToken(w, r, mgr, userID)
		if !ok {
			return
		}

		if !siteAccessible(r.Context(), client, accessToken, siteID) {
			writeDetail(w, http.StatusNotFound, "Site not found")
			return
		}

		body, err := client.Get(r.Context(), accessToken,
			upstream.ConfluenceContentPath(siteID, contentID), upstream.ConfluenceContentQuery())
		if err != nil {
			writeUpstreamError(w, r, err, "Failed to fetch Confluence content")
			return
		}
		writeRaw(w, body)
	}
}
