// Package proxy assembles the bridge's HTTP boundary.
package proxy

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/pysugar/atlassian-bridge/internal/auth/token"
	"github.com/pysugar/atlassian-bridge/internal/config"
	"github.com/pysugar/atlassian-bridge/internal/db"
	"github.com/pysugar/atlassian-bridge/internal/proxy/handlers"
	"github.com/pysugar/atlassian-bridge/internal/proxy/middleware"
	"github.com/pysugar/atlassian-bridge/internal/upstream"
)

// NewRouter wires every boundary operation. The feature flag gates all
// routes except the OAuth callback and the admin listing; those stay
// reachable so an in-flight authorization can complete and operators can
// inspect state while the integration is switched off.
func NewRouter(cfg *config.Config, database *gorm.DB) chi.Router {
	store := db.NewConnectionStore(database)
	client := upstream.NewClient(cfg)
	mgr := token.NewManager(store, client)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequireUser)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireEnabled(cfg))

		r.Get("/connection/status", handlers.StatusHandler(store, mgr, client))
		r.Delete("/connection", handlers.DisconnectHandler(store))
		r.Get("/sites", handlers.SitesHandler(mgr, client))

		r.Get("/confluence/{siteId}/spaces", handlers.SpacesHandler(mgr, client))
		r.Post("/search/jira", handlers.JiraSearchHandler(mgr, client))
		r.Post("/search/confluence", handlers.ConfluenceSearchHandler(mgr, client))
		r.Get("/jira/{siteId}/issue/{issueKey}", handlers.JiraIssueHandler(mgr, client))
		r.Get("/confluence/{siteId}/content/{contentId}", handlers.ConfluenceContentHandler(mgr, client))

		r.With(middleware.RequireAdmin).Delete("/admin/connections/{userId}", handlers.AdminDeleteHandler(store))
	})

	r.Post("/connection/callback", handlers.CallbackHandler(store, client))
	r.With(middleware.RequireAdmin).Get("/admin/connections", handlers.AdminConnectionsHandler(store))

	return r
}
