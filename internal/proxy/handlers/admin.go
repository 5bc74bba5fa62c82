package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pysugar/atlassian-bridge/internal/db"
	"github.com/pysugar/atlassian-bridge/internal/db/models"
)

// AdminConnectionsHandler lists every active connection, token-free.
func AdminConnectionsHandler(store *db.ConnectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conns, err := store.ListActive()
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to list Atlassian connections")
			return
		}

		views := make([]models.ConnectionView, 0, len(conns))
		for i := range conns {
			views = append(views, conns[i].View())
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// AdminDeleteHandler hard-deletes every connection row for a user, active
// or historical. Distinct from disconnect, which only flips the flag.
func AdminDeleteHandler(store *db.ConnectionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetUserID := chi.URLParam(r, "userId")

		ok, err := store.Delete(targetUserID)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to delete Atlassian connection")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "No Atlassian connection found for user "+targetUserID)
			return
		}

		log.Printf("🗑️ Admin deleted Atlassian connection for user %s", targetUserID)
		writeDetail(w, http.StatusOK, "Atlassian connection for user "+targetUserID+" deleted successfully")
	}
}
