package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pysugar/atlassian-bridge/internal/db/models"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *ConnectionStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Connection{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewConnectionStore(db)
}

func createParams(userID string) CreateParams {
	return CreateParams{
		UserID:             userID,
		AtlassianAccountID: "acct-" + userID,
		AccessToken:        "access-1",
		RefreshToken:       "refresh-1",
		TokenExpiresAt:     time.Now().Add(time.Hour),
		Scopes:             "read:jira-work read:me",
	}
}

func TestCreate_DeactivatesPriorConnections(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Create(createParams("u1"))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := store.Create(createParams("u1"))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct rows for repeated connects")
	}

	var active []models.Connection
	if err := store.db.Where("user_id = ? AND is_active = ?", "u1", true).Find(&active).Error; err != nil {
		t.Fatalf("query active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected exactly one active connection, got %d", len(active))
	}
	if active[0].ID != second.ID {
		t.Fatalf("expected newest connection to be the active one")
	}

	// The deactivated row survives as history.
	var total int64
	store.db.Model(&models.Connection{}).Where("user_id = ?", "u1").Count(&total)
	if total != 2 {
		t.Fatalf("expected 2 rows including history, got %d", total)
	}
}

func TestGetActiveByUserID_NoneReturnsNil(t *testing.T) {
	store := newTestStore(t)
	conn, err := store.GetActiveByUserID("nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn != nil {
		t.Fatalf("expected nil connection, got %+v", conn)
	}
}

func TestUpdateTokens_RewritesAllThreeFields(t *testing.T) {
	store := newTestStore(t)
	created, err := store.Create(createParams("u1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newExpiry := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	updated, err := store.UpdateTokens("u1", "access-2", "refresh-2", newExpiry)
	if err != nil {
		t.Fatalf("update tokens: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated connection, got nil")
	}
	if updated.AccessToken != "access-2" || updated.RefreshToken != "refresh-2" {
		t.Fatalf("tokens not updated: %+v", updated)
	}
	if !updated.TokenExpiresAt.Equal(newExpiry) {
		t.Fatalf("expiry not updated: got %v want %v", updated.TokenExpiresAt, newExpiry)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatal("updated_at went backwards")
	}
	if !updated.IsActive {
		t.Fatal("refresh must not deactivate the connection")
	}
}

func TestUpdateTokens_NoActiveConnection(t *testing.T) {
	store := newTestStore(t)
	updated, err := store.UpdateTokens("ghost", "a", "r", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != nil {
		t.Fatalf("expected nil for missing connection, got %+v", updated)
	}
}

func TestDeactivate_KeepsRowAndIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create(createParams("u1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := store.Deactivate("u1")
	if err != nil || !ok {
		t.Fatalf("first deactivate: ok=%v err=%v", ok, err)
	}

	// Row still exists, lookup-active finds nothing.
	conn, err := store.GetActiveByUserID("u1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if conn != nil {
		t.Fatalf("expected no active connection after deactivate")
	}
	var total int64
	store.db.Model(&models.Connection{}).Where("user_id = ?", "u1").Count(&total)
	if total != 1 {
		t.Fatalf("deactivate must never delete, got %d rows", total)
	}

	// Second deactivate reports nothing to do.
	ok, err = store.Deactivate("u1")
	if err != nil {
		t.Fatalf("second deactivate: %v", err)
	}
	if ok {
		t.Fatal("expected second deactivate to report no active connection")
	}
}

func TestDelete_RemovesAllRowsIncludingHistory(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create(createParams("u1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(createParams("u1")); err != nil {
		t.Fatalf("recreate: %v", err)
	}

	ok, err := store.Delete("u1")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}

	var total int64
	store.db.Model(&models.Connection{}).Where("user_id = ?", "u1").Count(&total)
	if total != 0 {
		t.Fatalf("expected zero rows after hard delete, got %d", total)
	}

	ok, err = store.Delete("u1")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if ok {
		t.Fatal("expected second delete to report nothing removed")
	}
}

func TestListActive_SkipsDeactivated(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create(createParams("u1")); err != nil {
		t.Fatalf("create u1: %v", err)
	}
	if _, err := store.Create(createParams("u2")); err != nil {
		t.Fatalf("create u2: %v", err)
	}
	if _, err := store.Deactivate("u2"); err != nil {
		t.Fatalf("deactivate u2: %v", err)
	}

	conns, err := store.ListActive()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(conns) != 1 || conns[0].UserID != "u1" {
		t.Fatalf("expected only u1 active, got %+v", conns)
	}
}
