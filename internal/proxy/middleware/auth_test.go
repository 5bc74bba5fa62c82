package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pysugar/atlassian-bridge/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUser_MissingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sites", nil)

	RequireUser(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireUser_StoresUserIDInContext(t *testing.T) {
	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserID(r.Context())
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sites", nil)
	req.Header.Set(HeaderUserID, "u1")

	RequireUser(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "u1" {
		t.Fatalf("expected user id in context, got %q", gotUser)
	}
}

func TestRequireAdmin(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/connections", nil)
	req.Header.Set(HeaderUserID, "u1")
	req.Header.Set(HeaderUserRole, "member")

	RequireAdmin(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req.Header.Set(HeaderUserRole, RoleAdmin)
	RequireAdmin(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestRequireEnabled(t *testing.T) {
	cfg := &config.Config{Enabled: false}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sites", nil)

	RequireEnabled(cfg)(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while disabled, got %d", rec.Code)
	}

	cfg.Enabled = true
	rec = httptest.NewRecorder()
	RequireEnabled(cfg)(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 while enabled, got %d", rec.Code)
	}
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sites", nil)

	RequestID(okHandler()).ServeHTTP(rec, req)
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatal("expected a generated request id header")
	}

	rec = httptest.NewRecorder()
	req.Header.Set(HeaderRequestID, "req-123")
	RequestID(okHandler()).ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != "req-123" {
		t.Fatalf("expected caller request id echoed, got %q", got)
	}
}
