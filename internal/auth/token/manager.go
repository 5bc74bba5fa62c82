// Package token implements the connection token lifecycle: decide whether a
// stored access token is still usable, refresh it inline when it is not, and
// retire the connection when the grant itself is dead.
package token

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pysugar/atlassian-bridge/internal/db"
	"github.com/pysugar/atlassian-bridge/internal/upstream"
	"github.com/pysugar/atlassian-bridge/internal/util"
)

var (
	// ErrNoConnection means the user has no active connection at all.
	ErrNoConnection = errors.New("no active atlassian connection")

	// ErrRefreshFailed means the provider rejected the refresh grant and
	// the connection has been deactivated. The user must re-authorize.
	ErrRefreshFailed = errors.New("atlassian token refresh rejected, connection deactivated")
)

// Refresher is the one outbound operation the manager needs. Satisfied by
// *upstream.Client.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*upstream.TokenBundle, error)
}

// Manager decides token freshness per user. Concurrent refresh attempts for
// the same user collapse into a single token-endpoint call; Atlassian
// refresh tokens are single-use, so independent concurrent exchanges would
// invalidate each other.
type Manager struct {
	store     *db.ConnectionStore
	refresher Refresher
	group     singleflight.Group
	now       func() time.Time
}

// NewManager creates a token manager over the given store and refresher.
func NewManager(store *db.ConnectionStore, refresher Refresher) *Manager {
	return &Manager{
		store:     store,
		refresher: refresher,
		now:       time.Now,
	}
}

// EnsureFresh returns a usable access token for the user, refreshing and
// persisting it first if the stored one has expired.
//
// Errors: ErrNoConnection when the user never connected (or the connection
// was retired), ErrRefreshFailed when the provider rejected the refresh
// grant (terminal, connection deactivated), anything else is a transient
// failure that leaves the connection untouched.
func (m *Manager) EnsureFresh(ctx context.Context, userID string) (string, error) {
	conn, err := m.store.GetActiveByUserID(userID)
	if err != nil {
		return "", fmt.Errorf("load connection: %w", err)
	}
	if conn == nil {
		return "", ErrNoConnection
	}

	// Fast path: strict inequality, expiry instant itself counts as expired.
	if m.now().Before(conn.TokenExpiresAt) {
		return conn.AccessToken, nil
	}

	v, err, _ := m.group.Do(userID, func() (interface{}, error) {
		return m.refresh(ctx, userID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) refresh(ctx context.Context, userID string) (interface{}, error) {
	// Re-read inside the flight: a request we coalesced behind may have
	// refreshed already, or the connection may be gone.
	conn, err := m.store.GetActiveByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("load connection: %w", err)
	}
	if conn == nil {
		return nil, ErrNoConnection
	}
	if m.now().Before(conn.TokenExpiresAt) {
		return conn.AccessToken, nil
	}

	bundle, err := m.refresher.Refresh(ctx, conn.RefreshToken)
	if err != nil {
		var rejected *upstream.RejectedError
		if errors.As(err, &rejected) {
			log.Printf("🔒 Refresh rejected for user %s, deactivating connection: %v", userID, rejected)
			if _, derr := m.store.Deactivate(userID); derr != nil {
				log.Printf("⚠️ Failed to deactivate connection for user %s: %v", userID, derr)
			}
			return nil, ErrRefreshFailed
		}
		// Transient failure: the grant may still be good, keep the
		// connection active and let the caller try again.
		log.Printf("⏳ Transient refresh failure for user %s: %v", userID, err)
		return nil, fmt.Errorf("refresh atlassian token: %w", err)
	}

	expiresAt := m.now().Add(time.Duration(bundle.ExpiresIn) * time.Second)
	if _, err := m.store.UpdateTokens(userID, bundle.AccessToken, bundle.RefreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}

	log.Printf("✅ Refreshed token %s for user %s (expires %s)", util.MaskToken(bundle.AccessToken), userID, expiresAt.Format(time.RFC3339))
	return bundle.AccessToken, nil
}
