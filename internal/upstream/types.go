package upstream

import (
	"errors"
	"fmt"
)

// TokenBundle is what the Atlassian token endpoint hands back on a
// successful exchange or refresh.
type TokenBundle struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until expiry
	Scope        string
}

// SiteInfo describes one Atlassian cloud site reachable under a token.
// Rebuilt on every discovery call, never persisted.
type SiteInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	URL       string   `json:"url"`
	Scopes    []string `json:"scopes"`
	AvatarURL string   `json:"avatar_url,omitempty"`
}

// Sentinel results for authenticated passthrough calls.
var (
	ErrForbidden = errors.New("atlassian: forbidden")
	ErrNotFound  = errors.New("atlassian: not found")
)

// RejectedError means the token endpoint answered and said no: expired or
// revoked grant, bad client credentials. Terminal for the stored connection.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("atlassian token endpoint rejected request (status %d): %s", e.Status, e.Detail)
}

// UpstreamError carries a non-200 status from an authenticated API call so
// the boundary can pass it through unchanged.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("atlassian upstream error: status %d", e.Status)
}
