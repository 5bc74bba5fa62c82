// Package upstream is the outbound side of the bridge: token exchanges
// against auth.atlassian.com and authenticated passthrough calls against
// api.atlassian.com. Stateless; no retries — failures surface immediately.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	auth "github.com/pysugar/atlassian-bridge/internal/auth/atlassian"
	"github.com/pysugar/atlassian-bridge/internal/config"
	"github.com/pysugar/atlassian-bridge/internal/util"
)

// Client handles communication with the Atlassian cloud APIs.
type Client struct {
	apiBaseURL  string
	oauthConfig *oauth2.Config
	httpClient  *http.Client
}

// NewClient creates an upstream client from the bridge configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiBaseURL:  cfg.APIBaseURL,
		oauthConfig: auth.OAuthConfig(cfg),
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// ExchangeCode trades an authorization code for a token bundle.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenBundle, error) {
	tok, err := c.oauthConfig.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, mapTokenEndpointError(err)
	}
	return bundleFromToken(tok), nil
}

// Refresh trades a refresh token for a new token bundle. A *RejectedError
// means the grant is dead; anything else is a transport-level failure and
// the stored credential may still be good.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenBundle, error) {
	src := c.oauthConfig.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, mapTokenEndpointError(err)
	}
	return bundleFromToken(tok), nil
}

// Do performs an authenticated passthrough call against the Atlassian API
// gateway and maps the outcome to the bridge's result vocabulary:
// body on 200, ErrForbidden on 403, ErrNotFound on 404, *UpstreamError on
// any other status, wrapped transport error otherwise.
func (c *Client) Do(ctx context.Context, method, accessToken, path string, query url.Values) (json.RawMessage, error) {
	u := c.apiBaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build atlassian request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("atlassian request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read atlassian response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return json.RawMessage(body), nil
	case http.StatusForbidden:
		return nil, ErrForbidden
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, &UpstreamError{Status: resp.StatusCode}
	}
}

// Get is Do with GET, which covers every passthrough call Atlassian exposes
// to the bridge.
func (c *Client) Get(ctx context.Context, accessToken, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, accessToken, path, query)
}

// CurrentUser fetches the account id of the token's owner via /me.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (string, error) {
	body, err := c.Get(ctx, accessToken, "/me", nil)
	if err != nil {
		return "", err
	}
	var me struct {
		AccountID string `json:"account_id"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return "", fmt.Errorf("decode atlassian user info: %w", err)
	}
	if me.AccountID == "" {
		return "", fmt.Errorf("atlassian user info missing account_id")
	}
	return me.AccountID, nil
}

// AccessibleSites lists the cloud sites the token can reach. The error is
// surfaced so callers can decide whether to degrade to an empty list.
func (c *Client) AccessibleSites(ctx context.Context, accessToken string) ([]SiteInfo, error) {
	body, err := c.Get(ctx, accessToken, "/oauth/token/accessible-resources", nil)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		URL       string   `json:"url"`
		Scopes    []string `json:"scopes"`
		AvatarURL string   `json:"avatarUrl"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode accessible resources: %w", err)
	}

	sites := make([]SiteInfo, 0, len(raw))
	for _, r := range raw {
		sites = append(sites, SiteInfo{
			ID:        r.ID,
			Name:      r.Name,
			URL:       r.URL,
			Scopes:    r.Scopes,
			AvatarURL: r.AvatarURL,
		})
	}
	return sites, nil
}

// oauthContext makes x/oauth2 use the client's timeout-bounded HTTP client.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func bundleFromToken(tok *oauth2.Token) *TokenBundle {
	expiresIn := tok.ExpiresIn
	if expiresIn == 0 && !tok.Expiry.IsZero() {
		expiresIn = int64(time.Until(tok.Expiry).Seconds())
	}
	scope, _ := tok.Extra("scope").(string)
	return &TokenBundle{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn,
		Scope:        scope,
	}
}

// mapTokenEndpointError separates "the provider said no" from "we never got
// an answer". Only the former is terminal for a stored connection.
func mapTokenEndpointError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &RejectedError{
			Status: retrieveErr.Response.StatusCode,
			Detail: util.Truncate(string(retrieveErr.Body), 200),
		}
	}
	return fmt.Errorf("atlassian token endpoint unreachable: %w", err)
}
