// Package atlassian holds the OAuth 2.0 (3LO) configuration for Atlassian
// Cloud. Client credentials always arrive through config.Config; nothing in
// this package reads the environment.
package atlassian

import (
	"golang.org/x/oauth2"

	"github.com/pysugar/atlassian-bridge/internal/config"
)

// Scopes requested during authorization. offline_access is what makes
// Atlassian issue a refresh token at all.
var Scopes = []string{
	"offline_access",
	"read:me",
	"read:jira-work",
	"read:confluence-content.all",
	"read:confluence-space.summary",
	"search:confluence",
}

// OAuthConfig builds the oauth2 config for the Atlassian token endpoint.
// Atlassian expects client credentials in the request body, not basic auth.
func OAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthBaseURL + "/authorize",
			TokenURL:  cfg.AuthBaseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
