// Package config loads the bridge configuration from an optional YAML file
// with environment variable overrides. The resulting struct is passed
// explicitly into every component; nothing reads configuration at call time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAuthBaseURL = "https://auth.atlassian.com"
	DefaultAPIBaseURL  = "https://api.atlassian.com"

	defaultDBPath      = "bridge.db"
	defaultHTTPTimeout = 30 * time.Second
)

// Config holds everything the bridge needs at startup.
type Config struct {
	// Enabled is the integration feature flag. When false the boundary
	// answers 503 for every gated operation.
	Enabled bool `yaml:"enabled"`

	// OAuth client credentials issued by the Atlassian developer console.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`

	// AuthBaseURL and APIBaseURL default to the Atlassian cloud endpoints.
	// Overridable so tests can point the gateway at a local server.
	AuthBaseURL string `yaml:"auth_base_url"`
	APIBaseURL  string `yaml:"api_base_url"`

	DBPath string `yaml:"db_path"`

	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// HTTPTimeout bounds every outbound call to Atlassian.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// Load reads the YAML file at path (skipped if path is empty or the file does
// not exist), applies environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		AuthBaseURL: DefaultAuthBaseURL,
		APIBaseURL:  DefaultAPIBaseURL,
		DBPath:      defaultDBPath,
		Host:        "127.0.0.1",
		Port:        "8087",
		HTTPTimeout: defaultHTTPTimeout,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	return cfg, nil
}

// LoadDefault loads from BRIDGE_CONFIG or the conventional bridge.yaml.
func LoadDefault() (*Config, error) {
	path := os.Getenv("BRIDGE_CONFIG")
	if path == "" {
		path = "bridge.yaml"
	}
	return Load(path)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ENABLE_ATLASSIAN_INTEGRATION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("ATLASSIAN_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("ATLASSIAN_CLIENT_SECRET"); v != "" {
		cfg.ClientSecret = v
	}
	if v := os.Getenv("ATLASSIAN_REDIRECT_URI"); v != "" {
		cfg.RedirectURI = v
	}
	if v := os.Getenv("ATLASSIAN_AUTH_BASE_URL"); v != "" {
		cfg.AuthBaseURL = v
	}
	if v := os.Getenv("ATLASSIAN_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("BRIDGE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Validate checks that the OAuth credentials are present when the
// integration is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("atlassian client credentials are required when the integration is enabled")
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("atlassian redirect URI is required when the integration is enabled")
	}
	return nil
}
