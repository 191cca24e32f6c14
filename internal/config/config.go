// Package config loads tourneyprobe configuration from YAML with
// environment-variable overrides. Credentials (the pre-issued user token
// and the admin secret) are never read from the config file; they come
// from the environment only, because token issuance belongs to an external
// login service that the harness does not model.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	probeErrors "github.com/arenalab/tourneyprobe/internal/errors"
)

// Default path constants
const (
	DefaultConfigDir = "~/.config/tourneyprobe"
	DefaultDataDir   = "~/.local/share/tourneyprobe"
	ConfigFileName   = "config.yaml"
)

// Environment variable names.
const (
	EnvBaseURL     = "TOURNEYPROBE_BASE_URL"
	EnvWSURL       = "TOURNEYPROBE_WS_URL"
	EnvAuthToken   = "TOURNEYPROBE_AUTH_TOKEN"
	EnvAdminSecret = "TOURNEYPROBE_ADMIN_SECRET"
)

// Default values.
const (
	DefaultBaseURL     = "http://localhost:8787/api"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultWSTimeout   = 10 * time.Second
)

// Visibility holds the poll-until-visible settings used after mutating
// calls to wait out eventual-consistency lag in the backing store.
type Visibility struct {
	// InitialInterval is the first poll interval.
	InitialInterval time.Duration
	// MaxInterval caps the backoff growth.
	MaxInterval time.Duration
	// MaxAttempts bounds the poll loop.
	MaxAttempts int
	// FallbackDelay is used after writes that have no read endpoint to poll.
	FallbackDelay time.Duration
}

// DefaultVisibility returns the default visibility settings.
func DefaultVisibility() Visibility {
	return Visibility{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxAttempts:     10,
		FallbackDelay:   300 * time.Millisecond,
	}
}

// Config represents tourneyprobe configuration.
type Config struct {
	// BaseURL is the REST base, e.g. http://localhost:8787/api.
	BaseURL string
	// WSURL is the WebSocket endpoint. Derived from BaseURL when empty.
	WSURL string
	// AuthToken is the pre-issued end-user session token (cookie auth_token).
	AuthToken string
	// AdminSecret is the shared admin secret (header X-Admin-Secret).
	AdminSecret string

	HTTPTimeout time.Duration
	WSTimeout   time.Duration
	Visibility  Visibility

	// DataDir holds run state and transcripts.
	DataDir string
}

// fileConfig is the on-disk YAML shape. Durations are strings so users can
// write "30s" or "500ms".
type fileConfig struct {
	BaseURL     string `yaml:"base_url,omitempty"`
	WSURL       string `yaml:"ws_url,omitempty"`
	HTTPTimeout string `yaml:"http_timeout,omitempty"`
	WSTimeout   string `yaml:"ws_timeout,omitempty"`
	DataDir     string `yaml:"data_dir,omitempty"`
	Visibility  struct {
		InitialInterval string `yaml:"initial_interval,omitempty"`
		MaxInterval     string `yaml:"max_interval,omitempty"`
		MaxAttempts     int    `yaml:"max_attempts,omitempty"`
		FallbackDelay   string `yaml:"fallback_delay,omitempty"`
	} `yaml:"visibility,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		HTTPTimeout: DefaultHTTPTimeout,
		WSTimeout:   DefaultWSTimeout,
		Visibility:  DefaultVisibility(),
		DataDir:     DefaultDataDir,
	}
}

// LoadConfig loads configuration from the config directory, applies
// environment overrides, and derives the WebSocket URL when unset.
// Returns the default config if config.yaml doesn't exist.
func LoadConfig(configDir string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := filepath.Join(ExpandHome(configDir), ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, probeErrors.Wrap(probeErrors.CategoryConfig, "failed to read config file", err).
				WithDetail("path", configPath)
		}
	} else {
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, &probeErrors.Error{
				Category: probeErrors.CategoryConfig,
				Code:     probeErrors.CodeConfigParse,
				Message:  fmt.Sprintf("failed to parse %s", configPath),
				Cause:    err,
			}
		}
		if err := cfg.merge(&fc); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.WSURL == "" {
		ws, err := DeriveWSURL(cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		cfg.WSURL = ws
	}

	return cfg, nil
}

// merge applies non-empty file values onto the config.
func (c *Config) merge(fc *fileConfig) error {
	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.WSURL != "" {
		c.WSURL = fc.WSURL
	}
	if fc.DataDir != "" {
		c.DataDir = fc.DataDir
	}

	durations := []struct {
		field string
		raw   string
		dst   *time.Duration
	}{
		{"http_timeout", fc.HTTPTimeout, &c.HTTPTimeout},
		{"ws_timeout", fc.WSTimeout, &c.WSTimeout},
		{"visibility.initial_interval", fc.Visibility.InitialInterval, &c.Visibility.InitialInterval},
		{"visibility.max_interval", fc.Visibility.MaxInterval, &c.Visibility.MaxInterval},
		{"visibility.fallback_delay", fc.Visibility.FallbackDelay, &c.Visibility.FallbackDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return &probeErrors.Error{
				Category: probeErrors.CategoryConfig,
				Code:     probeErrors.CodeConfigInvalid,
				Message:  fmt.Sprintf("invalid duration for %s: %q", d.field, d.raw),
				Cause:    err,
			}
		}
		*d.dst = parsed
	}

	if fc.Visibility.MaxAttempts > 0 {
		c.Visibility.MaxAttempts = fc.Visibility.MaxAttempts
	}
	return nil
}

// applyEnv applies environment-variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvWSURL); v != "" {
		c.WSURL = v
	}
	c.AuthToken = os.Getenv(EnvAuthToken)
	c.AdminSecret = os.Getenv(EnvAdminSecret)
}

// Validate checks that the config is usable for a full run, which needs
// both credential scopes. plan does not call this.
func (c *Config) Validate() error {
	if err := c.ValidateAdmin(); err != nil {
		return err
	}
	if c.AuthToken == "" {
		return (&probeErrors.Error{
			Category: probeErrors.CategoryConfig,
			Code:     probeErrors.CodeMissingCredential,
			Message:  "user auth token is not set",
		}).WithHint(fmt.Sprintf("export %s with a token issued by the login service", EnvAuthToken))
	}
	return nil
}

// ValidateAdmin checks the config for admin-scope use only. cleanup issues
// nothing but admin DELETEs, so it must work after the user token has been
// rotated away.
func (c *Config) ValidateAdmin() error {
	if _, err := url.Parse(c.BaseURL); err != nil {
		return &probeErrors.Error{
			Category: probeErrors.CategoryConfig,
			Code:     probeErrors.CodeConfigInvalid,
			Message:  fmt.Sprintf("invalid base URL %q", c.BaseURL),
			Cause:    err,
		}
	}
	if c.AdminSecret == "" {
		return (&probeErrors.Error{
			Category: probeErrors.CategoryConfig,
			Code:     probeErrors.CodeMissingCredential,
			Message:  "admin secret is not set",
		}).WithHint(fmt.Sprintf("export %s with the shared admin secret", EnvAdminSecret))
	}
	return nil
}

// DeriveWSURL derives the WebSocket connect endpoint from the REST base URL:
// http://host/api -> ws://host/api/users/connect.
func DeriveWSURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", &probeErrors.Error{
			Category: probeErrors.CategoryConfig,
			Code:     probeErrors.CodeConfigInvalid,
			Message:  fmt.Sprintf("invalid base URL %q", baseURL),
			Cause:    err,
		}
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/users/connect"
	return u.String(), nil
}

// ExpandHome expands a leading ~ in a path to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}
