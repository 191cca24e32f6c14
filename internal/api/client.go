// Package api is the HTTP client for the tournament-management API under
// test. Calls are issued exactly once; there is no retry or backoff at this
// layer. Two credential scopes exist: end-user calls carry the pre-issued
// session token as an auth_token cookie, admin calls carry the shared
// secret in the X-Admin-Secret header.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arenalab/tourneyprobe/internal/config"
	probeErrors "github.com/arenalab/tourneyprobe/internal/errors"
)

// Scope selects the credential attached to a request.
type Scope int

const (
	// ScopeUser authenticates as the token-bound end-user identity.
	ScopeUser Scope = iota
	// ScopeAdmin authenticates with the shared admin secret.
	ScopeAdmin
)

const authCookieName = "auth_token"
const adminSecretHeader = "X-Admin-Secret"

// Client issues requests against the tournament API.
type Client struct {
	baseURL     string
	authToken   string
	adminSecret string
	httpClient  *http.Client
}

// NewClient creates a Client from the given config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		authToken:   cfg.AuthToken,
		adminSecret: cfg.AdminSecret,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// NewClientWithHTTPClient creates a Client with a caller-supplied http.Client.
func NewClientWithHTTPClient(cfg *config.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		authToken:   cfg.AuthToken,
		adminSecret: cfg.AdminSecret,
		httpClient:  httpClient,
	}
}

// BaseURL returns the REST base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues a single request and wraps the raw response for inspection.
// A transport failure is a NetworkError; any HTTP status is returned to the
// caller for policy decisions (fatal vs. reported) at the fixture/probe layer.
func (c *Client) do(ctx context.Context, scope Scope, method, path string, payload any) (*Response, error) {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	switch scope {
	case ScopeAdmin:
		req.Header.Set(adminSecretHeader, c.adminSecret)
	case ScopeUser:
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: c.authToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, probeErrors.NewNetworkError(url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, probeErrors.NewNetworkError(url, err)
	}

	return NewResponse(method, path, resp.StatusCode, raw), nil
}

// AuthCookieHeader returns the Cookie header value carrying the user token,
// for transports that take raw headers (the WebSocket dial).
func (c *Client) AuthCookieHeader() string {
	return authCookieName + "=" + c.authToken
}

// nowPlus returns an RFC 3339 timestamp d from now, used for match scheduling.
func nowPlus(d time.Duration) string {
	return time.Now().UTC().Add(d).Format(time.RFC3339)
}
