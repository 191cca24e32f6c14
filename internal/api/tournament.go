package api

import (
	"context"
	"fmt"
	"net/http"
)

// Register registers the token-bound user for a tournament.
// POST /tournaments/{id}/register
// 201 means newly registered; 409 means a registration already exists.
func (c *Client) Register(ctx context.Context, tournamentID int64) (*Response, error) {
	return c.do(ctx, ScopeUser, http.MethodPost, fmt.Sprintf("/tournaments/%d/register", tournamentID), nil)
}

// MyRegistrationStatus reads the token-bound user's registration status.
// GET /tournaments/{id}/my-registration-status
func (c *Client) MyRegistrationStatus(ctx context.Context, tournamentID int64) (*Response, error) {
	return c.do(ctx, ScopeUser, http.MethodGet, fmt.Sprintf("/tournaments/%d/my-registration-status", tournamentID), nil)
}
