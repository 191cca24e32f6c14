package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// TournamentPayload is the create-tournament request body.
type TournamentPayload struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// UserPayload is the create-user request body. The identity fields are
// opaque to the harness; they only need to be unique per run.
type UserPayload struct {
	TwitchID              string `json:"twitch_id"`
	TwitchUsername        string `json:"twitch_username"`
	TwitchProfileImageURL string `json:"twitch_profile_image_url"`
}

// RegistrationPayload is the admin create-registration request body.
type RegistrationPayload struct {
	UserID       int64  `json:"user_id"`
	TournamentID int64  `json:"tournament_id"`
	Status       string `json:"status"`
}

// ParticipantPayload is the admin create-participant request body.
type ParticipantPayload struct {
	RegistrationID int64  `json:"registration_id"`
	UserID         int64  `json:"user_id"`
	TournamentID   int64  `json:"tournament_id"`
	Status         string `json:"status"`
}

// MatchPayload is the admin create-match request body.
type MatchPayload struct {
	TournamentID           int64  `json:"tournament_id"`
	Phase                  string `json:"phase"`
	Status                 string `json:"status"`
	PlayerAParticipantID   int64  `json:"player_a_participant_id"`
	PlayerBParticipantID   int64  `json:"player_b_participant_id"`
	ScheduledAt            string `json:"scheduled_at"`
}

// VotePayload is the start-vote request body.
type VotePayload struct {
	PointsAward     int `json:"points_award"`
	CostPerVote     int `json:"cost_per_vote"`
	DurationSeconds int `json:"duration_seconds"`
}

// ConfirmParticipantsPayload is the confirm-participants request body.
type ConfirmParticipantsPayload struct {
	ParticipantIDs []int64 `json:"participantIds"`
}

// NewMatchPayload builds a match payload between two participants,
// scheduled a day out.
func NewMatchPayload(tournamentID, participantA, participantB int64) MatchPayload {
	return MatchPayload{
		TournamentID:         tournamentID,
		Phase:                "LEAGUE",
		Status:               "SCHEDULED",
		PlayerAParticipantID: participantA,
		PlayerBParticipantID: participantB,
		ScheduledAt:          nowPlus(24 * time.Hour),
	}
}

// CreateTournament creates a tournament. POST /admin/tournaments
func (c *Client) CreateTournament(ctx context.Context, payload TournamentPayload) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodPost, "/admin/tournaments", payload)
}

// GetTournament reads a tournament by id. GET /admin/tournaments/{id}
func (c *Client) GetTournament(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodGet, fmt.Sprintf("/admin/tournaments/%d", id), nil)
}

// DeleteTournament deletes a tournament. DELETE /admin/tournaments/{id}
func (c *Client) DeleteTournament(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodDelete, fmt.Sprintf("/admin/tournaments/%d", id), nil)
}

// CreateUser creates a user. POST /admin/users
func (c *Client) CreateUser(ctx context.Context, payload UserPayload) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodPost, "/admin/users", payload)
}

// DeleteUser deletes a user. DELETE /admin/users/{id}
func (c *Client) DeleteUser(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil)
}

// GetRegistrationID looks up the registration for a (user, tournament) pair.
// GET /admin/registrations/user/{uid}/tournament/{tid}
func (c *Client) GetRegistrationID(ctx context.Context, userID, tournamentID int64) (*Response, error) {
	path := fmt.Sprintf("/admin/registrations/user/%d/tournament/%d", userID, tournamentID)
	return c.do(ctx, ScopeAdmin, http.MethodGet, path, nil)
}

// CreateRegistration creates a registration directly. POST /admin/registrations
func (c *Client) CreateRegistration(ctx context.Context, payload RegistrationPayload) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodPost, "/admin/registrations", payload)
}

// DeleteRegistration deletes a registration. DELETE /admin/registrations/{id}
func (c *Client) DeleteRegistration(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodDelete, fmt.Sprintf("/admin/registrations/%d", id), nil)
}

// CreateParticipant creates a tournament participant. POST /admin/participants
func (c *Client) CreateParticipant(ctx context.Context, payload ParticipantPayload) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodPost, "/admin/participants", payload)
}

// DeleteParticipant deletes a participant. DELETE /admin/participants/{id}
func (c *Client) DeleteParticipant(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodDelete, fmt.Sprintf("/admin/participants/%d", id), nil)
}

// CreateMatch creates a match. POST /admin/matches
func (c *Client) CreateMatch(ctx context.Context, payload MatchPayload) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodPost, "/admin/matches", payload)
}

// DeleteMatch deletes a match. DELETE /admin/matches/{id}
func (c *Client) DeleteMatch(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodDelete, fmt.Sprintf("/admin/matches/%d", id), nil)
}

// ListRegistrations lists the registrations of a tournament.
// GET /admin/{tid}/registrations
func (c *Client) ListRegistrations(ctx context.Context, tournamentID int64) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodGet, fmt.Sprintf("/admin/%d/registrations", tournamentID), nil)
}

// ConfirmParticipants promotes a batch of pending registrations.
// POST /admin/{tid}/confirm-participants
func (c *Client) ConfirmParticipants(ctx context.Context, tournamentID int64, participantIDs []int64) (*Response, error) {
	path := fmt.Sprintf("/admin/%d/confirm-participants", tournamentID)
	return c.do(ctx, ScopeAdmin, http.MethodPost, path, ConfirmParticipantsPayload{ParticipantIDs: participantIDs})
}

// StartVote starts a vote on a match. POST /admin/matches/{id}/start-vote
// A 200 response carries the created vote-event id at event.id.
func (c *Client) StartVote(ctx context.Context, matchID int64, payload VotePayload) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodPost, fmt.Sprintf("/admin/matches/%d/start-vote", matchID), payload)
}

// DeleteVoteEvent deletes a vote event. DELETE /admin/vote-events/{id}
func (c *Client) DeleteVoteEvent(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, ScopeAdmin, http.MethodDelete, fmt.Sprintf("/admin/vote-events/%d", id), nil)
}
