package probe

import (
	"context"
	"fmt"
	"net/http"

	"github.com/arenalab/tourneyprobe/internal/api"
	probeErrors "github.com/arenalab/tourneyprobe/internal/errors"
	"github.com/arenalab/tourneyprobe/internal/runstate"
)

// votePayload matches the values the vote kickoff expects in a smoke run.
var votePayload = api.VotePayload{
	PointsAward:     100,
	CostPerVote:     10,
	DurationSeconds: 60,
}

// ListRegistrations probes the admin registration listing for the run's
// tournament.
func (r *Runner) ListRegistrations(ctx context.Context) Result {
	const name = "admin: list registrations"
	r.out.Stepf(name)

	tid, _ := r.rec.FirstID(runstate.KindTournament)
	resp, err := r.client.ListRegistrations(ctx, tid)
	if err != nil {
		return fail(name, err)
	}
	r.out.Call(name, resp)

	if resp.Status != http.StatusOK {
		return Result{Name: name, Passed: false, Status: resp.Status, Detail: "unexpected status"}
	}
	return Result{Name: name, Passed: true, Status: resp.Status, Detail: "listing readable"}
}

// ConfirmParticipants probes the batch confirmation endpoint with the run's
// own participants. The fixture already created them in ACTIVE state, so a
// rejection is an acceptable outcome; the probe checks that the endpoint
// answers, not that the promotion succeeds.
func (r *Runner) ConfirmParticipants(ctx context.Context) Result {
	const name = "admin: confirm participants"
	r.out.Stepf(name)

	tid, _ := r.rec.FirstID(runstate.KindTournament)
	resp, err := r.client.ConfirmParticipants(ctx, tid, r.rec.IDs(runstate.KindParticipant))
	if err != nil {
		return fail(name, err)
	}
	r.out.Call(name, resp)

	if resp.Success() {
		return Result{Name: name, Passed: true, Status: resp.Status, Detail: "confirmed"}
	}
	return Result{
		Name:   name,
		Passed: true,
		Status: resp.Status,
		Detail: fmt.Sprintf("rejected with %d (participants already active)", resp.Status),
	}
}

// StartVote probes the vote kickoff on the fixture match. A successful
// kickoff creates a vote event server-side; its id is appended to the run
// record so teardown deletes it first.
func (r *Runner) StartVote(ctx context.Context) Result {
	const name = "admin: start vote"
	r.out.Stepf(name)

	mid, ok := r.rec.FirstID(runstate.KindMatch)
	if !ok {
		return Result{Name: name, Passed: false, Detail: "no match in run record"}
	}
	resp, err := r.client.StartVote(ctx, mid, votePayload)
	if err != nil {
		return fail(name, err)
	}
	r.out.Call(name, resp)

	if resp.Status != http.StatusOK {
		return Result{Name: name, Passed: false, Status: resp.Status, Detail: "unexpected status"}
	}
	eventID, err := resp.ExtractID("event", "id")
	if err != nil {
		return Result{Name: name, Passed: false, Status: resp.Status, Detail: "vote event id missing from response"}
	}

	r.rec.Append(runstate.KindVoteEvent, eventID)
	if r.persist != nil {
		if err := r.persist(r.rec); err != nil {
			return fail(name, probeErrors.Wrap(probeErrors.CategoryState, "failed to persist vote event", err))
		}
	}
	return Result{Name: name, Passed: true, Status: resp.Status, Detail: fmt.Sprintf("vote event %d created", eventID)}
}
