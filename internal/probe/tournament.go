package probe

import (
	"context"
	"fmt"
	"net/http"

	"github.com/arenalab/tourneyprobe/internal/runstate"
)

// Register probes the self-service registration endpoint as the token-bound
// user. The fixture already registered this identity, so 409 is the common
// outcome; it passes only when the conflicting registration is verifiably
// the one this run created.
func (r *Runner) Register(ctx context.Context) Result {
	const name = "register for tournament"
	r.out.Stepf(name)

	tid, _ := r.rec.FirstID(runstate.KindTournament)
	resp, err := r.client.Register(ctx, tid)
	if err != nil {
		return fail(name, err)
	}
	r.out.Call(name, resp)

	switch resp.Status {
	case http.StatusCreated:
		return Result{Name: name, Passed: true, Status: resp.Status, Detail: "registered"}
	case http.StatusConflict:
		return r.verifyConflict(ctx, name, tid)
	default:
		return Result{Name: name, Passed: false, Status: resp.Status, Detail: "unexpected status"}
	}
}

// verifyConflict checks that the 409 refers to this run's registration and
// not to leftover state from an earlier run.
func (r *Runner) verifyConflict(ctx context.Context, name string, tid int64) Result {
	uid := r.rec.IDs(runstate.KindUser)[0]
	lookup, err := r.client.GetRegistrationID(ctx, uid, tid)
	if err != nil {
		return fail(name, err)
	}
	if lookup.Status != http.StatusOK {
		return Result{
			Name:   name,
			Passed: false,
			Status: http.StatusConflict,
			Detail: fmt.Sprintf("conflict, but registration lookup returned %d", lookup.Status),
		}
	}
	id, err := lookup.ExtractID("registration_id")
	if err != nil {
		return Result{Name: name, Passed: false, Status: http.StatusConflict, Detail: "conflict, registration id unreadable"}
	}
	ours := r.rec.IDs(runstate.KindRegistration)
	if len(ours) > 0 && ours[0] == id {
		return Result{Name: name, Passed: true, Status: http.StatusConflict, Detail: "already registered by this run"}
	}
	return Result{
		Name:   name,
		Passed: false,
		Status: http.StatusConflict,
		Detail: fmt.Sprintf("conflict belongs to foreign registration %d", id),
	}
}

// RegistrationStatus probes the my-registration-status endpoint.
func (r *Runner) RegistrationStatus(ctx context.Context) Result {
	const name = "my registration status"
	r.out.Stepf(name)

	tid, _ := r.rec.FirstID(runstate.KindTournament)
	resp, err := r.client.MyRegistrationStatus(ctx, tid)
	if err != nil {
		return fail(name, err)
	}
	r.out.Call(name, resp)

	if resp.Status != http.StatusOK {
		return Result{Name: name, Passed: false, Status: resp.Status, Detail: "unexpected status"}
	}
	return Result{Name: name, Passed: true, Status: resp.Status, Detail: "status readable"}
}
