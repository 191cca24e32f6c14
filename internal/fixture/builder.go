// Package fixture builds the chain of dependent remote resources one run
// needs: two users, a tournament, two registrations, two participants, and
// a match. Steps run in a fixed linear order, each step's generated id is
// threaded into the next step's request, and every created resource is
// appended to the run record so teardown can unwind the chain in exact
// reverse order. Any unexpected status aborts the build; resources already
// recorded are still torn down by the caller.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/arenalab/tourneyprobe/internal/api"
	"github.com/arenalab/tourneyprobe/internal/config"
	probeErrors "github.com/arenalab/tourneyprobe/internal/errors"
	"github.com/arenalab/tourneyprobe/internal/runstate"
	"github.com/arenalab/tourneyprobe/internal/wait"
)

// Transcript receives the per-call response dump and step annotations.
type Transcript interface {
	Stepf(format string, args ...any)
	Call(name string, resp *api.Response)
}

// PersistFunc saves the record after each successful create, so a crashed
// run can still be cleaned up.
type PersistFunc func(rec *runstate.Record) error

// Builder executes the fixture steps against the API.
type Builder struct {
	client  *api.Client
	rec     *runstate.Record
	out     Transcript
	vis     config.Visibility
	persist PersistFunc

	// runTag makes the external-identity fields unique per run.
	runTag string

	tournamentName string
}

// NewBuilder creates a Builder appending to the given record.
func NewBuilder(client *api.Client, rec *runstate.Record, out Transcript, vis config.Visibility) *Builder {
	tag := fmt.Sprintf("%d%03d", time.Now().Unix(), rand.Intn(1000))
	return &Builder{
		client:         client,
		rec:            rec,
		out:            out,
		vis:            vis,
		runTag:         tag,
		tournamentName: "tourneyprobe smoke " + tag,
	}
}

// SetPersist sets the record persistence hook.
func (b *Builder) SetPersist(fn PersistFunc) {
	b.persist = fn
}

// Build runs the fixture steps in order. On the first failure it returns
// immediately; the record then holds exactly the resources that were
// created and must be deleted.
func (b *Builder) Build(ctx context.Context) error {
	steps := []func(context.Context) error{
		b.createUser1,
		b.createUser2,
		b.createTournament,
		b.registerUser1,
		b.lookupRegistration1,
		b.createRegistration2,
		b.createParticipant1,
		b.createParticipant2,
		b.createMatch,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// StepCount returns the number of fixture steps Build executes.
func StepCount() int {
	return len(PlanSteps())
}

func (b *Builder) createUser1(ctx context.Context) error {
	return b.createUser(ctx, "create user 1", 1)
}

func (b *Builder) createUser2(ctx context.Context) error {
	return b.createUser(ctx, "create user 2", 2)
}

func (b *Builder) createUser(ctx context.Context, step string, n int) error {
	b.out.Stepf("%s", step)
	resp, err := b.client.CreateUser(ctx, api.UserPayload{
		TwitchID:              fmt.Sprintf("%s%d", b.runTag, n),
		TwitchUsername:        fmt.Sprintf("tourneyprobe_u%d_%s", n, b.runTag),
		TwitchProfileImageURL: fmt.Sprintf("http://example.com/tourneyprobe_u%d.png", n),
	})
	if err != nil {
		return err
	}
	b.out.Call(step, resp)
	if err := expectStatus(step, resp, http.StatusCreated); err != nil {
		return err
	}
	id, err := resp.ExtractID("user", "id")
	if err != nil {
		return probeErrors.NewMissingIDError(step, "user.id", err)
	}
	if err := b.record(runstate.KindUser, id); err != nil {
		return err
	}
	// Users have no admin read endpoint to poll; fall back to a short delay.
	return wait.Sleep(ctx, b.vis.FallbackDelay)
}

func (b *Builder) createTournament(ctx context.Context) error {
	const step = "create tournament"
	b.out.Stepf(step)
	resp, err := b.client.CreateTournament(ctx, api.TournamentPayload{
		Name:   b.tournamentName,
		Status: "REGISTRATION_OPEN",
	})
	if err != nil {
		return err
	}
	b.out.Call(step, resp)
	if err := expectStatus(step, resp, http.StatusCreated); err != nil {
		return err
	}
	id, err := resp.ExtractID("tournament", "id")
	if err != nil {
		return probeErrors.NewMissingIDError(step, "tournament.id", err)
	}
	if err := b.record(runstate.KindTournament, id); err != nil {
		return err
	}
	return wait.Until(ctx, b.waitConfig(), fmt.Sprintf("tournament %d", id), func(ctx context.Context) (bool, error) {
		r, err := b.client.GetTournament(ctx, id)
		if err != nil {
			return false, err
		}
		return r.Status == http.StatusOK, nil
	})
}

func (b *Builder) registerUser1(ctx context.Context) error {
	const step = "register user 1"
	b.out.Stepf(step)
	tid := b.tournamentID()
	resp, err := b.client.Register(ctx, tid)
	if err != nil {
		return err
	}
	b.out.Call(step, resp)
	// 409 means the token-bound identity is already registered; the
	// following lookup confirms the registration belongs to this run.
	return expectStatus(step, resp, http.StatusCreated, http.StatusConflict)
}

func (b *Builder) lookupRegistration1(ctx context.Context) error {
	const step = "lookup registration 1"
	b.out.Stepf(step)
	tid := b.tournamentID()
	uid := b.rec.IDs(runstate.KindUser)[0]

	// The lookup doubles as the visibility poll for the register call.
	var last *api.Response
	err := wait.Until(ctx, b.waitConfig(), fmt.Sprintf("registration of user %d", uid), func(ctx context.Context) (bool, error) {
		r, err := b.client.GetRegistrationID(ctx, uid, tid)
		if err != nil {
			return false, err
		}
		last = r
		return r.Status == http.StatusOK, nil
	})
	if last != nil {
		b.out.Call(step, last)
	}
	if err != nil {
		var perr *probeErrors.Error
		if errors.As(err, &perr) && perr.Category == probeErrors.CategoryFixture && last != nil {
			// The poll ran out of attempts; surface the status we kept seeing.
			return probeErrors.NewUnexpectedStatusError(step, []int{http.StatusOK}, last.Status)
		}
		return err
	}

	id, err := last.ExtractID("registration_id")
	if err != nil {
		return probeErrors.NewMissingIDError(step, "registration_id", err)
	}
	return b.record(runstate.KindRegistration, id)
}

func (b *Builder) createRegistration2(ctx context.Context) error {
	const step = "create registration 2"
	b.out.Stepf(step)
	tid := b.tournamentID()
	uid := b.rec.IDs(runstate.KindUser)[1]
	resp, err := b.client.CreateRegistration(ctx, api.RegistrationPayload{
		UserID:       uid,
		TournamentID: tid,
		Status:       "PENDING",
	})
	if err != nil {
		return err
	}
	b.out.Call(step, resp)
	if err := expectStatus(step, resp, http.StatusCreated); err != nil {
		return err
	}
	id, err := resp.ExtractID("registration", "id")
	if err != nil {
		return probeErrors.NewMissingIDError(step, "registration.id", err)
	}
	if err := b.record(runstate.KindRegistration, id); err != nil {
		return err
	}
	return wait.Until(ctx, b.waitConfig(), fmt.Sprintf("registration %d", id), func(ctx context.Context) (bool, error) {
		r, err := b.client.GetRegistrationID(ctx, uid, tid)
		if err != nil {
			return false, err
		}
		return r.Status == http.StatusOK, nil
	})
}

func (b *Builder) createParticipant1(ctx context.Context) error {
	return b.createParticipant(ctx, "create participant 1", 0)
}

func (b *Builder) createParticipant2(ctx context.Context) error {
	return b.createParticipant(ctx, "create participant 2", 1)
}

func (b *Builder) createParticipant(ctx context.Context, step string, n int) error {
	b.out.Stepf("%s", step)
	tid := b.tournamentID()
	uid := b.rec.IDs(runstate.KindUser)[n]
	rid := b.rec.IDs(runstate.KindRegistration)[n]
	resp, err := b.client.CreateParticipant(ctx, api.ParticipantPayload{
		RegistrationID: rid,
		UserID:         uid,
		TournamentID:   tid,
		Status:         "ACTIVE",
	})
	if err != nil {
		return err
	}
	b.out.Call(step, resp)
	if err := expectStatus(step, resp, http.StatusCreated); err != nil {
		return err
	}
	id, err := resp.ExtractID("participant", "id")
	if err != nil {
		return probeErrors.NewMissingIDError(step, "participant.id", err)
	}
	if err := b.record(runstate.KindParticipant, id); err != nil {
		return err
	}
	return wait.Sleep(ctx, b.vis.FallbackDelay)
}

func (b *Builder) createMatch(ctx context.Context) error {
	const step = "create match"
	b.out.Stepf(step)
	participants := b.rec.IDs(runstate.KindParticipant)
	resp, err := b.client.CreateMatch(ctx, api.NewMatchPayload(b.tournamentID(), participants[0], participants[1]))
	if err != nil {
		return err
	}
	b.out.Call(step, resp)
	if err := expectStatus(step, resp, http.StatusCreated); err != nil {
		return err
	}
	id, err := resp.ExtractID("match", "id")
	if err != nil {
		return probeErrors.NewMissingIDError(step, "match.id", err)
	}
	if err := b.record(runstate.KindMatch, id); err != nil {
		return err
	}
	return wait.Sleep(ctx, b.vis.FallbackDelay)
}

// record appends a resource to the run record and persists it.
func (b *Builder) record(kind runstate.Kind, id int64) error {
	b.rec.Append(kind, id)
	slog.Debug("recorded fixture resource", "kind", kind, "id", id)
	if b.persist == nil {
		return nil
	}
	if err := b.persist(b.rec); err != nil {
		// A persistence failure must not leak remote resources; abort
		// so the in-memory record is unwound while it is still complete.
		return probeErrors.Wrap(probeErrors.CategoryState, "failed to persist run record", err)
	}
	return nil
}

func (b *Builder) tournamentID() int64 {
	id, _ := b.rec.FirstID(runstate.KindTournament)
	return id
}

func (b *Builder) waitConfig() wait.Config {
	return wait.Config{
		InitialInterval: b.vis.InitialInterval,
		MaxInterval:     b.vis.MaxInterval,
		MaxAttempts:     b.vis.MaxAttempts,
	}
}

// expectStatus checks a fixture call's status against the allowed set.
func expectStatus(step string, resp *api.Response, allowed ...int) error {
	for _, a := range allowed {
		if resp.Status == a {
			return nil
		}
	}
	return probeErrors.NewUnexpectedStatusError(step, allowed, resp.Status)
}
