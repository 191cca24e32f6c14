// Package probe runs the functional checks against the fixture once it is
// built: the self-service registration flow, the admin listing and
// confirmation endpoints, the vote kickoff, and the WebSocket echo. Probes
// never abort the run; each produces a Result, and a failing probe leaves
// the remaining probes and the teardown untouched.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/arenalab/tourneyprobe/internal/api"
	"github.com/arenalab/tourneyprobe/internal/config"
	"github.com/arenalab/tourneyprobe/internal/runstate"
)

// Transcript receives the per-call response dump and probe annotations.
type Transcript interface {
	Stepf(format string, args ...any)
	Call(name string, resp *api.Response)
}

// PersistFunc saves the record when a probe creates a resource of its own
// (the start-vote probe's vote event).
type PersistFunc func(rec *runstate.Record) error

// Result is the outcome of one probe.
type Result struct {
	// Name identifies the probe.
	Name string `json:"name"`
	// Passed reports whether the probe's pass condition held.
	Passed bool `json:"passed"`
	// Status is the HTTP status observed, 0 when no response arrived.
	Status int `json:"status,omitempty"`
	// Detail is a one-line human explanation of the outcome.
	Detail string `json:"detail,omitempty"`
}

// Runner executes the probes in order against a built fixture.
type Runner struct {
	client    *api.Client
	rec       *runstate.Record
	out       Transcript
	persist   PersistFunc
	wsURL     string
	wsTimeout time.Duration
}

// NewRunner creates a Runner over the given record.
func NewRunner(client *api.Client, rec *runstate.Record, out Transcript, cfg *config.Config) *Runner {
	return &Runner{
		client:    client,
		rec:       rec,
		out:       out,
		wsURL:     cfg.WSURL,
		wsTimeout: cfg.WSTimeout,
	}
}

// SetPersist sets the record persistence hook.
func (r *Runner) SetPersist(fn PersistFunc) {
	r.persist = fn
}

// RunAll executes every probe in order and returns their results.
func (r *Runner) RunAll(ctx context.Context) []Result {
	probes := []func(context.Context) Result{
		r.Register,
		r.RegistrationStatus,
		r.ListRegistrations,
		r.ConfirmParticipants,
		r.StartVote,
		r.WebSocket,
	}
	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		results = append(results, p(ctx))
	}
	return results
}

// fail builds a failed Result from a transport-level error.
func fail(name string, err error) Result {
	return Result{Name: name, Passed: false, Detail: fmt.Sprintf("request failed: %v", err)}
}
