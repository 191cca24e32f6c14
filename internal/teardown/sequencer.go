// Package teardown unwinds the remote resources a run created. It is a
// pure function of the run record: every recorded resource is deleted in
// exact reverse creation order, one DELETE per resource, regardless of how
// far the fixture or the probes got. A failed delete is reported and the
// walk continues; stopping early would leak everything beneath it.
package teardown

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arenalab/tourneyprobe/internal/api"
	probeErrors "github.com/arenalab/tourneyprobe/internal/errors"
	"github.com/arenalab/tourneyprobe/internal/runstate"
)

// Transcript receives the per-delete response dump.
type Transcript interface {
	Stepf(format string, args ...any)
	Call(name string, resp *api.Response)
}

// Outcome is the result of one delete.
type Outcome struct {
	Kind   runstate.Kind `json:"kind"`
	ID     int64         `json:"id"`
	Status int           `json:"status,omitempty"`
	OK     bool          `json:"ok"`
	Detail string        `json:"detail,omitempty"`
}

// Sequencer deletes recorded resources through the admin API.
type Sequencer struct {
	client *api.Client
	out    Transcript
}

// NewSequencer creates a Sequencer.
func NewSequencer(client *api.Client, out Transcript) *Sequencer {
	return &Sequencer{client: client, out: out}
}

// Teardown deletes every resource in the record in reverse creation order
// and returns one Outcome per resource, in deletion order.
func (s *Sequencer) Teardown(ctx context.Context, rec *runstate.Record) []Outcome {
	resources := rec.ReverseOrder()
	outcomes := make([]Outcome, 0, len(resources))
	for _, res := range resources {
		outcomes = append(outcomes, s.deleteOne(ctx, res))
	}
	return outcomes
}

func (s *Sequencer) deleteOne(ctx context.Context, res runstate.Resource) Outcome {
	name := fmt.Sprintf("delete %s %d", res.Kind, res.ID)
	s.out.Stepf(name)

	resp, err := s.delete(ctx, res)
	if err != nil {
		slog.Warn("delete failed", "kind", res.Kind, "id", res.ID, "error", err)
		return Outcome{Kind: res.Kind, ID: res.ID, OK: false, Detail: err.Error()}
	}
	s.out.Call(name, resp)

	switch {
	case resp.Success():
		slog.Debug("deleted resource", "kind", res.Kind, "id", res.ID, "status", resp.Status)
		return Outcome{Kind: res.Kind, ID: res.ID, Status: resp.Status, OK: true}
	case resp.Status == http.StatusNotFound:
		// Already gone server-side; nothing left to leak.
		slog.Debug("resource already gone", "kind", res.Kind, "id", res.ID)
		return Outcome{Kind: res.Kind, ID: res.ID, Status: resp.Status, OK: true, Detail: "already gone"}
	default:
		err := probeErrors.New(probeErrors.CategoryTeardown,
			fmt.Sprintf("delete of %s %d returned HTTP %d", res.Kind, res.ID, resp.Status))
		slog.Warn("delete rejected", "kind", res.Kind, "id", res.ID, "status", resp.Status)
		return Outcome{Kind: res.Kind, ID: res.ID, Status: resp.Status, OK: false, Detail: err.Error()}
	}
}

// delete dispatches to the admin delete endpoint for the resource kind.
func (s *Sequencer) delete(ctx context.Context, res runstate.Resource) (*api.Response, error) {
	switch res.Kind {
	case runstate.KindVoteEvent:
		return s.client.DeleteVoteEvent(ctx, res.ID)
	case runstate.KindMatch:
		return s.client.DeleteMatch(ctx, res.ID)
	case runstate.KindParticipant:
		return s.client.DeleteParticipant(ctx, res.ID)
	case runstate.KindRegistration:
		return s.client.DeleteRegistration(ctx, res.ID)
	case runstate.KindTournament:
		return s.client.DeleteTournament(ctx, res.ID)
	case runstate.KindUser:
		return s.client.DeleteUser(ctx, res.ID)
	default:
		return nil, probeErrors.New(probeErrors.CategoryTeardown,
			fmt.Sprintf("no delete endpoint for resource kind %q", res.Kind))
	}
}

// Failed counts the outcomes that left a resource behind.
func Failed(outcomes []Outcome) int {
	var n int
	for _, o := range outcomes {
		if !o.OK {
			n++
		}
	}
	return n
}
