// Package runstate holds the ordered record of remote resources created
// during a harness run. The record is the undo log: the fixture builder
// (and the start-vote probe, for its vote event) appends to it, everything
// after that reads it, and teardown is a pure function of it.
package runstate

import "time"

// Kind identifies the type of a remote resource.
type Kind string

const (
	KindUser         Kind = "user"
	KindTournament   Kind = "tournament"
	KindRegistration Kind = "registration"
	KindParticipant  Kind = "participant"
	KindMatch        Kind = "match"
	KindVoteEvent    Kind = "vote-event"
)

// Resource is one remote resource captured during the run. The harness
// holds ids only; it never owns any other representation of the entity.
type Resource struct {
	Kind      Kind      `json:"kind"`
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Record is the ordered undo log for one run. Append order is creation
// order; teardown walks it in reverse.
type Record struct {
	// StartedAt marks the beginning of the run.
	StartedAt time.Time `json:"startedAt"`

	// Resources lists every created resource in creation order.
	Resources []Resource `json:"resources"`
}

// NewRecord creates an empty Record stamped with the current time.
func NewRecord() *Record {
	return &Record{StartedAt: time.Now().UTC()}
}

// Append records a newly created resource.
func (r *Record) Append(kind Kind, id int64) {
	r.Resources = append(r.Resources, Resource{
		Kind:      kind,
		ID:        id,
		CreatedAt: time.Now().UTC(),
	})
}

// Len returns the number of recorded resources.
func (r *Record) Len() int {
	return len(r.Resources)
}

// IDs returns the ids of all resources of the given kind, in creation order.
func (r *Record) IDs(kind Kind) []int64 {
	var ids []int64
	for _, res := range r.Resources {
		if res.Kind == kind {
			ids = append(ids, res.ID)
		}
	}
	return ids
}

// FirstID returns the id of the first recorded resource of the given kind.
func (r *Record) FirstID(kind Kind) (int64, bool) {
	for _, res := range r.Resources {
		if res.Kind == kind {
			return res.ID, true
		}
	}
	return 0, false
}

// ReverseOrder returns a copy of the resources in exact reverse creation
// order, the order teardown must delete them in.
func (r *Record) ReverseOrder() []Resource {
	out := make([]Resource, len(r.Resources))
	for i, res := range r.Resources {
		out[len(r.Resources)-1-i] = res
	}
	return out
}
