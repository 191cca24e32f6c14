package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenalab/tourneyprobe/internal/api"
	"github.com/arenalab/tourneyprobe/internal/probe"
	"github.com/arenalab/tourneyprobe/internal/runstate"
	"github.com/arenalab/tourneyprobe/internal/teardown"
)

func TestReporterCall(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	resp := api.NewResponse("POST", "/admin/tournaments", 201, []byte(`{"tournament":{"id":7}}`))
	r.Call("Create Tournament", resp)

	out := buf.String()
	assert.Contains(t, out, "--- Create Tournament ---")
	assert.Contains(t, out, "POST /admin/tournaments")
	assert.Contains(t, out, "Status Code: 201")
	assert.Contains(t, out, `"id": 7`)
}

func TestReporterSectionAndStep(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	r.Section("Building Fixture")
	r.Stepf("create user %d", 1)

	out := buf.String()
	assert.Contains(t, out, "========== Building Fixture ==========")
	assert.Contains(t, out, "=> create user 1")
}

func TestSummaryPassed(t *testing.T) {
	s := &Summary{
		Created: 8,
		Probes: []probe.Result{
			{Name: "register for tournament", Passed: true},
			{Name: "websocket echo", Passed: true},
		},
		Teardown: []teardown.Outcome{
			{Kind: runstate.KindMatch, ID: 108, OK: true},
			{Kind: runstate.KindUser, ID: 101, OK: true},
		},
	}
	assert.True(t, s.Passed())
	assert.Empty(t, s.Leaked())

	var buf bytes.Buffer
	s.Print(&buf)
	assert.Contains(t, buf.String(), "all checks passed")
	assert.Contains(t, buf.String(), "2 resources removed")
}

func TestSummaryFailures(t *testing.T) {
	s := &Summary{
		Created: 8,
		Probes:  []probe.Result{{Name: "websocket echo", Passed: false, Detail: "dial failed"}},
		Teardown: []teardown.Outcome{
			{Kind: runstate.KindMatch, ID: 108, OK: false, Detail: "HTTP 500"},
			{Kind: runstate.KindUser, ID: 101, OK: true},
		},
	}
	assert.False(t, s.Passed())
	require.Len(t, s.Leaked(), 1)

	var buf bytes.Buffer
	s.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "run failed")
	assert.Contains(t, out, "leaked match 108")
	assert.Contains(t, out, "dial failed")
}

func TestSummaryFixtureError(t *testing.T) {
	s := &Summary{FixtureError: "create tournament returned HTTP 500", ProbesSkipped: true}
	assert.False(t, s.Passed())

	var buf bytes.Buffer
	s.Print(&buf)
	assert.Contains(t, buf.String(), "probes skipped")
	assert.Contains(t, buf.String(), "create tournament returned HTTP 500")
}

func TestSummaryJSON(t *testing.T) {
	s := &Summary{Created: 3, Kept: true}
	var buf bytes.Buffer
	require.NoError(t, s.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"created": 3`)
	assert.Contains(t, buf.String(), `"kept": true`)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSessionStore(dir)
	require.NoError(t, err)
	_, err = store.Writer().WriteString("Status Code: 201\n")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	info, data, err := ReadLatest(dir)
	require.NoError(t, err)
	assert.Equal(t, store.ID(), info.ID)
	assert.Equal(t, "Status Code: 201\n", string(data))
}

func TestSessionStoreCleanup(t *testing.T) {
	dir := t.TempDir()

	// Fabricate three sessions with distinct timestamps.
	for _, id := range []string{"20260101T000000", "20260102T000000", "20260103T000000"} {
		sessionDir := filepath.Join(dir, "transcripts", id)
		require.NoError(t, os.MkdirAll(sessionDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(sessionDir, transcriptFileName), []byte(id), 0644))
	}

	require.NoError(t, CleanupSessions(dir, 1))

	sessions, err := ListSessions(dir)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "20260103T000000", sessions[0].ID)
}

func TestListSessionsEmpty(t *testing.T) {
	sessions, err := ListSessions(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
