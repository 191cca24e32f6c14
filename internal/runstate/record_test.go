package runstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_AppendAndAccessors(t *testing.T) {
	t.Parallel()

	rec := NewRecord()
	rec.Append(KindUser, 1)
	rec.Append(KindUser, 2)
	rec.Append(KindTournament, 10)
	rec.Append(KindRegistration, 20)

	assert.Equal(t, 4, rec.Len())
	assert.Equal(t, []int64{1, 2}, rec.IDs(KindUser))

	first, ok := rec.FirstID(KindUser)
	require.True(t, ok)
	assert.Equal(t, int64(1), first)

	_, ok = rec.FirstID(KindMatch)
	assert.False(t, ok)
}

func TestRecord_ReverseOrder(t *testing.T) {
	t.Parallel()

	rec := NewRecord()
	rec.Append(KindUser, 1)
	rec.Append(KindUser, 2)
	rec.Append(KindTournament, 10)
	rec.Append(KindRegistration, 20)
	rec.Append(KindRegistration, 21)
	rec.Append(KindParticipant, 30)
	rec.Append(KindParticipant, 31)
	rec.Append(KindMatch, 40)
	rec.Append(KindVoteEvent, 50)

	reversed := rec.ReverseOrder()
	require.Len(t, reversed, 9)

	want := []Resource{
		{Kind: KindVoteEvent, ID: 50},
		{Kind: KindMatch, ID: 40},
		{Kind: KindParticipant, ID: 31},
		{Kind: KindParticipant, ID: 30},
		{Kind: KindRegistration, ID: 21},
		{Kind: KindRegistration, ID: 20},
		{Kind: KindTournament, ID: 10},
		{Kind: KindUser, ID: 2},
		{Kind: KindUser, ID: 1},
	}
	for i, w := range want {
		assert.Equal(t, w.Kind, reversed[i].Kind, "position %d", i)
		assert.Equal(t, w.ID, reversed[i].ID, "position %d", i)
	}

	// Original order untouched
	assert.Equal(t, KindUser, rec.Resources[0].Kind)
}

func TestRecord_ReverseOrderEmpty(t *testing.T) {
	t.Parallel()

	rec := NewRecord()
	assert.Empty(t, rec.ReverseOrder())
}
