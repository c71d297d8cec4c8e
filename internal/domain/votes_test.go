package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteTally_OneLiveVotePerVoter(t *testing.T) {
	tally := NewVoteTally()

	prev, had := tally.Submit("v1", "a")
	assert.False(t, had)
	assert.Empty(t, prev)

	// Re-voting replaces, never appends
	prev, had = tally.Submit("v1", "b")
	assert.True(t, had)
	assert.Equal(t, "a", prev)

	counts := tally.CountsSnapshot()
	assert.Equal(t, 0, counts["a"])
	assert.Equal(t, 1, counts["b"])
	assert.Equal(t, 1, tally.VoterCount())
}

func TestVoteTally_CountsTotalEqualsDistinctVoters(t *testing.T) {
	tally := NewVoteTally()

	sequences := [][2]string{
		{"v1", "a"}, {"v2", "a"}, {"v3", "b"},
		{"v1", "b"}, {"v2", "c"}, {"v1", "a"},
	}
	for _, s := range sequences {
		tally.Submit(s[0], s[1])
	}

	total := 0
	for _, n := range tally.CountsSnapshot() {
		total += n
	}
	assert.Equal(t, tally.VoterCount(), total)
	assert.Equal(t, 3, total)
}

func TestVoteTally_Remove(t *testing.T) {
	tally := NewVoteTally()
	tally.Submit("v1", "a")
	tally.Submit("v2", "a")

	tally.Remove("v1")

	assert.Equal(t, 1, tally.CountsSnapshot()["a"])
	_, ok := tally.Target("v1")
	assert.False(t, ok)

	// Removing an absent voter is a no-op
	tally.Remove("v1")
	assert.Equal(t, 1, tally.VoterCount())
}

func TestVoteTally_Clear(t *testing.T) {
	tally := NewVoteTally()
	tally.Submit("v1", "a")
	tally.Clear()

	require.Empty(t, tally.CountsSnapshot())
	require.Empty(t, tally.VotesSnapshot())
	assert.Equal(t, 0, tally.VoterCount())
}

func TestVoteTally_SnapshotsAreCopies(t *testing.T) {
	tally := NewVoteTally()
	tally.Submit("v1", "a")

	counts := tally.CountsSnapshot()
	counts["a"] = 99
	votes := tally.VotesSnapshot()
	votes["v1"] = "b"

	assert.Equal(t, 1, tally.CountsSnapshot()["a"])
	target, _ := tally.Target("v1")
	assert.Equal(t, "a", target)
}
