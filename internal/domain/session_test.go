package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trimmed", "  alice  ", "alice"},
		{"capped", "averyveryverylongname", "averyveryveryve"},
		{"blank falls back", "   ", "Guest"},
		{"empty falls back", "", "Guest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestSession_JoinIsIdempotent(t *testing.T) {
	s := NewSession()
	now := time.Now()

	p, rejoined := s.Join("c1", "alice", now)
	assert.False(t, rejoined)
	assert.Equal(t, "alice", p.Name)

	// Same id rejoining refreshes the name, keeps the slot
	p2, rejoined := s.Join("c1", "alicia", now)
	assert.True(t, rejoined)
	assert.Same(t, p, p2)
	assert.Equal(t, "alicia", p2.Name)
	assert.Len(t, s.Roster, 1)
}

func TestSession_LeaveReportsAuxAndEmpty(t *testing.T) {
	s := NewSession()
	now := time.Now()
	s.Join("a", "A", now)
	s.Join("b", "B", now)
	s.Aux = &AuxHolder{ID: "a", Name: "A"}

	wasAux, empty := s.Leave("a")
	assert.True(t, wasAux)
	assert.False(t, empty)

	wasAux, empty = s.Leave("b")
	assert.False(t, wasAux)
	assert.True(t, empty)
}

func TestSession_LeaveRemovesVoteAndRating(t *testing.T) {
	s := NewSession()
	now := time.Now()
	s.Join("a", "A", now)
	s.Join("b", "B", now)

	s.Votes.Submit("a", "b")
	s.Ratings.Submit("a", DecisionKeep)

	s.Leave("a")

	assert.Equal(t, 0, s.Votes.VoterCount())
	keeps, _ := s.Ratings.Counts()
	assert.Zero(t, keeps)
}

func TestSession_ResetForRatingAutoMarksAux(t *testing.T) {
	s := NewSession()
	now := time.Now()
	s.Join("a", "A", now)
	s.Join("b", "B", now)
	s.Aux = &AuxHolder{ID: "a", Name: "A"}

	s.ResetForRating()

	a, _ := s.Get("a")
	b, _ := s.Get("b")
	assert.True(t, a.HasRated)
	assert.False(t, b.HasRated)
	assert.Empty(t, b.Decision)
}

func TestSession_Reset(t *testing.T) {
	s := NewSession()
	now := time.Now()
	s.Join("a", "A", now)
	s.Phase = PhaseRating
	s.Aux = &AuxHolder{ID: "a", Name: "A"}
	s.Votes.Submit("a", "a")
	s.Ratings.Submit("a", DecisionPass)

	s.Reset()

	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.Aux)
	assert.Equal(t, 0, s.Votes.VoterCount())
	a, _ := s.Get("a")
	assert.False(t, a.HasVoted)
	assert.False(t, a.HasRated)
}

func TestSession_Snapshot(t *testing.T) {
	s := NewSession()
	now := time.Now()
	s.Join("a", "A", now)
	s.Join("b", "B", now)
	s.Phase = PhaseVoting
	s.Votes.Submit("a", "b")
	a, _ := s.Get("a")
	a.HasVoted = true

	snap := s.Snapshot(&CountdownInfo{Phase: PhaseVoting, SecondsRemaining: 12})

	require.NotNil(t, snap)
	assert.True(t, snap.Voting)
	assert.False(t, snap.Playing)
	assert.Equal(t, map[string]string{"a": "b"}, snap.Votes)
	assert.Equal(t, 1, snap.VoteCounts["b"])
	assert.True(t, snap.Players["a"].Voted)
	assert.False(t, snap.Players["b"].Voted)
	require.NotNil(t, snap.Countdown)
	assert.Equal(t, 12, snap.Countdown.SecondsRemaining)
}

func TestPhase_CanTransitionTo(t *testing.T) {
	assert.True(t, PhaseIdle.CanTransitionTo(PhaseVoting))
	assert.True(t, PhaseVoting.CanTransitionTo(PhasePlaying))
	assert.True(t, PhaseVoting.CanTransitionTo(PhaseIdle))
	assert.True(t, PhaseRating.CanTransitionTo(PhaseVoting))
	assert.True(t, PhaseRating.CanTransitionTo(PhasePlaying))
	assert.False(t, PhaseIdle.CanTransitionTo(PhasePlaying))
	assert.False(t, PhaseIdle.CanTransitionTo(PhaseRating))
}

func TestParticipant_ToInfo(t *testing.T) {
	p := NewParticipant("a", "A", time.Now())
	info := p.ToInfo()
	assert.Nil(t, info.Keep)

	p.HasRated = true
	p.Decision = DecisionKeep
	info = p.ToInfo()
	require.NotNil(t, info.Keep)
	assert.True(t, *info.Keep)

	p.Decision = DecisionPass
	info = p.ToInfo()
	require.NotNil(t, info.Keep)
	assert.False(t, *info.Keep)
}
