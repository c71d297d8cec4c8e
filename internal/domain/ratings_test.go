package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingTally_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		keeps  int
		passes int
		want   Outcome
	}{
		{"keeps win", 3, 1, OutcomeKeep},
		{"passes win", 1, 3, OutcomePass},
		{"equal is a draw", 2, 2, OutcomeDraw},
		{"nobody rated is a draw", 0, 0, OutcomeDraw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := NewRatingTally()
			for i := 0; i < tt.keeps; i++ {
				tally.Submit(string(rune('a'+i)), DecisionKeep)
			}
			for i := 0; i < tt.passes; i++ {
				tally.Submit(string(rune('m'+i)), DecisionPass)
			}

			assert.Equal(t, tt.want, tally.Resolve())
		})
	}
}

func TestRatingTally_ToggleReturnsToUnrated(t *testing.T) {
	tally := NewRatingTally()

	tally.Submit("p1", DecisionKeep)
	prior, ok := tally.Remove("p1")
	assert.True(t, ok)
	assert.Equal(t, DecisionKeep, prior)

	// Indistinguishable from never having rated
	_, ok = tally.Get("p1")
	assert.False(t, ok)
	keeps, passes := tally.Counts()
	assert.Zero(t, keeps)
	assert.Zero(t, passes)

	_, ok = tally.Remove("p1")
	assert.False(t, ok)
}

func TestRatingTally_SubmitOverwrites(t *testing.T) {
	tally := NewRatingTally()
	tally.Submit("p1", DecisionKeep)
	tally.Submit("p1", DecisionPass)

	keeps, passes := tally.Counts()
	assert.Equal(t, 0, keeps)
	assert.Equal(t, 1, passes)
}

func TestDecision_Valid(t *testing.T) {
	assert.True(t, DecisionKeep.Valid())
	assert.True(t, DecisionPass.Valid())
	assert.False(t, Decision("").Valid())
	assert.False(t, Decision("maybe").Valid())
}
