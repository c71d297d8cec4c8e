package domain

// Phase represents the current phase of the session
type Phase string

const (
	PhaseIdle    Phase = "IDLE"    // Waiting for someone to start a vote
	PhaseVoting  Phase = "VOTING"  // 30s countdown, everyone votes for the next aux
	PhasePlaying Phase = "PLAYING" // Aux holder controls playback for the round
	PhaseRating  Phase = "RATING"  // 30s countdown, everyone rates the aux
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseIdle:    {PhaseVoting},
		PhaseVoting:  {PhasePlaying, PhaseIdle},
		PhasePlaying: {PhaseRating, PhaseVoting, PhaseIdle}, // Voting when the aux disconnects
		PhaseRating:  {PhasePlaying, PhaseVoting, PhaseIdle},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
