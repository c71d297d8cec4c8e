package domain

// Decision is a participant's verdict on the current aux holder
type Decision string

const (
	DecisionKeep Decision = "keep"
	DecisionPass Decision = "pass"
)

// Valid reports whether the decision is one of keep/pass
func (d Decision) Valid() bool {
	return d == DecisionKeep || d == DecisionPass
}

// Outcome is the aggregate result of a rating round
type Outcome string

const (
	OutcomeKeep Outcome = "keep"
	OutcomePass Outcome = "pass"
	OutcomeDraw Outcome = "draw"

	// OutcomeTieElection is broadcast when an aux vote ends in a tie-break
	OutcomeTieElection Outcome = "tieElection"
)

// RatingTally accumulates keep/pass decisions for the rating phase. It is a
// pure mapping; the aux-holder and double-rating guards live in the
// orchestrator.
type RatingTally struct {
	decisions map[string]Decision
}

// NewRatingTally creates an empty rating tally
func NewRatingTally() *RatingTally {
	return &RatingTally{decisions: make(map[string]Decision)}
}

// Clear drops all decisions
func (t *RatingTally) Clear() {
	t.decisions = make(map[string]Decision)
}

// Submit records a participant's decision, overwriting any prior one
func (t *RatingTally) Submit(participantID string, decision Decision) {
	t.decisions[participantID] = decision
}

// Remove deletes a participant's decision and returns the prior one
func (t *RatingTally) Remove(participantID string) (Decision, bool) {
	prior, ok := t.decisions[participantID]
	if ok {
		delete(t.decisions, participantID)
	}
	return prior, ok
}

// Get returns a participant's current decision
func (t *RatingTally) Get(participantID string) (Decision, bool) {
	d, ok := t.decisions[participantID]
	return d, ok
}

// Counts recomputes keeps and passes on demand rather than caching them
func (t *RatingTally) Counts() (keeps, passes int) {
	for _, d := range t.decisions {
		switch d {
		case DecisionKeep:
			keeps++
		case DecisionPass:
			passes++
		}
	}
	return keeps, passes
}

// Resolve derives the round outcome. A draw (including zero ratings) keeps
// the current aux holder, same as a keep.
func (t *RatingTally) Resolve() Outcome {
	keeps, passes := t.Counts()
	switch {
	case keeps > passes:
		return OutcomeKeep
	case passes > keeps:
		return OutcomePass
	default:
		return OutcomeDraw
	}
}
