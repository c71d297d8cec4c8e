package domain

// VoteTally tracks at most one live vote per voter and the derived counts
// per target. Counts are rebuilt from scratch on every mutation instead of
// being maintained incrementally, which rules out drift between the two maps.
type VoteTally struct {
	votes  map[string]string // voterID -> targetID
	counts map[string]int    // targetID -> live vote count
}

// NewVoteTally creates an empty vote tally
func NewVoteTally() *VoteTally {
	return &VoteTally{
		votes:  make(map[string]string),
		counts: make(map[string]int),
	}
}

// Clear drops all votes and counts
func (t *VoteTally) Clear() {
	t.votes = make(map[string]string)
	t.counts = make(map[string]int)
}

// Submit records a vote, replacing any prior vote by the same voter. It
// returns the previous target, if any, so the caller can adjust persisted
// per-target stats.
func (t *VoteTally) Submit(voterID, targetID string) (previous string, ok bool) {
	previous, ok = t.votes[voterID]
	t.votes[voterID] = targetID
	t.recompute()
	return previous, ok
}

// Remove drops a voter's live vote, if any
func (t *VoteTally) Remove(voterID string) {
	if _, ok := t.votes[voterID]; !ok {
		return
	}
	delete(t.votes, voterID)
	t.recompute()
}

// Target returns the voter's current target
func (t *VoteTally) Target(voterID string) (string, bool) {
	target, ok := t.votes[voterID]
	return target, ok
}

// CountsSnapshot returns a copy of the current per-target counts
func (t *VoteTally) CountsSnapshot() map[string]int {
	counts := make(map[string]int, len(t.counts))
	for target, n := range t.counts {
		counts[target] = n
	}
	return counts
}

// VotesSnapshot returns a copy of the voter -> target mapping
func (t *VoteTally) VotesSnapshot() map[string]string {
	votes := make(map[string]string, len(t.votes))
	for voter, target := range t.votes {
		votes[voter] = target
	}
	return votes
}

// VoterCount returns the number of distinct voters with a live vote
func (t *VoteTally) VoterCount() int {
	return len(t.votes)
}

// recompute rebuilds counts from the vote mapping
func (t *VoteTally) recompute() {
	t.counts = make(map[string]int, len(t.votes))
	for _, target := range t.votes {
		t.counts[target]++
	}
}
