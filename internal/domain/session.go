package domain

import (
	"sort"
	"time"
)

// Session is the single shared game state. It is exclusively owned and
// mutated by the orchestrator; everything else sees copies or wire views.
type Session struct {
	Phase   Phase
	Aux     *AuxHolder
	Roster  map[string]*Participant
	Votes   *VoteTally
	Ratings *RatingTally
	SongSet []Song
}

// NewSession creates an idle session with an empty roster
func NewSession() *Session {
	return &Session{
		Phase:   PhaseIdle,
		Roster:  make(map[string]*Participant),
		Votes:   NewVoteTally(),
		Ratings: NewRatingTally(),
	}
}

// Join adds a participant, or refreshes the display name if the id is
// already present (reconnect). Returns the participant and whether the id
// was already known.
func (s *Session) Join(id, name string, now time.Time) (*Participant, bool) {
	if p, ok := s.Roster[id]; ok {
		p.Name = NormalizeName(name)
		return p, true
	}
	p := NewParticipant(id, name, now)
	s.Roster[id] = p
	return p, false
}

// Leave removes a participant along with their live vote and rating. The
// two booleans tell the orchestrator which disconnect transition to take.
func (s *Session) Leave(id string) (wasAux, empty bool) {
	wasAux = s.IsAux(id)
	delete(s.Roster, id)
	s.Votes.Remove(id)
	s.Ratings.Remove(id)
	return wasAux, len(s.Roster) == 0
}

// Get returns a participant by id
func (s *Session) Get(id string) (*Participant, bool) {
	p, ok := s.Roster[id]
	return p, ok
}

// Has reports whether the id is a current roster member
func (s *Session) Has(id string) bool {
	_, ok := s.Roster[id]
	return ok
}

// IsAux reports whether the id matches the current aux holder
func (s *Session) IsAux(id string) bool {
	return s.Aux != nil && s.Aux.ID == id
}

// ParticipantIDs returns the roster ids in stable order
func (s *Session) ParticipantIDs() []string {
	ids := make([]string, 0, len(s.Roster))
	for id := range s.Roster {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResetForVoting clears tallies and per-round flags ahead of a voting phase
func (s *Session) ResetForVoting() {
	s.Votes.Clear()
	s.Ratings.Clear()
	for _, p := range s.Roster {
		p.ResetForVoting()
	}
}

// ResetForRating clears rating state ahead of a rating phase. The aux
// holder is auto-marked rated and never counts toward the tally.
func (s *Session) ResetForRating() {
	s.Ratings.Clear()
	for id, p := range s.Roster {
		p.ResetForRating(s.IsAux(id))
	}
}

// Reset returns the session to idle, discarding aux, votes, and ratings
func (s *Session) Reset() {
	s.Phase = PhaseIdle
	s.Aux = nil
	s.Votes.Clear()
	s.Ratings.Clear()
	for _, p := range s.Roster {
		p.ResetForVoting()
	}
}

// Snapshot builds the full state broadcast. countdown may be nil outside
// timed phases.
func (s *Session) Snapshot(countdown *CountdownInfo) *StatePayload {
	roster := make(map[string]ParticipantInfo, len(s.Roster))
	for id, p := range s.Roster {
		roster[id] = p.ToInfo()
	}

	return &StatePayload{
		Voting:     s.Phase == PhaseVoting,
		Playing:    s.Phase == PhasePlaying,
		Rating:     s.Phase == PhaseRating,
		Aux:        s.Aux,
		Players:    roster,
		VoteCounts: s.Votes.CountsSnapshot(),
		Votes:      s.Votes.VotesSnapshot(),
		Countdown:  countdown,
	}
}
