package domain

import (
	"strings"
	"time"
)

const (
	// MaxDisplayNameLength caps display names on join
	MaxDisplayNameLength = 15

	// DefaultDisplayName is used when a joiner sends a blank name
	DefaultDisplayName = "Guest"
)

// Participant represents a connected member of the session
type Participant struct {
	ID       string
	Name     string
	HasVoted bool     // Valid only during voting
	HasRated bool     // Valid only during rating
	Decision Decision // Tri-state: keep/pass/"" (unset)
	JoinedAt time.Time
}

// NewParticipant creates a participant with a normalized display name
func NewParticipant(id, name string, joinedAt time.Time) *Participant {
	return &Participant{
		ID:       id,
		Name:     NormalizeName(name),
		JoinedAt: joinedAt,
	}
}

// NormalizeName trims, caps, and defaults a display name
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > MaxDisplayNameLength {
		name = name[:MaxDisplayNameLength]
	}
	if name == "" {
		name = DefaultDisplayName
	}
	return name
}

// ResetForVoting clears the participant's per-round voting state
func (p *Participant) ResetForVoting() {
	p.HasVoted = false
	p.HasRated = false
	p.Decision = ""
}

// ResetForRating clears the participant's rating state. The current aux
// holder is auto-marked rated so the tally never waits on them.
func (p *Participant) ResetForRating(isAux bool) {
	p.HasRated = isAux
	p.Decision = ""
}

// ParticipantInfo is the wire view of a participant
type ParticipantInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Voted bool   `json:"voted"`
	Rated bool   `json:"rated"`
	Keep  *bool  `json:"keep"` // nil while the decision is unset
}

// ToInfo converts a Participant to its wire view
func (p *Participant) ToInfo() ParticipantInfo {
	info := ParticipantInfo{
		ID:    p.ID,
		Name:  p.Name,
		Voted: p.HasVoted,
		Rated: p.HasRated,
	}
	if p.Decision.Valid() {
		keep := p.Decision == DecisionKeep
		info.Keep = &keep
	}
	return info
}

// AuxHolder identifies the participant currently holding the aux
type AuxHolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
