package domain

import "time"

// EventType represents the type of session event
type EventType string

const (
	EventInit      EventType = "init"      // Song set for a joining participant
	EventNewSongs  EventType = "newSongs"  // Aux requested a fresh song set
	EventState     EventType = "state"     // Full state snapshot
	EventCountdown EventType = "countdown" // Fired once at the start of a timed phase
	EventNow       EventType = "now"       // Aux started a song
	EventResult    EventType = "result"    // Rating outcome or tie-break notice
	EventAuxLeft   EventType = "auxLeft"   // Aux holder disconnected mid-round
)

// Event is an outbound broadcast to the session
type Event struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`

	// TargetID limits delivery to a single participant; ExceptID excludes
	// one. Both empty means broadcast to everyone.
	TargetID string `json:"-"`
	ExceptID string `json:"-"`
}

// NewEvent creates a broadcast event
func NewEvent(eventType EventType, payload interface{}) *Event {
	return &Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewTargetEvent creates an event delivered to a single participant
func NewTargetEvent(eventType EventType, targetID string, payload interface{}) *Event {
	e := NewEvent(eventType, payload)
	e.TargetID = targetID
	return e
}

// Payload types for outbound events

// StatePayload is the full session snapshot
type StatePayload struct {
	Voting     bool                       `json:"voting"`
	Playing    bool                       `json:"playing"`
	Rating     bool                       `json:"rating"`
	Aux        *AuxHolder                 `json:"aux"`
	Players    map[string]ParticipantInfo `json:"players"`
	VoteCounts map[string]int             `json:"voteCounts"`
	Votes      map[string]string          `json:"votes"`
	Countdown  *CountdownInfo             `json:"countdown,omitempty"`
}

// CountdownInfo describes the in-progress countdown so late joiners can
// reconstruct it from a snapshot alone
type CountdownInfo struct {
	Phase            Phase `json:"phase"`
	SecondsRemaining int   `json:"secondsRemaining"`
}

// CountdownPayload announces a timed phase starting
type CountdownPayload struct {
	Phase   Phase `json:"phase"`
	Seconds int   `json:"seconds"`
}

// SongsPayload carries the current song set
type SongsPayload struct {
	Songs []Song `json:"songs"`
}

// NowPayload is broadcast when the aux starts a song
type NowPayload struct {
	Song      Song  `json:"song"`
	Timestamp int64 `json:"timestamp"` // Unix millis, for client-side sync
}

// AuxLeftPayload is broadcast when the aux holder disconnects mid-round
type AuxLeftPayload struct {
	Message string `json:"message"`
}
