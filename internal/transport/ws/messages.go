package ws

import (
	"encoding/json"
	"time"

	"auxwheel/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgJoin            MessageType = "join"
	MsgStartVoting     MessageType = "startVoting"
	MsgVote            MessageType = "vote"
	MsgRate            MessageType = "rate"
	MsgRemoveRating    MessageType = "removeRating"
	MsgRequestNewSongs MessageType = "requestNewSongs"
	MsgPlay            MessageType = "play"
	MsgPause           MessageType = "pause"
	MsgResume          MessageType = "resume"
	MsgSeek            MessageType = "seek"
	MsgVolume          MessageType = "volume"
	MsgEffect          MessageType = "effect"
	MsgCursor          MessageType = "cursor"
	MsgPing            MessageType = "ping"
)

// Server → Client message types (session events use domain.EventType; the
// types below cover relays and transport concerns)
const (
	MsgError MessageType = "error"
	MsgPong  MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a transport-level message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Client message payloads

// JoinPayload is the payload for join
type JoinPayload struct {
	Name string `json:"name"`
}

// VotePayload is the payload for vote
type VotePayload struct {
	TargetID string `json:"targetId"`
}

// RatePayload is the payload for rate
type RatePayload struct {
	Decision domain.Decision `json:"decision"`
}

// PlayPayload is the payload for play
type PlayPayload struct {
	Song domain.Song `json:"song"`
}

// SeekPayload is the payload for seek
type SeekPayload struct {
	Position float64 `json:"position"`
}

// VolumePayload is the payload for volume
type VolumePayload struct {
	Level float64 `json:"level"`
}

// EffectPayload is the payload for effect
type EffectPayload struct {
	Name string `json:"name"`
}

// CursorPayload is the inbound cursor position
type CursorPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CursorRelayPayload is the cursor position relayed to the other clients
type CursorRelayPayload struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ResumeRelayPayload replaces the resume payload with the server clock so
// every client restarts from the same reference point
type ResumeRelayPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// ErrorPayload is the payload for error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeInvalidPhase   = "INVALID_PHASE"
	ErrCodeNotAuthorized  = "NOT_AUTHORIZED"
	ErrCodeUnknownTarget  = "UNKNOWN_TARGET"
	ErrCodeNotInSession   = "NOT_IN_SESSION"
	ErrCodeAlreadyRated   = "ALREADY_RATED"
	ErrCodeNotRated       = "NOT_RATED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)
