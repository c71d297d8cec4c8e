package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"auxwheel/internal/app"
	"auxwheel/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection
type Client struct {
	conn          *websocket.Conn
	orchestrator  *app.Orchestrator
	participantID string
	send          chan []byte
	done          chan struct{}
	logger        *slog.Logger
	mu            sync.Mutex
	closed        bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, orchestrator *app.Orchestrator, participantID string, logger *slog.Logger) *Client {
	return &Client{
		conn:          conn,
		orchestrator:  orchestrator,
		participantID: participantID,
		send:          make(chan []byte, sendBufferSize),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// ParticipantID returns the participant id for this client
func (c *Client) ParticipantID() string {
	return c.participantID
}

// Send implements app.ClientConnection
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "id", c.participantID)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.orchestrator.UnregisterClient(c.participantID)
		c.orchestrator.Disconnect(c.participantID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgJoin:
		c.handleJoin(msg.Payload)
	case MsgStartVoting:
		c.reportError(c.orchestrator.StartVoting(c.participantID))
	case MsgVote:
		c.handleVote(msg.Payload)
	case MsgRate:
		c.handleRate(msg.Payload)
	case MsgRemoveRating:
		c.reportError(c.orchestrator.RemoveRating(c.participantID))
	case MsgRequestNewSongs:
		c.reportError(c.orchestrator.RequestNewSongs(c.participantID))
	case MsgPlay:
		c.handlePlay(msg.Payload)
	case MsgPause, MsgSeek, MsgVolume, MsgEffect:
		c.handleAuxRelay(msg.Type, msg.Payload)
	case MsgResume:
		c.handleResume()
	case MsgCursor:
		c.handleCursor(msg.Payload)
	case MsgPing:
		c.Send(NewServerMessage(MsgPong, nil))
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleJoin handles a join message
func (c *Client) handleJoin(payload json.RawMessage) {
	var join JoinPayload
	if err := json.Unmarshal(payload, &join); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	name := c.orchestrator.Join(c.participantID, join.Name)
	c.logger.Debug("joined session", "id", c.participantID, "name", name)
}

// handleVote handles a vote message
func (c *Client) handleVote(payload json.RawMessage) {
	var vote VotePayload
	if err := json.Unmarshal(payload, &vote); err != nil || vote.TargetID == "" {
		c.sendError(ErrCodeInvalidMessage, "Target id is required")
		return
	}

	c.reportError(c.orchestrator.Vote(c.participantID, vote.TargetID))
}

// handleRate handles a rate message
func (c *Client) handleRate(payload json.RawMessage) {
	var rate RatePayload
	if err := json.Unmarshal(payload, &rate); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	c.reportError(c.orchestrator.Rate(c.participantID, rate.Decision))
}

// handlePlay handles a play message from the aux holder
func (c *Client) handlePlay(payload json.RawMessage) {
	var play PlayPayload
	if err := json.Unmarshal(payload, &play); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	c.reportError(c.orchestrator.Play(c.participantID, play.Song))
}

// handleAuxRelay forwards a playback control to every other client,
// untouched, after checking the sender holds the aux
func (c *Client) handleAuxRelay(msgType MessageType, payload json.RawMessage) {
	if !c.orchestrator.IsAux(c.participantID) {
		c.sendError(ErrCodeNotAuthorized, "Only the aux holder can control playback")
		return
	}

	var raw interface{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &raw); err != nil {
			c.sendError(ErrCodeInvalidMessage, "Invalid payload")
			return
		}
	}

	c.orchestrator.SendToAllExcept(c.participantID, NewServerMessage(msgType, raw))
}

// handleResume rewrites the resume payload with the server clock
func (c *Client) handleResume() {
	if !c.orchestrator.IsAux(c.participantID) {
		c.sendError(ErrCodeNotAuthorized, "Only the aux holder can control playback")
		return
	}

	c.orchestrator.SendToAllExcept(c.participantID, NewServerMessage(MsgResume, &ResumeRelayPayload{
		Timestamp: c.orchestrator.Now().UnixMilli(),
	}))
}

// handleCursor relays a cursor position to the other clients
func (c *Client) handleCursor(payload json.RawMessage) {
	name, ok := c.orchestrator.ParticipantName(c.participantID)
	if !ok {
		return
	}

	var cursor CursorPayload
	if err := json.Unmarshal(payload, &cursor); err != nil {
		return
	}

	c.orchestrator.SendToAllExcept(c.participantID, NewServerMessage(MsgCursor, &CursorRelayPayload{
		ID:   c.participantID,
		Name: name,
		X:    cursor.X,
		Y:    cursor.Y,
	}))
}

// reportError maps a domain error to an error message for the caller.
// Rejected actions never mutate session state, so there is nothing else to
// unwind here.
func (c *Client) reportError(err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidPhase):
		c.sendError(ErrCodeInvalidPhase, "Action not allowed in the current phase")
	case errors.Is(err, domain.ErrNotAuthorized):
		c.sendError(ErrCodeNotAuthorized, "Only the aux holder can do that")
	case errors.Is(err, domain.ErrUnknownTarget):
		c.sendError(ErrCodeUnknownTarget, "Vote target is not in the session")
	case errors.Is(err, domain.ErrUnknownParticipant):
		c.sendError(ErrCodeNotInSession, "Join the session first")
	case errors.Is(err, domain.ErrAlreadyRated):
		c.sendError(ErrCodeAlreadyRated, "You already rated this round")
	case errors.Is(err, domain.ErrNotRated):
		c.sendError(ErrCodeNotRated, "No rating to remove")
	case errors.Is(err, domain.ErrInvalidDecision):
		c.sendError(ErrCodeInvalidMessage, "Rating must be keep or pass")
	default:
		c.sendError(ErrCodeInternalError, err.Error())
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.Send(NewServerMessage(MsgError, &ErrorPayload{
		Code:    code,
		Message: message,
	}))
}
