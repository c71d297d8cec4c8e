package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxwheel/internal/app"
	"auxwheel/internal/domain"
	"auxwheel/internal/stats"
)

func newTestClient(t *testing.T, id string) (*Client, *app.Orchestrator) {
	t.Helper()

	catalog, err := app.LoadCatalog("")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := stats.NewSink(stats.NewMemoryStore(), logger)
	orch := app.NewOrchestrator(app.DefaultSettings(), catalog, recorder, clockwork.NewFakeClock(), logger)
	t.Cleanup(orch.Close)

	// The conn is only touched by the pumps, which never run here
	return NewClient(nil, orch, id, logger), orch
}

// nextMessage decodes the next queued outbound frame
func nextMessage(t *testing.T, c *Client) map[string]json.RawMessage {
	t.Helper()

	select {
	case data := <-c.send:
		var msg map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no outbound message queued")
		return nil
	}
}

func nextErrorCode(t *testing.T, c *Client) string {
	t.Helper()

	msg := nextMessage(t, c)
	var msgType string
	require.NoError(t, json.Unmarshal(msg["type"], &msgType))
	require.Equal(t, string(MsgError), msgType)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg["payload"], &payload))
	return payload.Code
}

func TestHandleMessage_MalformedJSON(t *testing.T) {
	c, _ := newTestClient(t, "p1")

	c.handleMessage([]byte("{not json"))

	assert.Equal(t, ErrCodeInvalidMessage, nextErrorCode(t, c))
}

func TestHandleMessage_UnknownType(t *testing.T) {
	c, _ := newTestClient(t, "p1")

	c.handleMessage([]byte(`{"type":"teleport"}`))

	assert.Equal(t, ErrCodeInvalidMessage, nextErrorCode(t, c))
}

func TestHandleMessage_VoteRequiresTarget(t *testing.T) {
	c, _ := newTestClient(t, "p1")

	c.handleMessage([]byte(`{"type":"vote","payload":{}}`))

	assert.Equal(t, ErrCodeInvalidMessage, nextErrorCode(t, c))
}

func TestHandleMessage_Ping(t *testing.T) {
	c, _ := newTestClient(t, "p1")

	c.handleMessage([]byte(`{"type":"ping"}`))

	msg := nextMessage(t, c)
	var msgType string
	require.NoError(t, json.Unmarshal(msg["type"], &msgType))
	assert.Equal(t, string(MsgPong), msgType)
}

func TestHandleMessage_JoinThenVote(t *testing.T) {
	c, orch := newTestClient(t, "p1")
	orch.Join("p2", "bob")

	c.handleMessage([]byte(`{"type":"join","payload":{"name":"alice"}}`))
	require.NoError(t, orch.StartVoting("p1"))

	// Voting for someone outside the roster is rejected
	c.handleMessage([]byte(`{"type":"vote","payload":{"targetId":"ghost"}}`))
	assert.Equal(t, ErrCodeUnknownTarget, nextErrorCode(t, c))

	c.handleMessage([]byte(`{"type":"vote","payload":{"targetId":"p2"}}`))
	assert.Equal(t, map[string]string{"p1": "p2"}, orch.Snapshot().Votes)
}

func TestHandleMessage_RelayRequiresAux(t *testing.T) {
	c, orch := newTestClient(t, "p1")
	orch.Join("p1", "alice")

	c.handleMessage([]byte(`{"type":"pause"}`))
	assert.Equal(t, ErrCodeNotAuthorized, nextErrorCode(t, c))

	c.handleMessage([]byte(`{"type":"resume"}`))
	assert.Equal(t, ErrCodeNotAuthorized, nextErrorCode(t, c))
}

func TestReportError_Mapping(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{domain.ErrInvalidPhase, ErrCodeInvalidPhase},
		{domain.ErrNotAuthorized, ErrCodeNotAuthorized},
		{domain.ErrUnknownTarget, ErrCodeUnknownTarget},
		{domain.ErrUnknownParticipant, ErrCodeNotInSession},
		{domain.ErrAlreadyRated, ErrCodeAlreadyRated},
		{domain.ErrNotRated, ErrCodeNotRated},
		{domain.ErrInvalidDecision, ErrCodeInvalidMessage},
	}

	c, _ := newTestClient(t, "p1")
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c.reportError(tt.err)
			assert.Equal(t, tt.code, nextErrorCode(t, c))
		})
	}

	// nil is a no-op
	c.reportError(nil)
	select {
	case data := <-c.send:
		t.Fatalf("unexpected outbound message: %s", data)
	default:
	}
}
