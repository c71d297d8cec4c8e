package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"auxwheel/internal/app"
)

// Handler upgrades connections into session clients
type Handler struct {
	orchestrator *app.Orchestrator
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(orchestrator *app.Orchestrator, logger *slog.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development
				// In production, you should validate the origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Connection ids are ephemeral; a client that kept its id from a
	// previous connection rejoins the same roster slot.
	participantID := r.URL.Query().Get("participantId")
	isReconnect := participantID != ""
	if !isReconnect {
		participantID = uuid.New().String()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, h.orchestrator, participantID, h.logger)
	h.orchestrator.RegisterClient(participantID, client)

	h.logger.Info("websocket connected", "id", participantID, "isReconnect", isReconnect)

	client.Run()
}
