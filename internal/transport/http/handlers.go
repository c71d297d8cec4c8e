package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"auxwheel/internal/stats"
)

const defaultHistoryLimit = 20

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// SessionResponse summarizes the live session
type SessionResponse struct {
	Phase            string `json:"phase"`
	ParticipantCount int    `json:"participantCount"`
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{Status: "ok"})
}

// handleSession handles GET /api/session
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &SessionResponse{
		Phase:            s.orchestrator.Phase().String(),
		ParticipantCount: s.orchestrator.ParticipantCount(),
	})
}

// handleTotals handles GET /api/totals
func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.store.Totals(r.Context())
	if err != nil {
		s.logger.Error("read totals", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read totals")
		return
	}
	s.sendSuccess(w, totals)
}

// handleHistory handles GET /api/history?limit=N
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := s.store.AuxHistory(r.Context(), limit)
	if err != nil {
		s.logger.Error("read aux history", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read history")
		return
	}
	if history == nil {
		history = []stats.AuxHistoryEntry{}
	}
	s.sendSuccess(w, history)
}

// handlePlayerStats handles GET /api/players/{id}
func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ID", "Player id is required")
		return
	}

	record, err := s.store.GetPlayerStats(r.Context(), id)
	if err != nil {
		s.logger.Error("read player stats", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read player stats")
		return
	}
	if record == nil {
		s.sendError(w, http.StatusNotFound, "PLAYER_NOT_FOUND", "No stats for that player")
		return
	}
	s.sendSuccess(w, record)
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
