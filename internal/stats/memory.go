package stats

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store for tests and diskless runs
type MemoryStore struct {
	mu      sync.Mutex
	players map[string]PlayerStats
	totals  map[string]int
	history []AuxHistoryEntry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]PlayerStats),
		totals:  make(map[string]int),
	}
}

// GetPlayerStats returns the record for id, or nil when absent
func (s *MemoryStore) GetPlayerStats(_ context.Context, id string) (*PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.players[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// SetPlayerStats upserts the full record for id
func (s *MemoryStore) SetPlayerStats(_ context.Context, id string, record PlayerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[id] = record
	return nil
}

// UpdatePlayerStat applies fn to one stat field
func (s *MemoryStore) UpdatePlayerStat(_ context.Context, id, field string, fn func(current int) int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.players[id]
	var current *int
	switch field {
	case FieldVotesReceived:
		current = &record.VotesReceived
	case FieldTimesAux:
		current = &record.TimesAux
	case FieldKeeps:
		current = &record.Keeps
	case FieldPasses:
		current = &record.Passes
	default:
		return fmt.Errorf("unknown stat field %q", field)
	}

	next := fn(*current)
	if next < 0 {
		next = 0
	}
	*current = next
	s.players[id] = record
	return nil
}

// IncrementTotal bumps a counter
func (s *MemoryStore) IncrementTotal(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[key]++
	return nil
}

// DecrementTotal lowers a counter, floored at zero
func (s *MemoryStore) DecrementTotal(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.totals[key] > 0 {
		s.totals[key]--
	}
	return nil
}

// Totals returns a copy of all counters
func (s *MemoryStore) Totals(_ context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]int, len(s.totals))
	for key, value := range s.totals {
		totals[key] = value
	}
	return totals, nil
}

// PushAuxHistory appends an aux election record
func (s *MemoryStore) PushAuxHistory(_ context.Context, entry AuxHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, entry)
	return nil
}

// AuxHistory returns the most recent elections, newest first
func (s *MemoryStore) AuxHistory(_ context.Context, limit int) ([]AuxHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]AuxHistoryEntry, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, s.history[i])
	}
	return entries, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
