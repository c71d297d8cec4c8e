package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultWriteTimeout bounds each background store call
const DefaultWriteTimeout = 5 * time.Second

// Sink adapts a Store into a fire-and-forget Recorder. Every call is
// dispatched on its own goroutine so a slow or unavailable store can never
// stall a phase transition; failures are logged and dropped.
type Sink struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewSink creates a sink over the given store
func NewSink(store Store, logger *slog.Logger) *Sink {
	return &Sink{
		store:   store,
		logger:  logger,
		timeout: DefaultWriteTimeout,
	}
}

// EnsurePlayer creates a zeroed stats record for a new id, or refreshes the
// stored display name for a known one
func (s *Sink) EnsurePlayer(id, name string) {
	s.dispatch("ensure player", func(ctx context.Context) error {
		record, err := s.store.GetPlayerStats(ctx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return s.store.SetPlayerStats(ctx, id, PlayerStats{Name: name})
		}
		if record.Name != name {
			record.Name = name
			return s.store.SetPlayerStats(ctx, id, *record)
		}
		return nil
	})
}

// UpdatePlayerStat applies fn to one player stat field
func (s *Sink) UpdatePlayerStat(id, field string, fn func(current int) int) {
	s.dispatch("update player stat", func(ctx context.Context) error {
		return s.store.UpdatePlayerStat(ctx, id, field, fn)
	})
}

// IncrementTotal bumps a session-wide counter
func (s *Sink) IncrementTotal(key string) {
	s.dispatch("increment total", func(ctx context.Context) error {
		return s.store.IncrementTotal(ctx, key)
	})
}

// DecrementTotal lowers a session-wide counter, floored at zero
func (s *Sink) DecrementTotal(key string) {
	s.dispatch("decrement total", func(ctx context.Context) error {
		return s.store.DecrementTotal(ctx, key)
	})
}

// PushAuxHistory appends an aux election record
func (s *Sink) PushAuxHistory(entry AuxHistoryEntry) {
	s.dispatch("push aux history", func(ctx context.Context) error {
		return s.store.PushAuxHistory(ctx, entry)
	})
}

// Wait blocks until all in-flight writes settle. Intended for shutdown and
// tests, never for the game loop.
func (s *Sink) Wait() {
	s.wg.Wait()
}

func (s *Sink) dispatch(op string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.logger.Warn("stats write failed", "op", op, "error", err)
		}
	}()
}
