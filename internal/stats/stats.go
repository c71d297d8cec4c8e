package stats

import (
	"context"
	"time"
)

// Player stat fields understood by UpdatePlayerStat
const (
	FieldVotesReceived = "votesReceived"
	FieldTimesAux      = "timesAux"
	FieldKeeps         = "keeps"
	FieldPasses        = "passes"
)

// Session-wide totals keys
const (
	TotalVotes  = "totalVotes"
	TotalKeeps  = "totalKeeps"
	TotalPasses = "totalPasses"
)

// PlayerStats is the persisted record for one connection id. Identity is
// ephemeral by design; a reconnect gets a fresh id and a fresh record.
type PlayerStats struct {
	Name          string `json:"name"`
	VotesReceived int    `json:"votesReceived"`
	TimesAux      int    `json:"timesAux"`
	Keeps         int    `json:"keeps"`
	Passes        int    `json:"passes"`
}

// AuxHistoryEntry records one aux election
type AuxHistoryEntry struct {
	AuxID     string    `json:"auxId"`
	AuxName   string    `json:"auxName"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the persistence surface behind the sink. Implementations must
// treat DecrementTotal and negative stat updates as floored at zero.
type Store interface {
	GetPlayerStats(ctx context.Context, id string) (*PlayerStats, error)
	SetPlayerStats(ctx context.Context, id string, record PlayerStats) error
	UpdatePlayerStat(ctx context.Context, id, field string, fn func(current int) int) error
	IncrementTotal(ctx context.Context, key string) error
	DecrementTotal(ctx context.Context, key string) error
	Totals(ctx context.Context) (map[string]int, error)
	PushAuxHistory(ctx context.Context, entry AuxHistoryEntry) error
	AuxHistory(ctx context.Context, limit int) ([]AuxHistoryEntry, error)
	Close() error
}

// Recorder is the fire-and-forget surface the orchestrator writes through.
// Calls never block and failures are only observable in logs.
type Recorder interface {
	EnsurePlayer(id, name string)
	UpdatePlayerStat(id, field string, fn func(current int) int)
	IncrementTotal(key string)
	DecrementTotal(key string)
	PushAuxHistory(entry AuxHistoryEntry)
}

// Increment is a convenience mutation for UpdatePlayerStat
func Increment(current int) int {
	return current + 1
}

// Decrement floors the stat at zero
func Decrement(current int) int {
	if current <= 0 {
		return 0
	}
	return current - 1
}
