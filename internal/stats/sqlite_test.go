package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}

func TestSQLiteStore_PlayerStatsRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	record, err := store.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, record)

	want := PlayerStats{Name: "alice", VotesReceived: 3, TimesAux: 2, Keeps: 1, Passes: 1}
	require.NoError(t, store.SetPlayerStats(ctx, "p1", want))

	record, err = store.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, want, *record)

	// Upsert replaces in place
	want.Name = "alicia"
	want.Keeps = 5
	require.NoError(t, store.SetPlayerStats(ctx, "p1", want))

	record, err = store.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, want, *record)
}

func TestSQLiteStore_UpdatePlayerStat(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// An absent record reads as zero and is created on write
	require.NoError(t, store.UpdatePlayerStat(ctx, "p1", FieldVotesReceived, Increment))
	require.NoError(t, store.UpdatePlayerStat(ctx, "p1", FieldVotesReceived, Increment))

	record, err := store.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 2, record.VotesReceived)

	// Decrements floor at zero even when applied repeatedly
	require.NoError(t, store.UpdatePlayerStat(ctx, "p1", FieldKeeps, Decrement))
	require.NoError(t, store.UpdatePlayerStat(ctx, "p1", FieldKeeps, Decrement))

	record, err = store.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, record.Keeps)
}

func TestSQLiteStore_UpdatePlayerStat_UnknownField(t *testing.T) {
	store := openTestStore(t)
	err := store.UpdatePlayerStat(context.Background(), "p1", "bogus", Increment)
	assert.Error(t, err)
}

func TestSQLiteStore_Totals(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.IncrementTotal(ctx, TotalVotes))
	require.NoError(t, store.IncrementTotal(ctx, TotalVotes))
	require.NoError(t, store.IncrementTotal(ctx, TotalKeeps))
	require.NoError(t, store.DecrementTotal(ctx, TotalKeeps))

	// Decrementing an absent key creates it at zero, never below
	require.NoError(t, store.DecrementTotal(ctx, TotalPasses))

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, totals[TotalVotes])
	assert.Equal(t, 0, totals[TotalKeeps])
	assert.Equal(t, 0, totals[TotalPasses])
}

func TestSQLiteStore_AuxHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.PushAuxHistory(ctx, AuxHistoryEntry{
			AuxID:     id,
			AuxName:   id,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.AuxHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, "c", entries[0].AuxID)
	assert.Equal(t, "b", entries[1].AuxID)
	assert.Equal(t, base.Add(2*time.Minute), entries[0].Timestamp)
}
