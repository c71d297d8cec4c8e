package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS player_stats (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	votes_received INTEGER NOT NULL DEFAULT 0,
	times_aux      INTEGER NOT NULL DEFAULT 0,
	keeps          INTEGER NOT NULL DEFAULT 0,
	passes         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS totals (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS aux_history (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	aux_id    TEXT NOT NULL,
	aux_name  TEXT NOT NULL,
	at_millis INTEGER NOT NULL
);
`

// statColumns whitelists the updatable player stat fields
var statColumns = map[string]string{
	FieldVotesReceived: "votes_received",
	FieldTimesAux:      "times_aux",
	FieldKeeps:         "keeps",
	FieldPasses:        "passes",
}

// SQLiteStore implements Store over a single SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the stats database and bootstraps the schema
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("stats db path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetPlayerStats returns the record for id, or nil when absent
func (s *SQLiteStore) GetPlayerStats(ctx context.Context, id string) (*PlayerStats, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, votes_received, times_aux, keeps, passes FROM player_stats WHERE id = ?`, id)

	var record PlayerStats
	err := row.Scan(&record.Name, &record.VotesReceived, &record.TimesAux, &record.Keeps, &record.Passes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player stats: %w", err)
	}
	return &record, nil
}

// SetPlayerStats upserts the full record for id
func (s *SQLiteStore) SetPlayerStats(ctx context.Context, id string, record PlayerStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_stats (id, name, votes_received, times_aux, keeps, passes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			votes_received = excluded.votes_received,
			times_aux = excluded.times_aux,
			keeps = excluded.keeps,
			passes = excluded.passes`,
		id, record.Name, record.VotesReceived, record.TimesAux, record.Keeps, record.Passes)
	if err != nil {
		return fmt.Errorf("set player stats: %w", err)
	}
	return nil
}

// UpdatePlayerStat applies fn to one stat field inside a transaction. An
// absent record reads as zero and is created on write.
func (s *SQLiteStore) UpdatePlayerStat(ctx context.Context, id, field string, fn func(current int) int) error {
	column, ok := statColumns[field]
	if !ok {
		return fmt.Errorf("unknown stat field %q", field)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var current int
	row := tx.QueryRowContext(ctx, `SELECT `+column+` FROM player_stats WHERE id = ?`, id)
	if err := row.Scan(&current); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read stat: %w", err)
	}

	next := fn(current)
	if next < 0 {
		next = 0
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO player_stats (id, name, `+column+`) VALUES (?, '', ?)
		ON CONFLICT (id) DO UPDATE SET `+column+` = ?`,
		id, next, next)
	if err != nil {
		return fmt.Errorf("write stat: %w", err)
	}

	return tx.Commit()
}

// IncrementTotal bumps a counter, creating it at 1
func (s *SQLiteStore) IncrementTotal(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO totals (key, value) VALUES (?, 1)
		ON CONFLICT (key) DO UPDATE SET value = value + 1`, key)
	if err != nil {
		return fmt.Errorf("increment total: %w", err)
	}
	return nil
}

// DecrementTotal lowers a counter, floored at zero
func (s *SQLiteStore) DecrementTotal(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO totals (key, value) VALUES (?, 0)
		ON CONFLICT (key) DO UPDATE SET value = MAX(0, value - 1)`, key)
	if err != nil {
		return fmt.Errorf("decrement total: %w", err)
	}
	return nil
}

// Totals returns all session-wide counters
func (s *SQLiteStore) Totals(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM totals`)
	if err != nil {
		return nil, fmt.Errorf("read totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		totals[key] = value
	}
	return totals, rows.Err()
}

// PushAuxHistory appends an aux election record
func (s *SQLiteStore) PushAuxHistory(ctx context.Context, entry AuxHistoryEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO aux_history (aux_id, aux_name, at_millis) VALUES (?, ?, ?)`,
		entry.AuxID, entry.AuxName, entry.Timestamp.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("push aux history: %w", err)
	}
	return nil
}

// AuxHistory returns the most recent elections, newest first
func (s *SQLiteStore) AuxHistory(ctx context.Context, limit int) ([]AuxHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT aux_id, aux_name, at_millis FROM aux_history ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("read aux history: %w", err)
	}
	defer rows.Close()

	var entries []AuxHistoryEntry
	for rows.Next() {
		var entry AuxHistoryEntry
		var millis int64
		if err := rows.Scan(&entry.AuxID, &entry.AuxName, &millis); err != nil {
			return nil, fmt.Errorf("scan aux history: %w", err)
		}
		entry.Timestamp = time.UnixMilli(millis).UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
