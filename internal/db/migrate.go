package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillSessionIDs(db); err != nil {
		return fmt.Errorf("backfilling session ids: %w", err)
	}
	return nil
}

// migrateBackfillSessionIDs gives rows written before session tracking a
// stable placeholder session so that per-session queries still group them.
func migrateBackfillSessionIDs(db *sql.DB) error {
	for _, table := range []string{"analytics_events", "word_selections"} {
		if _, err := db.Exec(`UPDATE ` + table + ` SET session_id = 'legacy' WHERE session_id = ''`); err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS progress_snapshots (
		key        TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS analytics_events (
		id               TEXT PRIMARY KEY,
		session_id       TEXT NOT NULL DEFAULT '',
		event_type       TEXT NOT NULL
		                 CHECK(event_type IN ('source_selected','level_started','level_completed')),
		source_id        TEXT NOT NULL DEFAULT '',
		source_title     TEXT NOT NULL DEFAULT '',
		level            INTEGER NOT NULL DEFAULT 0,
		step             INTEGER,
		attempts         INTEGER,
		duration_seconds INTEGER,
		success          INTEGER,
		created_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_type ON analytics_events(event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_events_level ON analytics_events(level, step)`,

	`CREATE TABLE IF NOT EXISTS word_selections (
		id             TEXT PRIMARY KEY,
		session_id     TEXT NOT NULL DEFAULT '',
		source_id      TEXT NOT NULL,
		step           INTEGER NOT NULL CHECK(step BETWEEN 1 AND 3),
		selected_words TEXT NOT NULL DEFAULT '[]',
		correct_words  TEXT NOT NULL DEFAULT '[]',
		success        INTEGER NOT NULL DEFAULT 0,
		attempt_number INTEGER NOT NULL DEFAULT 1,
		created_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_selections_source_step ON word_selections(source_id, step)`,

	// Databases created before session tracking lack the column.
	`ALTER TABLE analytics_events ADD COLUMN session_id TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE word_selections ADD COLUMN session_id TEXT NOT NULL DEFAULT ''`,
}
