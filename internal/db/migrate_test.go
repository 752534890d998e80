package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_RerunKeepsSchema(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	objects := []struct{ kind, name string }{
		{"table", "progress_snapshots"},
		{"table", "analytics_events"},
		{"table", "word_selections"},
		{"index", "idx_events_type"},
		{"index", "idx_events_level"},
		{"index", "idx_selections_source_step"},
	}
	for _, o := range objects {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`, o.kind, o.name).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "%s %s", o.kind, o.name)
	}
}

func TestOpenDB_Pragmas(t *testing.T) {
	db := openTestDB(t)

	// In-memory SQLite keeps its "memory" journal; WAL only applies to files.
	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "memory", mode)

	var timeout int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}

func TestOpenDB_FileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kallan.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenDB_PragmasOnEveryConnection(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "kallan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	// Hold the first connection so the pool has to open a second one.
	first, err := db.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := db.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for i, c := range []*sql.Conn{first, second} {
		var timeout, fk int
		require.NoError(t, c.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout))
		require.NoError(t, c.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
		assert.Equal(t, 5000, timeout, "connection %d", i+1)
		assert.Equal(t, 1, fk, "connection %d", i+1)
	}
}

func TestMigrate_EventTypeCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO analytics_events (id, event_type, created_at) VALUES ('e1', 'bogus', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "unknown event type should be rejected by CHECK constraint")

	_, err = db.Exec(`INSERT INTO analytics_events (id, event_type, created_at) VALUES ('e1', 'level_started', '2025-01-01T00:00:00Z')`)
	assert.NoError(t, err)
}

func TestMigrate_WordSelectionStepRange(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO word_selections (id, source_id, step, created_at) VALUES ('w1', 's', 4, '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "Level 1 has three steps")

	_, err = db.Exec(`INSERT INTO word_selections (id, source_id, step, created_at) VALUES ('w1', 's', 3, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	var selected string
	var attempt int
	err = db.QueryRow(`SELECT selected_words, attempt_number FROM word_selections WHERE id = 'w1'`).Scan(&selected, &attempt)
	require.NoError(t, err)
	assert.Equal(t, "[]", selected)
	assert.Equal(t, 1, attempt)
}

func TestMigrate_ProgressKeyUnique(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO progress_snapshots (key, data, updated_at) VALUES ('p', '{}', 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO progress_snapshots (key, data, updated_at) VALUES ('p', '{}', 'now')`)
	assert.Error(t, err, "snapshot key is the primary key")
}
