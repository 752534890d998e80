package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/kallan/internal/db"
	"github.com/alexanderramin/kallan/internal/progress"
)

// DefaultProgressKey is the snapshot key used by the CLI.
const DefaultProgressKey = "kallanalys_progress"

// SQLiteProgressRepo implements ProgressRepo using a SQLite database.
type SQLiteProgressRepo struct {
	db db.DBTX
}

// NewSQLiteProgressRepo creates a new SQLiteProgressRepo.
func NewSQLiteProgressRepo(conn db.DBTX) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: conn}
}

func (r *SQLiteProgressRepo) Load(ctx context.Context, key string) (progress.Snapshot, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM progress_snapshots WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return progress.Snapshot{}, fmt.Errorf("progress snapshot %q: %w", key, ErrNotFound)
		}
		return progress.Snapshot{}, fmt.Errorf("loading progress snapshot: %w", err)
	}

	var s progress.Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return progress.Snapshot{}, fmt.Errorf("progress snapshot %q: %w", key, err)
	}
	return s, nil
}

func (r *SQLiteProgressRepo) Save(ctx context.Context, key string, s progress.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding progress snapshot: %w", err)
	}
	query := `INSERT INTO progress_snapshots (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, string(data), nowUTC()); err != nil {
		return fmt.Errorf("saving progress snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteProgressRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM progress_snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting progress snapshot: %w", err)
	}
	return nil
}
