package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/kallan/internal/db"
	"github.com/alexanderramin/kallan/internal/domain"
)

// SQLiteAnalyticsRepo implements AnalyticsRepo using a SQLite database.
type SQLiteAnalyticsRepo struct {
	db db.DBTX
}

// NewSQLiteAnalyticsRepo creates a new SQLiteAnalyticsRepo.
func NewSQLiteAnalyticsRepo(conn db.DBTX) *SQLiteAnalyticsRepo {
	return &SQLiteAnalyticsRepo{db: conn}
}

func (r *SQLiteAnalyticsRepo) InsertEvent(ctx context.Context, e *domain.AnalyticsEvent) error {
	query := `INSERT INTO analytics_events (id, session_id, event_type, source_id, source_title,
		level, step, attempts, duration_seconds, success, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.SessionID,
		string(e.Type),
		e.SourceID,
		e.SourceTitle,
		e.Level,
		nullableIntToValue(e.Step),
		nullableIntToValue(e.Attempts),
		nullableIntToValue(e.DurationSeconds),
		nullableBoolToValue(e.Success),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting analytics event: %w", err)
	}
	return nil
}

func (r *SQLiteAnalyticsRepo) InsertWordSelection(ctx context.Context, w *domain.WordSelection) error {
	selected, err := json.Marshal(nonNil(w.SelectedWords))
	if err != nil {
		return fmt.Errorf("encoding selected words: %w", err)
	}
	correct, err := json.Marshal(nonNil(w.CorrectWords))
	if err != nil {
		return fmt.Errorf("encoding correct words: %w", err)
	}
	query := `INSERT INTO word_selections (id, session_id, source_id, step, selected_words,
		correct_words, success, attempt_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		w.ID,
		w.SessionID,
		w.SourceID,
		w.Step,
		string(selected),
		string(correct),
		boolToInt(w.Success),
		w.AttemptNumber,
		formatTime(w.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting word selection: %w", err)
	}
	return nil
}

// LevelStats aggregates level_completed events per level and step. An empty
// sourceTitle covers every source.
func (r *SQLiteAnalyticsRepo) LevelStats(ctx context.Context, sourceTitle string) ([]domain.LevelStats, error) {
	query := `SELECT level, COALESCE(step, 0),
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN success = 1 THEN 0 ELSE 1 END),
			AVG(CASE WHEN duration_seconds > 0 THEN duration_seconds END)
		FROM analytics_events
		WHERE event_type = 'level_completed'
		  AND (? = '' OR source_title = ?)
		GROUP BY level, COALESCE(step, 0)
		ORDER BY level, COALESCE(step, 0)`
	rows, err := r.db.QueryContext(ctx, query, sourceTitle, sourceTitle)
	if err != nil {
		return nil, fmt.Errorf("querying level stats: %w", err)
	}
	defer rows.Close()

	var out []domain.LevelStats
	for rows.Next() {
		var s domain.LevelStats
		var avg sql.NullFloat64
		if err := rows.Scan(&s.Level, &s.Step, &s.Completed, &s.Failed, &avg); err != nil {
			return nil, fmt.Errorf("scanning level stats: %w", err)
		}
		if avg.Valid {
			d := int(math.Round(avg.Float64))
			s.AvgDuration = &d
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SourcePopularity counts source_selected events per title, most popular first.
func (r *SQLiteAnalyticsRepo) SourcePopularity(ctx context.Context) ([]domain.SourcePopularity, error) {
	query := `SELECT source_title, COUNT(*) AS n
		FROM analytics_events
		WHERE event_type = 'source_selected' AND source_title != ''
		GROUP BY source_title
		ORDER BY n DESC, source_title`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying source popularity: %w", err)
	}
	defer rows.Close()

	var out []domain.SourcePopularity
	for rows.Next() {
		var p domain.SourcePopularity
		if err := rows.Scan(&p.Title, &p.Count); err != nil {
			return nil, fmt.Errorf("scanning source popularity: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// WordSelectionStats summarizes every recorded selection for a source step.
// The correct words are taken from the oldest row.
func (r *SQLiteAnalyticsRepo) WordSelectionStats(ctx context.Context, sourceID string, step int) (*domain.WordSelectionStats, error) {
	query := `SELECT selected_words, correct_words, success
		FROM word_selections
		WHERE source_id = ? AND step = ?
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, sourceID, step)
	if err != nil {
		return nil, fmt.Errorf("querying word selections: %w", err)
	}
	defer rows.Close()

	stats := &domain.WordSelectionStats{WordFrequency: make(map[string]int)}
	successes := 0
	for rows.Next() {
		var selectedJSON, correctJSON string
		var success int
		if err := rows.Scan(&selectedJSON, &correctJSON, &success); err != nil {
			return nil, fmt.Errorf("scanning word selection: %w", err)
		}
		var selected []string
		if err := json.Unmarshal([]byte(selectedJSON), &selected); err != nil {
			return nil, fmt.Errorf("decoding selected words: %w", err)
		}
		if stats.TotalAttempts == 0 {
			if err := json.Unmarshal([]byte(correctJSON), &stats.CorrectWords); err != nil {
				return nil, fmt.Errorf("decoding correct words: %w", err)
			}
		}
		stats.TotalAttempts++
		if intToBool(success) {
			successes++
		}
		for _, w := range selected {
			stats.WordFrequency[w]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if stats.TotalAttempts == 0 {
		return nil, fmt.Errorf("word selections for %s step %d: %w", sourceID, step, ErrNotFound)
	}
	stats.SuccessRate = int(math.Round(float64(successes) * 100 / float64(stats.TotalAttempts)))
	return stats, nil
}

// SessionEvents lists the events of one session in the order they were recorded.
func (r *SQLiteAnalyticsRepo) SessionEvents(ctx context.Context, sessionID string) ([]*domain.AnalyticsEvent, error) {
	query := `SELECT id, session_id, event_type, source_id, source_title, level,
			step, attempts, duration_seconds, success, created_at
		FROM analytics_events
		WHERE session_id = ?
		ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session events: %w", err)
	}
	defer rows.Close()

	var out []*domain.AnalyticsEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(rows *sql.Rows) (*domain.AnalyticsEvent, error) {
	var e domain.AnalyticsEvent
	var typ, createdAt string
	var step, attempts, duration, success sql.NullInt64
	err := rows.Scan(&e.ID, &e.SessionID, &typ, &e.SourceID, &e.SourceTitle, &e.Level,
		&step, &attempts, &duration, &success, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scanning analytics event: %w", err)
	}
	e.Type = domain.EventType(typ)
	e.Step = nullIntPtr(step)
	e.Attempts = nullIntPtr(attempts)
	e.DurationSeconds = nullIntPtr(duration)
	if success.Valid {
		b := intToBool(int(success.Int64))
		e.Success = &b
	}
	e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing event time: %w", err)
	}
	return &e, nil
}

// DeleteSession removes every event and selection recorded in one session.
func (r *SQLiteAnalyticsRepo) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM analytics_events WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting session events: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM word_selections WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting session selections: %w", err)
	}
	return nil
}

// TopWords returns the n most frequently selected words, ties broken
// alphabetically.
func TopWords(freq map[string]int, n int) []string {
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if n >= 0 && len(words) > n {
		words = words[:n]
	}
	return words
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
