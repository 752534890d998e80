package service

import (
	"context"

	"github.com/alexanderramin/kallan/internal/analytics"
	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/progress"
	"github.com/alexanderramin/kallan/internal/rubric"
)

// SnapshotStore persists the single progress snapshot of a learner.
// Load returns repository.ErrNotFound when nothing has been saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) (progress.Snapshot, error)
	Save(ctx context.Context, s progress.Snapshot) error
	Clear(ctx context.Context) error
}

// ProgressService owns the in-memory progress snapshot and writes every
// transition through to the store.
type ProgressService interface {
	Load(ctx context.Context) progress.Snapshot
	Current() progress.Snapshot
	Complete(ctx context.Context, id domain.GateID) (progress.Snapshot, error)
	Reset(ctx context.Context) (progress.Snapshot, error)
}

type SourceService interface {
	List(ctx context.Context) ([]*rubric.Source, error)
	Get(ctx context.Context, id string) (*rubric.Source, error)
	Lint(ctx context.Context) ([]LintReport, error)
	LintFile(ctx context.Context, path string) LintReport
}

type StatsService interface {
	Dashboard(ctx context.Context, sourceTitle string) (*domain.Dashboard, error)
	WordSelections(ctx context.Context, sourceID string, step int) (*domain.WordSelectionStats, error)
	SessionEvents(ctx context.Context, sessionID string) ([]*domain.AnalyticsEvent, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// Tracker receives learner interactions for analytics. It never fails.
type Tracker interface {
	SourceSelected(src analytics.Source)
	LevelStarted(src analytics.Source, level, step int)
	LevelCompleted(src analytics.Source, level, step, attempts int, success bool)
	WordSelection(src analytics.Source, step int, selected, correct []string, success bool, attempt int)
}
