package repository

import (
	"context"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/progress"
)

// ProgressRepo stores gate snapshots under a key. The CLI uses a single
// key per learner profile.
type ProgressRepo interface {
	Load(ctx context.Context, key string) (progress.Snapshot, error)
	Save(ctx context.Context, key string, s progress.Snapshot) error
	Delete(ctx context.Context, key string) error
}

type AnalyticsRepo interface {
	InsertEvent(ctx context.Context, e *domain.AnalyticsEvent) error
	InsertWordSelection(ctx context.Context, w *domain.WordSelection) error
	LevelStats(ctx context.Context, sourceTitle string) ([]domain.LevelStats, error)
	SourcePopularity(ctx context.Context) ([]domain.SourcePopularity, error)
	WordSelectionStats(ctx context.Context, sourceID string, step int) (*domain.WordSelectionStats, error)
	SessionEvents(ctx context.Context, sessionID string) ([]*domain.AnalyticsEvent, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
