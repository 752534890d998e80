package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/kallan/internal/db"
	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/repository"
)

type statsService struct {
	analytics repository.AnalyticsRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewStatsService(analytics repository.AnalyticsRepo, uow db.UnitOfWork, observers ...UseCaseObserver) StatsService {
	return &statsService{
		analytics: analytics,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *statsService) Dashboard(ctx context.Context, sourceTitle string) (d *domain.Dashboard, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "dashboard", startedAt, err, map[string]any{"source": sourceTitle})
	}()

	levels, err := s.analytics.LevelStats(ctx, sourceTitle)
	if err != nil {
		return nil, fmt.Errorf("loading level stats: %w", err)
	}
	sources, err := s.analytics.SourcePopularity(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading source popularity: %w", err)
	}
	return &domain.Dashboard{
		SourceTitle: sourceTitle,
		Levels:      levels,
		Sources:     sources,
	}, nil
}

func (s *statsService) WordSelections(ctx context.Context, sourceID string, step int) (*domain.WordSelectionStats, error) {
	if step < 1 || step > 3 {
		return nil, fmt.Errorf("word selections: step %d out of range 1-3", step)
	}
	return s.analytics.WordSelectionStats(ctx, sourceID, step)
}

func (s *statsService) SessionEvents(ctx context.Context, sessionID string) ([]*domain.AnalyticsEvent, error) {
	return s.analytics.SessionEvents(ctx, sessionID)
}

// ClearSession removes a session's events and selections atomically.
func (s *statsService) ClearSession(ctx context.Context, sessionID string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "clear-session", startedAt, err, map[string]any{"session": sessionID})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteAnalyticsRepo(tx).DeleteSession(ctx, sessionID)
	})
}
