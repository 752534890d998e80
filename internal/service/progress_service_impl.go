package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/progress"
	"github.com/alexanderramin/kallan/internal/repository"
)

type progressService struct {
	store    SnapshotStore
	logger   *slog.Logger
	observer UseCaseObserver

	mu      sync.Mutex
	current progress.Snapshot
}

func NewProgressService(store SnapshotStore, logger *slog.Logger, observers ...UseCaseObserver) ProgressService {
	if logger == nil {
		logger = slog.Default()
	}
	return &progressService{
		store:    store,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
		current:  progress.Initial(),
	}
}

// Load replaces the in-memory snapshot with the stored one. A missing or
// unreadable snapshot falls back to the initial state; the failure is logged
// and never surfaces to the caller.
func (s *progressService) Load(ctx context.Context) progress.Snapshot {
	startedAt := time.Now()
	snap, err := s.store.Load(ctx)
	switch {
	case err == nil:
		snap = progress.Normalize(snap)
	case errors.Is(err, repository.ErrNotFound):
		snap = progress.Initial()
		err = nil
	default:
		s.logger.WarnContext(ctx, "progress load failed, starting from the beginning", "error", err)
		snap = progress.Initial()
	}
	observe(ctx, s.observer, "load-progress", startedAt, err, nil)

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return snap
}

func (s *progressService) Current() progress.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Complete applies the transition and saves the result before returning. A
// failed save is logged; the in-memory snapshot still advances.
func (s *progressService) Complete(ctx context.Context, id domain.GateID) (snap progress.Snapshot, err error) {
	startedAt := time.Now()
	fields := map[string]any{"gate": string(id)}
	defer func() { observe(ctx, s.observer, "complete-gate", startedAt, err, fields) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := progress.Complete(s.current, id)
	if err != nil {
		return s.current, err
	}
	s.current = next
	if saveErr := s.store.Save(ctx, next); saveErr != nil {
		fields["saved"] = false
		s.logger.WarnContext(ctx, "progress save failed", "gate", id, "error", saveErr)
	}
	return next, nil
}

// Reset returns to the initial state and removes the stored snapshot.
func (s *progressService) Reset(ctx context.Context) (snap progress.Snapshot, err error) {
	startedAt := time.Now()
	defer func() { observe(ctx, s.observer, "reset-progress", startedAt, err, nil) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = progress.Initial()
	if err := s.store.Clear(ctx); err != nil {
		return s.current, err
	}
	return s.current, nil
}
