package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/progress"
	"github.com/alexanderramin/kallan/internal/repository"
	"github.com/alexanderramin/kallan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore is a SnapshotStore whose operations can be made to fail.
type stubStore struct {
	snap     progress.Snapshot
	has      bool
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
}

func (s *stubStore) Load(context.Context) (progress.Snapshot, error) {
	if s.loadErr != nil {
		return progress.Snapshot{}, s.loadErr
	}
	if !s.has {
		return progress.Snapshot{}, repository.ErrNotFound
	}
	return s.snap, nil
}

func (s *stubStore) Save(_ context.Context, snap progress.Snapshot) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snap, s.has = snap, true
	return nil
}

func (s *stubStore) Clear(context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.snap, s.has = progress.Snapshot{}, false
	return nil
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func newDBProgressService(t *testing.T) (ProgressService, SnapshotStore) {
	t.Helper()
	store := NewSnapshotStore(repository.NewSQLiteProgressRepo(testutil.NewTestDB(t)), "")
	logger, _ := bufferLogger()
	return NewProgressService(store, logger), store
}

func TestProgressService_LoadMissingStartsFresh(t *testing.T) {
	svc, _ := newDBProgressService(t)

	snap := svc.Load(context.Background())
	assert.Equal(t, domain.GateUnlocked, snap.State(domain.GateLevel1Step1))
	assert.Equal(t, domain.GateLocked, snap.State(domain.GateLevel1Step2))
}

func TestProgressService_CompletePersists(t *testing.T) {
	svc, store := newDBProgressService(t)
	ctx := context.Background()
	svc.Load(ctx)

	_, err := svc.Complete(ctx, domain.GateLevel1Step1)
	require.NoError(t, err)
	snap, err := svc.Complete(ctx, domain.GateLevel1Step2)
	require.NoError(t, err)
	assert.Equal(t, domain.GateUnlocked, snap.State(domain.GateLevel1Step3))

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Map(), stored.Map())

	// A second service instance resumes where the first stopped.
	again := NewProgressService(store, nil)
	resumed := again.Load(ctx)
	assert.Equal(t, 3, resumed.Level1StartStep())
}

func TestProgressService_CompleteLockedGate(t *testing.T) {
	store := &stubStore{}
	svc := NewProgressService(store, nil)
	svc.Load(context.Background())

	snap, err := svc.Complete(context.Background(), domain.GateLevel3)
	assert.ErrorIs(t, err, progress.ErrGateLocked)
	assert.Equal(t, domain.GateLocked, snap.State(domain.GateLevel3))
	assert.Zero(t, store.saves, "failed transitions are not saved")

	_, err = svc.Complete(context.Background(), domain.GateID("level9"))
	assert.ErrorIs(t, err, progress.ErrUnknownGate)
}

func TestProgressService_LoadFailureFallsBackAndLogs(t *testing.T) {
	logger, buf := bufferLogger()
	svc := NewProgressService(&stubStore{loadErr: errors.New("disk on fire")}, logger)

	snap := svc.Load(context.Background())
	assert.Equal(t, progress.Initial().Map(), snap.Map())
	assert.Contains(t, buf.String(), "disk on fire")
}

func TestProgressService_SaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	logger, buf := bufferLogger()
	store := &stubStore{saveErr: errors.New("read-only")}
	svc := NewProgressService(store, logger)
	ctx := context.Background()
	svc.Load(ctx)

	snap, err := svc.Complete(ctx, domain.GateLevel1Step1)
	require.NoError(t, err)
	assert.Equal(t, domain.GateCompleted, snap.State(domain.GateLevel1Step1))
	assert.Equal(t, domain.GateCompleted, svc.Current().State(domain.GateLevel1Step1))
	assert.Equal(t, 1, store.saves)
	assert.Contains(t, buf.String(), "progress save failed")
}

func TestProgressService_LoadNormalizes(t *testing.T) {
	stored := progress.FromMap(map[domain.GateID]domain.GateState{
		domain.GateLevel1Step1: domain.GateCompleted,
	})
	svc := NewProgressService(&stubStore{snap: stored, has: true}, nil)

	snap := svc.Load(context.Background())
	assert.Equal(t, domain.GateCompleted, snap.State(domain.GateLevel1Step1))
	assert.Equal(t, domain.GateLocked, snap.State(domain.GateLevel2))
}

func TestProgressService_Reset(t *testing.T) {
	svc, store := newDBProgressService(t)
	ctx := context.Background()
	svc.Load(ctx)
	_, err := svc.Complete(ctx, domain.GateLevel1Step1)
	require.NoError(t, err)

	snap, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, progress.Initial().Map(), snap.Map())
	assert.Equal(t, progress.Initial().Map(), svc.Current().Map())

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProgressService_ResetClearFailure(t *testing.T) {
	svc := NewProgressService(&stubStore{clearErr: errors.New("locked")}, nil)
	ctx := context.Background()
	svc.Load(ctx)
	_, err := svc.Complete(ctx, domain.GateLevel1Step1)
	require.NoError(t, err)

	snap, err := svc.Reset(ctx)
	assert.Error(t, err)
	assert.Equal(t, progress.Initial().Map(), snap.Map(), "memory resets even when the store cannot")
}

func TestProgressService_ObserverSeesUseCases(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewProgressService(&stubStore{}, nil, obs)
	ctx := context.Background()

	svc.Load(ctx)
	_, _ = svc.Complete(ctx, domain.GateLevel2)

	require.Len(t, obs.events, 2)
	assert.Equal(t, "load-progress", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, "complete-gate", obs.events[1].Name)
	assert.False(t, obs.events[1].Success)
	assert.Equal(t, "level2", obs.events[1].Fields["gate"])
}

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.events = append(r.events, e)
}
