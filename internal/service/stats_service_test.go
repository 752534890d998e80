package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/kallan/internal/db"
	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/repository"
	"github.com/alexanderramin/kallan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_Dashboard(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteAnalyticsRepo(database)
	svc := NewStatsService(repo, testutil.NewTestUoW(database))
	ctx := context.Background()

	require.NoError(t, repo.InsertEvent(ctx, testutil.NewTestEvent(domain.EventSourceSelected, 0)))
	require.NoError(t, repo.InsertEvent(ctx, testutil.NewTestEvent(domain.EventLevelCompleted, 2,
		testutil.WithEventOutcome(true, 4), testutil.WithEventDuration(120))))
	require.NoError(t, repo.InsertEvent(ctx, testutil.NewTestEvent(domain.EventLevelCompleted, 2,
		testutil.WithEventOutcome(true, 1), testutil.WithEventSource("x", "Annan"))))

	d, err := svc.Dashboard(ctx, "")
	require.NoError(t, err)
	require.Len(t, d.Levels, 1)
	assert.Equal(t, 2, d.Levels[0].Completed)
	require.Len(t, d.Sources, 1)
	assert.Equal(t, "Testkälla", d.Sources[0].Title)

	filtered, err := svc.Dashboard(ctx, "Testkälla")
	require.NoError(t, err)
	assert.Equal(t, "Testkälla", filtered.SourceTitle)
	assert.Equal(t, 1, filtered.Levels[0].Completed)
}

func TestStatsService_WordSelections(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteAnalyticsRepo(database)
	svc := NewStatsService(repo, testutil.NewTestUoW(database))
	ctx := context.Background()

	require.NoError(t, repo.InsertWordSelection(ctx, testutil.NewTestWordSelection("src", 1, []string{"frihet"},
		testutil.WithSelectionSuccess(true))))

	stats, err := svc.WordSelections(ctx, "src", 1)
	require.NoError(t, err)
	assert.Equal(t, 100, stats.SuccessRate)

	_, err = svc.WordSelections(ctx, "src", 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.WordSelections(ctx, "src", 4)
	assert.Error(t, err)
}

func seedSession(t *testing.T, repo repository.AnalyticsRepo) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.InsertEvent(ctx, testutil.NewTestEvent(domain.EventSourceSelected, 0)))
	require.NoError(t, repo.InsertWordSelection(ctx, testutil.NewTestWordSelection("src", 1, []string{"a"})))
}

func TestStatsService_ClearSession(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteAnalyticsRepo(database)
	svc := NewStatsService(repo, testutil.NewTestUoW(database))
	ctx := context.Background()
	seedSession(t, repo)

	require.NoError(t, svc.ClearSession(ctx, testutil.TestSessionID))

	events, err := svc.SessionEvents(ctx, testutil.TestSessionID)
	require.NoError(t, err)
	assert.Empty(t, events)
	_, err = repo.WordSelectionStats(ctx, "src", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStatsService_ClearSessionRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteAnalyticsRepo(database)
	injected := errors.New("injected failure")
	var uow db.UnitOfWork = &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: injected}
	svc := NewStatsService(repo, uow)
	ctx := context.Background()
	seedSession(t, repo)

	err := svc.ClearSession(ctx, testutil.TestSessionID)
	assert.ErrorIs(t, err, injected)

	events, err := svc.SessionEvents(ctx, testutil.TestSessionID)
	require.NoError(t, err)
	assert.Len(t, events, 1, "event delete is rolled back with the failed selection delete")
	stats, err := repo.WordSelectionStats(ctx, "src", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalAttempts)
}
