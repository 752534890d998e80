package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/progress"
	"github.com/alexanderramin/kallan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressRepo_LoadMissing(t *testing.T) {
	repo := NewSQLiteProgressRepo(testutil.NewTestDB(t))

	_, err := repo.Load(context.Background(), DefaultProgressKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProgressRepo_SaveAndLoad(t *testing.T) {
	repo := NewSQLiteProgressRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	snap, err := progress.Complete(progress.Initial(), domain.GateLevel1Step1)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, DefaultProgressKey, snap))

	loaded, err := repo.Load(ctx, DefaultProgressKey)
	require.NoError(t, err)
	assert.Equal(t, domain.GateCompleted, loaded.State(domain.GateLevel1Step1))
	assert.Equal(t, domain.GateUnlocked, loaded.State(domain.GateLevel1Step2))
	assert.Equal(t, domain.GateLocked, loaded.State(domain.GateLevel2))
}

func TestProgressRepo_SaveOverwrites(t *testing.T) {
	repo := NewSQLiteProgressRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	first, err := progress.Complete(progress.Initial(), domain.GateLevel1Step1)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "k", first))

	second, err := progress.Complete(first, domain.GateLevel1Step2)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "k", second))

	loaded, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, domain.GateCompleted, loaded.State(domain.GateLevel1Step2))
	assert.Equal(t, domain.GateUnlocked, loaded.State(domain.GateLevel1Step3))
}

func TestProgressRepo_KeysAreIndependent(t *testing.T) {
	repo := NewSQLiteProgressRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	snap, err := progress.Complete(progress.Initial(), domain.GateLevel1Step1)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "anna", snap))
	require.NoError(t, repo.Save(ctx, "bo", progress.Initial()))

	anna, err := repo.Load(ctx, "anna")
	require.NoError(t, err)
	bo, err := repo.Load(ctx, "bo")
	require.NoError(t, err)
	assert.Equal(t, domain.GateCompleted, anna.State(domain.GateLevel1Step1))
	assert.Equal(t, domain.GateUnlocked, bo.State(domain.GateLevel1Step1))
}

func TestProgressRepo_CorruptDataIsNormalized(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProgressRepo(database)
	ctx := context.Background()

	_, err := database.Exec(`INSERT INTO progress_snapshots (key, data, updated_at)
		VALUES ('k', '{"level1_step1":"bogus","level2":"completed"}', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, domain.GateUnlocked, loaded.State(domain.GateLevel1Step1))
	assert.Equal(t, domain.GateCompleted, loaded.State(domain.GateLevel2))
}

func TestProgressRepo_InvalidJSON(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProgressRepo(database)

	_, err := database.Exec(`INSERT INTO progress_snapshots (key, data, updated_at)
		VALUES ('k', 'not json', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = repo.Load(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestProgressRepo_Delete(t *testing.T) {
	repo := NewSQLiteProgressRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "k", progress.Initial()))
	require.NoError(t, repo.Delete(ctx, "k"))

	_, err := repo.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error.
	assert.NoError(t, repo.Delete(ctx, "k"))
}
