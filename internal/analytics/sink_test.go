package analytics

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/repository"
	"github.com/alexanderramin/kallan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{ err error }

func (f failingSink) Record(context.Context, Event) error { return f.err }

func TestEvent_Name(t *testing.T) {
	assert.Equal(t, "source_selected", Event{Activity: testutil.NewTestEvent(domain.EventSourceSelected, 0)}.Name())
	assert.Equal(t, "word_selection", Event{Selection: testutil.NewTestWordSelection("s", 1, nil)}.Name())
	assert.Equal(t, "empty", Event{}.Name())
}

func TestLogSink_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	e := testutil.NewTestEvent(domain.EventLevelCompleted, 1,
		testutil.WithEventStep(2), testutil.WithEventOutcome(true, 3), testutil.WithEventDuration(12))
	require.NoError(t, sink.Record(context.Background(), Event{Activity: e}))

	out := buf.String()
	assert.Contains(t, out, "event=level_completed")
	assert.Contains(t, out, "step=2")
	assert.Contains(t, out, "attempts=3")
	assert.Contains(t, out, "duration_s=12")

	assert.ErrorIs(t, sink.Record(context.Background(), Event{}), ErrEmptyEvent)
}

func TestStoreSink_PersistsBothKinds(t *testing.T) {
	repo := repository.NewSQLiteAnalyticsRepo(testutil.NewTestDB(t))
	sink := NewStoreSink(repo)
	ctx := context.Background()

	require.NoError(t, sink.Record(ctx, Event{Activity: testutil.NewTestEvent(domain.EventSourceSelected, 0)}))
	require.NoError(t, sink.Record(ctx, Event{Selection: testutil.NewTestWordSelection("src", 1, []string{"frihet"})}))

	events, err := repo.SessionEvents(ctx, testutil.TestSessionID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	stats, err := repo.WordSelectionStats(ctx, "src", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalAttempts)

	assert.ErrorIs(t, sink.Record(ctx, Event{}), ErrEmptyEvent)
}

func TestMultiSink_JoinsErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	m := MultiSink{failingSink{first}, NoopSink{}, failingSink{second}}

	err := m.Record(context.Background(), Event{})
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)

	assert.NoError(t, MultiSink{NoopSink{}}.Record(context.Background(), Event{}))
}

func TestBuildSink(t *testing.T) {
	repo := repository.NewSQLiteAnalyticsRepo(testutil.NewTestDB(t))
	deps := SinkDeps{Repo: repo, HTTP: HTTPConfig{BaseURL: "http://localhost:1"}}

	s, err := BuildSink(nil, deps)
	require.NoError(t, err)
	assert.IsType(t, NoopSink{}, s)

	s, err = BuildSink([]string{"store"}, deps)
	require.NoError(t, err)
	assert.IsType(t, &StoreSink{}, s)

	s, err = BuildSink([]string{"log", " Store ", "store"}, deps)
	require.NoError(t, err)
	require.IsType(t, MultiSink{}, s)
	assert.Len(t, s.(MultiSink), 2)

	s, err = BuildSink([]string{"store", "off"}, deps)
	require.NoError(t, err)
	assert.IsType(t, NoopSink{}, s)

	s, err = BuildSink([]string{"remote"}, deps)
	require.NoError(t, err)
	assert.IsType(t, &HTTPSink{}, s)

	_, err = BuildSink([]string{"kafka"}, deps)
	assert.Error(t, err)

	_, err = BuildSink([]string{"store"}, SinkDeps{})
	assert.Error(t, err)

	_, err = BuildSink([]string{"remote"}, SinkDeps{})
	assert.Error(t, err)
}
