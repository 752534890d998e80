package analytics

import (
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureEmitter) Emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var himmler = Source{ID: "himmler", Title: "Himmlers tal"}

func newTestTracker() (*Tracker, *captureEmitter, *fakeClock) {
	em := &captureEmitter{}
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewTracker(em, WithSessionID("sess-1"), WithClock(clock.Now)), em, clock
}

func TestTracker_SessionIDDefaultsToUUID(t *testing.T) {
	a := NewTracker(&captureEmitter{})
	b := NewTracker(&captureEmitter{})
	assert.Len(t, a.SessionID(), 36)
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestTracker_SourceSelected(t *testing.T) {
	tr, em, _ := newTestTracker()

	tr.SourceSelected(himmler)

	require.Len(t, em.events, 1)
	a := em.events[0].Activity
	assert.Equal(t, domain.EventSourceSelected, a.Type)
	assert.Equal(t, "sess-1", a.SessionID)
	assert.Equal(t, "Himmlers tal", a.SourceTitle)
	assert.Nil(t, a.Step)
	assert.NotEmpty(t, a.ID)
}

func TestTracker_CompletionCarriesDuration(t *testing.T) {
	tr, em, clock := newTestTracker()

	tr.LevelStarted(himmler, 1, 2)
	clock.Advance(41*time.Second + 600*time.Millisecond)
	tr.LevelCompleted(himmler, 1, 2, 3, true)

	require.Len(t, em.events, 2)
	started := em.events[0].Activity
	assert.Equal(t, domain.EventLevelStarted, started.Type)
	require.NotNil(t, started.Step)
	assert.Equal(t, 2, *started.Step)

	done := em.events[1].Activity
	assert.Equal(t, domain.EventLevelCompleted, done.Type)
	require.NotNil(t, done.DurationSeconds)
	assert.Equal(t, 42, *done.DurationSeconds)
	assert.Equal(t, 3, *done.Attempts)
	assert.True(t, *done.Success)
}

func TestTracker_CompletionWithoutStartHasNoDuration(t *testing.T) {
	tr, em, _ := newTestTracker()

	tr.LevelStarted(himmler, 1, 1)
	tr.LevelCompleted(himmler, 2, 0, 1, false)

	done := em.events[1].Activity
	assert.Nil(t, done.DurationSeconds)
	assert.Nil(t, done.Step)
	assert.False(t, *done.Success)
}

func TestTracker_RepeatedCompletionsMeasureFromStart(t *testing.T) {
	tr, em, clock := newTestTracker()

	tr.LevelStarted(himmler, 3, 0)
	clock.Advance(10 * time.Second)
	tr.LevelCompleted(himmler, 3, 0, 1, false)
	clock.Advance(10 * time.Second)
	tr.LevelCompleted(himmler, 3, 0, 2, true)

	assert.Equal(t, 10, *em.events[1].Activity.DurationSeconds)
	assert.Equal(t, 20, *em.events[2].Activity.DurationSeconds)
}

func TestTracker_WordSelectionCopiesSlices(t *testing.T) {
	tr, em, _ := newTestTracker()
	selected := []string{"frihet", "makt"}

	tr.WordSelection(himmler, 1, selected, []string{"frihet"}, false, 2)
	selected[0] = "mutated"

	require.Len(t, em.events, 1)
	w := em.events[0].Selection
	require.NotNil(t, w)
	assert.Equal(t, []string{"frihet", "makt"}, w.SelectedWords)
	assert.Equal(t, "himmler", w.SourceID)
	assert.Equal(t, 2, w.AttemptNumber)
	assert.Equal(t, "sess-1", w.SessionID)
}
