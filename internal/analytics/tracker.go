package analytics

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/google/uuid"
)

// Tracker turns learner interactions into analytics events for one process
// session. It remembers when each level step started so completions carry a
// duration.
type Tracker struct {
	emitter   Emitter
	sessionID string
	now       func() time.Time

	mu     sync.Mutex
	starts map[string]time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

func WithSessionID(id string) TrackerOption {
	return func(t *Tracker) {
		if id != "" {
			t.sessionID = id
		}
	}
}

func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func NewTracker(emitter Emitter, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		emitter:   emitter,
		sessionID: uuid.New().String(),
		now:       time.Now,
		starts:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) SessionID() string { return t.sessionID }

func startKey(level, step int) string {
	return fmt.Sprintf("level%d_step%d", level, step)
}

func optionalStep(step int) *int {
	if step <= 0 {
		return nil
	}
	return &step
}

func (t *Tracker) activity(typ domain.EventType, src Source, level, step int) *domain.AnalyticsEvent {
	return &domain.AnalyticsEvent{
		ID:          uuid.New().String(),
		SessionID:   t.sessionID,
		Type:        typ,
		SourceID:    src.ID,
		SourceTitle: src.Title,
		Level:       level,
		Step:        optionalStep(step),
		CreatedAt:   t.now().UTC(),
	}
}

func (t *Tracker) SourceSelected(src Source) {
	t.emitter.Emit(Event{Activity: t.activity(domain.EventSourceSelected, src, 0, 0)})
}

// LevelStarted records the start time of a level step; step 0 means the
// level as a whole.
func (t *Tracker) LevelStarted(src Source, level, step int) {
	e := t.activity(domain.EventLevelStarted, src, level, step)
	t.mu.Lock()
	t.starts[startKey(level, step)] = e.CreatedAt
	t.mu.Unlock()
	t.emitter.Emit(Event{Activity: e})
}

// LevelCompleted reports the outcome with the whole seconds elapsed since the
// latest matching LevelStarted, or no duration when none was seen. The start
// is kept so repeated completions measure from the same point.
func (t *Tracker) LevelCompleted(src Source, level, step, attempts int, success bool) {
	e := t.activity(domain.EventLevelCompleted, src, level, step)
	e.Attempts = &attempts
	e.Success = &success

	t.mu.Lock()
	start, ok := t.starts[startKey(level, step)]
	t.mu.Unlock()
	if ok {
		secs := int(math.Round(e.CreatedAt.Sub(start).Seconds()))
		e.DurationSeconds = &secs
	}
	t.emitter.Emit(Event{Activity: e})
}

func (t *Tracker) WordSelection(src Source, step int, selected, correct []string, success bool, attempt int) {
	t.emitter.Emit(Event{Selection: &domain.WordSelection{
		ID:            uuid.New().String(),
		SessionID:     t.sessionID,
		SourceID:      src.ID,
		Step:          step,
		SelectedWords: append([]string(nil), selected...),
		CorrectWords:  append([]string(nil), correct...),
		Success:       success,
		AttemptNumber: attempt,
		CreatedAt:     t.now().UTC(),
	}})
}
