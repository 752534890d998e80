package testutil

import (
	"time"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/google/uuid"
)

// TestSessionID is the session stamped on fixtures unless overridden.
const TestSessionID = "test-session"

func BoolPtr(b bool) *bool { return &b }

// Event options
type EventOption func(*domain.AnalyticsEvent)

func WithEventSession(id string) EventOption {
	return func(e *domain.AnalyticsEvent) {
		e.SessionID = id
	}
}

func WithEventSource(id, title string) EventOption {
	return func(e *domain.AnalyticsEvent) {
		e.SourceID = id
		e.SourceTitle = title
	}
}

func WithEventStep(step int) EventOption {
	return func(e *domain.AnalyticsEvent) {
		e.Step = &step
	}
}

func WithEventOutcome(success bool, attempts int) EventOption {
	return func(e *domain.AnalyticsEvent) {
		e.Success = &success
		e.Attempts = &attempts
	}
}

func WithEventDuration(seconds int) EventOption {
	return func(e *domain.AnalyticsEvent) {
		e.DurationSeconds = &seconds
	}
}

func WithEventTime(t time.Time) EventOption {
	return func(e *domain.AnalyticsEvent) {
		e.CreatedAt = t
	}
}

func NewTestEvent(typ domain.EventType, level int, opts ...EventOption) *domain.AnalyticsEvent {
	e := &domain.AnalyticsEvent{
		ID:          uuid.New().String(),
		SessionID:   TestSessionID,
		Type:        typ,
		SourceID:    "test-source",
		SourceTitle: "Testkälla",
		Level:       level,
		CreatedAt:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Word selection options
type SelectionOption func(*domain.WordSelection)

func WithSelectionSession(id string) SelectionOption {
	return func(w *domain.WordSelection) {
		w.SessionID = id
	}
}

func WithSelectionSuccess(success bool) SelectionOption {
	return func(w *domain.WordSelection) {
		w.Success = success
	}
}

func WithCorrect(words ...string) SelectionOption {
	return func(w *domain.WordSelection) {
		w.CorrectWords = words
	}
}

func WithAttemptNumber(n int) SelectionOption {
	return func(w *domain.WordSelection) {
		w.AttemptNumber = n
	}
}

func WithSelectionTime(t time.Time) SelectionOption {
	return func(w *domain.WordSelection) {
		w.CreatedAt = t
	}
}

func NewTestWordSelection(sourceID string, step int, selected []string, opts ...SelectionOption) *domain.WordSelection {
	w := &domain.WordSelection{
		ID:            uuid.New().String(),
		SessionID:     TestSessionID,
		SourceID:      sourceID,
		Step:          step,
		SelectedWords: selected,
		AttemptNumber: 1,
		CreatedAt:     time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}
