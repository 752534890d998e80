package domain

import "time"

type EventType string

const (
	EventSourceSelected EventType = "source_selected"
	EventLevelStarted   EventType = "level_started"
	EventLevelCompleted EventType = "level_completed"
)

// AnalyticsEvent is one learner interaction reported to the analytics sinks.
// Step, Attempts and DurationSeconds are nil when not applicable.
type AnalyticsEvent struct {
	ID              string
	SessionID       string
	Type            EventType
	SourceID        string
	SourceTitle     string
	Level           int
	Step            *int
	Attempts        *int
	DurationSeconds *int
	Success         *bool
	CreatedAt       time.Time
}

// WordSelection records the words a learner picked in one Level 1 evaluation.
type WordSelection struct {
	ID            string
	SessionID     string
	SourceID      string
	Step          int
	SelectedWords []string
	CorrectWords  []string
	Success       bool
	AttemptNumber int
	CreatedAt     time.Time
}
