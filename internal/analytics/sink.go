package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexanderramin/kallan/internal/repository"
)

// ErrEmptyEvent is returned by sinks handed an Event with nothing set.
var ErrEmptyEvent = errors.New("empty analytics event")

// Sink records analytics events. Implementations may block; callers that
// must not wait go through a Dispatcher.
type Sink interface {
	Record(ctx context.Context, e Event) error
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) Record(context.Context, Event) error { return nil }

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, e Event) error {
	attrs := []any{"event", e.Name()}
	switch {
	case e.Activity != nil:
		a := e.Activity
		attrs = append(attrs,
			"session", a.SessionID,
			"source", a.SourceTitle,
			"level", a.Level,
		)
		if a.Step != nil {
			attrs = append(attrs, "step", *a.Step)
		}
		if a.Attempts != nil {
			attrs = append(attrs, "attempts", *a.Attempts)
		}
		if a.Success != nil {
			attrs = append(attrs, "success", *a.Success)
		}
		if a.DurationSeconds != nil {
			attrs = append(attrs, "duration_s", *a.DurationSeconds)
		}
	case e.Selection != nil:
		w := e.Selection
		attrs = append(attrs,
			"session", w.SessionID,
			"source", w.SourceID,
			"step", w.Step,
			"selected", len(w.SelectedWords),
			"success", w.Success,
			"attempt", w.AttemptNumber,
		)
	default:
		return ErrEmptyEvent
	}
	s.logger.InfoContext(ctx, "analytics", attrs...)
	return nil
}

// StoreSink persists events to the local analytics tables.
type StoreSink struct {
	repo repository.AnalyticsRepo
}

func NewStoreSink(repo repository.AnalyticsRepo) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Record(ctx context.Context, e Event) error {
	switch {
	case e.Activity != nil:
		return s.repo.InsertEvent(ctx, e.Activity)
	case e.Selection != nil:
		return s.repo.InsertWordSelection(ctx, e.Selection)
	default:
		return ErrEmptyEvent
	}
}

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
		}
	}
	return errors.Join(errs...)
}
