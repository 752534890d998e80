package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/go-resty/resty/v2"
)

// StatusError reports a non-2xx answer from the analytics endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analytics endpoint: status %d: %s", e.Code, e.Body)
}

// HTTPConfig configures HTTPSink.
type HTTPConfig struct {
	// BaseURL is the REST root; events are posted to BaseURL/analytics_events
	// and BaseURL/word_selections.
	BaseURL string
	APIKey  string
	Timeout time.Duration

	MaxAttempts  int
	InitialDelay time.Duration
	// FailureThreshold is the number of consecutive failures that opens the
	// circuit.
	FailureThreshold int
	OpenTimeout      time.Duration

	Logger *slog.Logger
}

// DefaultHTTPConfig returns the remote sink defaults.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:          5 * time.Second,
		MaxAttempts:      3,
		InitialDelay:     200 * time.Millisecond,
		FailureThreshold: 3,
		OpenTimeout:      30 * time.Second,
	}
}

// HTTPSink posts events to a remote REST endpoint with retries and a
// circuit breaker.
type HTTPSink struct {
	client  *resty.Client
	breaker circuitbreaker.CircuitBreaker[*resty.Response]
	retrier retry.Retry[*resty.Response]
	logger  *slog.Logger
}

func NewHTTPSink(cfg HTTPConfig) (*HTTPSink, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("analytics endpoint: base url is required")
	}
	def := DefaultHTTPConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("apikey", cfg.APIKey).SetAuthToken(cfg.APIKey)
	}

	s := &HTTPSink{client: client, logger: logger}
	s.breaker = circuitbreaker.New[*resty.Response](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.FailureThreshold
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("analytics circuit breaker state change",
				"from", from.String(),
				"to", to.String())
		},
	})
	s.retrier = retry.New[*resty.Response](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      5 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryable,
	})
	return s, nil
}

func (s *HTTPSink) Record(ctx context.Context, e Event) error {
	path, body, err := remotePayload(e)
	if err != nil {
		return err
	}
	_, err = s.breaker.Execute(ctx, func(ctx context.Context) (*resty.Response, error) {
		return s.retrier.Do(ctx, func(ctx context.Context) (*resty.Response, error) {
			return s.post(ctx, path, body)
		})
	})
	if err != nil {
		return fmt.Errorf("posting %s: %w", e.Name(), err)
	}
	return nil
}

func (s *HTTPSink) post(ctx context.Context, path string, body any) (*resty.Response, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return resp, &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}
	return resp, nil
}

// isRetryable retries transport failures, throttling and server errors.
// Other client errors are final.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}

type eventPayload struct {
	SessionID       string `json:"session_id"`
	EventType       string `json:"event_type"`
	SourceID        string `json:"source_id,omitempty"`
	SourceTitle     string `json:"source_title,omitempty"`
	Level           *int   `json:"level,omitempty"`
	Step            *int   `json:"step,omitempty"`
	Attempts        *int   `json:"attempts,omitempty"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
	Success         *bool  `json:"success,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type selectionPayload struct {
	SessionID     string   `json:"session_id"`
	SourceID      string   `json:"source_id"`
	Step          int      `json:"step"`
	SelectedWords []string `json:"selected_words"`
	CorrectWords  []string `json:"correct_words"`
	Success       bool     `json:"success"`
	AttemptNumber int      `json:"attempt_number"`
	CreatedAt     string   `json:"created_at"`
}

func remotePayload(e Event) (string, any, error) {
	switch {
	case e.Activity != nil:
		a := e.Activity
		p := eventPayload{
			SessionID:       a.SessionID,
			EventType:       string(a.Type),
			SourceID:        a.SourceID,
			SourceTitle:     a.SourceTitle,
			Step:            a.Step,
			Attempts:        a.Attempts,
			DurationSeconds: a.DurationSeconds,
			Success:         a.Success,
			CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if a.Level > 0 {
			level := a.Level
			p.Level = &level
		}
		return "/analytics_events", p, nil
	case e.Selection != nil:
		w := e.Selection
		return "/word_selections", selectionPayload{
			SessionID:     w.SessionID,
			SourceID:      w.SourceID,
			Step:          w.Step,
			SelectedWords: nonNil(w.SelectedWords),
			CorrectWords:  nonNil(w.CorrectWords),
			Success:       w.Success,
			AttemptNumber: w.AttemptNumber,
			CreatedAt:     w.CreatedAt.UTC().Format(time.RFC3339),
		}, nil
	default:
		return "", nil, ErrEmptyEvent
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
