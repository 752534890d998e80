package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize bounds the number of events waiting for the sink.
const DefaultQueueSize = 64

// DefaultRecordTimeout caps a single Sink.Record call.
const DefaultRecordTimeout = 10 * time.Second

// Emitter accepts events without blocking the caller.
type Emitter interface {
	Emit(e Event)
}

// Dispatcher forwards events to a Sink from a single background goroutine.
// Emit never blocks: when the queue is full the event is dropped and logged.
type Dispatcher struct {
	sink    Sink
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	dropped atomic.Int64
	failed  atomic.Int64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Event, n)
		}
	}
}

func WithRecordTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher starts the worker goroutine. Close must be called to stop it.
func NewDispatcher(sink Sink, opts ...DispatcherOption) *Dispatcher {
	if sink == nil {
		sink = NoopSink{}
	}
	d := &Dispatcher{
		sink:    sink,
		logger:  slog.Default(),
		timeout: DefaultRecordTimeout,
		queue:   make(chan Event, DefaultQueueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	go d.run()
	return d
}

func (d *Dispatcher) Emit(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(e, "closed")
		return
	}
	select {
	case d.queue <- e:
	default:
		d.drop(e, "queue full")
	}
}

func (d *Dispatcher) drop(e Event, reason string) {
	d.dropped.Add(1)
	d.logger.Warn("analytics event dropped", "event", e.Name(), "reason", reason)
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		if err := d.sink.Record(ctx, e); err != nil {
			d.failed.Add(1)
			d.logger.Warn("analytics event not recorded", "event", e.Name(), "error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to reach the sink.
// If ctx ends first, in-flight recording is cancelled and ctx.Err() is
// returned; remaining events are lost.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}

// Dropped reports how many events were discarded without reaching the sink.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Failed reports how many events the sink rejected.
func (d *Dispatcher) Failed() int64 { return d.failed.Load() }
