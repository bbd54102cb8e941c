package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher forwards audit events to a sink from a single goroutine.  A nil
// *Dispatcher is valid and discards everything.
type Dispatcher struct {
	sink       Sink
	logger     *slog.Logger
	events     chan Event
	stopped    chan struct{}
	dropIfFull bool

	// mu guards closed and the close of events.  Emit holds it for reading
	// while sending.
	mu     sync.RWMutex
	closed bool

	dropped atomic.Uint64
}

// NewDispatcher starts a dispatcher goroutine, or returns nil when cfg is
// disabled.  logger receives panics recovered from the sink.
func NewDispatcher(cfg Config, sink Sink, logger *slog.Logger) (d *Dispatcher) {
	if !cfg.Enabled {
		return nil
	}

	if sink == nil {
		sink = NoOpSink{}
	}

	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	d = &Dispatcher{
		sink:       sink,
		logger:     logger,
		events:     make(chan Event, max(cfg.BufferSize, 1)),
		stopped:    make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}

	go d.run()

	return d
}

// run delivers events until the channel is closed and drained.
func (d *Dispatcher) run() {
	defer close(d.stopped)

	for ev := range d.events {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx := context.Background()
	defer slogutil.RecoverAndLog(ctx, d.logger)

	d.sink.Emit(ctx, ev)
}

// Emit queues ev.  With DropIfFull a full buffer drops the event and counts
// it.  Otherwise Emit waits for room until ctx is done.  Events emitted after
// Close are discarded.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.events <- ev:
		default:
			d.dropped.Add(1)
		}

		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case d.events <- ev:
	case <-ctx.Done():
	}
}

// Close stops accepting events, waits until the queued ones are delivered and
// stops the goroutine.  It is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	<-d.stopped
}

// Dropped returns how many events were discarded because the buffer was full.
func (d *Dispatcher) Dropped() (n uint64) {
	if d == nil {
		return 0
	}

	return d.dropped.Load()
}
