package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{gate: make(chan struct{})}
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
}

type panicSink struct{}

func (panicSink) Emit(context.Context, Event) {
	panic("sink failure")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &countingSink{}, nil)
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}

	// Nil receivers are safe.
	d.Emit(context.Background(), Event{EventType: "e"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestCloseDrainsQueuedEvents(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink, nil)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "e"})
	}
	d.Close()

	if got := sink.count.Load(); got != 10 {
		t.Fatalf("sink received %d events, want 10", got)
	}
}

func TestEmitAfterCloseIsDiscarded(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink, nil)

	d.Emit(context.Background(), Event{EventType: "e1"})
	d.Close()
	d.Close()
	d.Emit(context.Background(), Event{EventType: "e2"})

	if got := sink.count.Load(); got != 1 {
		t.Fatalf("sink received %d events, want 1", got)
	}
}

func TestEmitRespectsContext(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink, nil)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), Event{EventType: "e1"})
	d.Emit(context.Background(), Event{EventType: "e2"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	d.Emit(ctx, Event{EventType: "e3"})
	if time.Since(start) > time.Second {
		t.Fatal("expected emit to give up when ctx is done")
	}
}

func TestBufferFullDropIfFullDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink, nil)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), Event{EventType: "e1"})
	d.Emit(context.Background(), Event{EventType: "e2"})

	start := time.Now()
	d.Emit(context.Background(), Event{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestBufferFullBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink, nil)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), Event{EventType: "e1"})
	d.Emit(context.Background(), Event{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		d.Emit(context.Background(), Event{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestSinkPanicDoesNotKillDispatcher(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, panicSink{}, logger)

	d.Emit(context.Background(), Event{EventType: "e1"})
	d.Emit(context.Background(), Event{EventType: "e2"})
	d.Close()

	if !strings.Contains(logs.String(), "sink failure") {
		t.Fatalf("expected recovered panic to be logged, got %q", logs.String())
	}
}

func TestJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{
		ID:        NewEventID(),
		Timestamp: time.Now().UTC(),
		EventType: "login_success",
		UserID:    42,
		IP:        "127.0.0.1",
		Success:   true,
	})

	line := strings.TrimSpace(buf.String())
	var decoded Event
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if decoded.EventType != "login_success" || decoded.UserID != 42 || decoded.ID == "" {
		t.Fatalf("unexpected event: %+v", decoded)
	}
}

func TestSlogSinkLevels(t *testing.T) {
	var buf syncBuffer
	sink := NewSlogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	sink.Emit(context.Background(), Event{EventType: "login_success", Success: true, Username: "alice"})
	sink.Emit(context.Background(), Event{EventType: "login_failure", Error: "invalid_credentials"})

	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "username=alice") {
		t.Fatalf("missing info line: %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error_code=invalid_credentials") {
		t.Fatalf("missing warn line: %q", out)
	}
}
