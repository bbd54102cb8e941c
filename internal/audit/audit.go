package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is the canonical audit record used by internal dispatching and root
// APIs.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    int64             `json:"user_id,omitempty"`
	Username  string            `json:"username,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewEventID returns a random identifier for an event.
func NewEventID() string {
	return uuid.NewString()
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

// type check
var _ Sink = NoOpSink{}

// Emit implements the [Sink] interface for NoOpSink.
func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

// type check
var _ Sink = (*ChannelSink)(nil)

// NewChannelSink returns a sink with the given channel capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

// Emit implements the [Sink] interface for *ChannelSink.
func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// type check
var _ Sink = (*JSONWriterSink)(nil)

// NewJSONWriterSink returns a sink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit implements the [Sink] interface for *JSONWriterSink.
func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
}

// SlogSink logs every event at info level, failures at warn level.
type SlogSink struct {
	logger *slog.Logger
}

// type check
var _ Sink = (*SlogSink)(nil)

// NewSlogSink returns a sink logging through l.  l must not be nil.
func NewSlogSink(l *slog.Logger) *SlogSink {
	return &SlogSink{logger: l}
}

// Emit implements the [Sink] interface for *SlogSink.
func (s *SlogSink) Emit(ctx context.Context, event Event) {
	lvl := slog.LevelInfo
	if !event.Success {
		lvl = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("id", event.ID),
		slog.String("event", event.EventType),
		slog.Bool("success", event.Success),
	}
	if event.UserID != 0 {
		attrs = append(attrs, slog.String("user_id", strconv.FormatInt(event.UserID, 10)))
	}
	if event.Username != "" {
		attrs = append(attrs, slog.String("username", event.Username))
	}
	if event.IP != "" {
		attrs = append(attrs, slog.String("ip", event.IP))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error_code", event.Error))
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, slog.String(k, v))
	}

	s.logger.LogAttrs(ctx, lvl, "audit", attrs...)
}
