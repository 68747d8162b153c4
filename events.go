package gtindata

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RequestEvent describes one completed backend call: method, path,
// outcome, and timing. Events are emitted after classification, so Kind
// is already final when a sink sees it.
type RequestEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	Kind       string    `json:"kind,omitempty"` // empty on success
	Detail     string    `json:"detail,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// EventSink receives request events from the dispatcher. Emit runs on
// the dispatcher goroutine, never on the request path.
type EventSink interface {
	Emit(ctx context.Context, event RequestEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Emit implements EventSink.
func (NoOpSink) Emit(context.Context, RequestEvent) {}

// ChannelSink forwards events to a buffered channel, for consumers that
// want to process them on their own schedule.
type ChannelSink struct {
	events chan RequestEvent
}

// NewChannelSink builds a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan RequestEvent, buffer),
	}
}

// Emit implements EventSink.
func (s *ChannelSink) Emit(ctx context.Context, event RequestEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan RequestEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line to a writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink builds a JSONWriterSink over w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit implements EventSink.
func (s *JSONWriterSink) Emit(_ context.Context, event RequestEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// ZerologSink logs events through a zerolog logger. Successes log at
// debug, client-visible failures at warn, server and connection
// failures at error.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink builds a ZerologSink over logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{logger: logger}
}

// Emit implements EventSink.
func (s *ZerologSink) Emit(_ context.Context, event RequestEvent) {
	if s == nil {
		return
	}

	var entry *zerolog.Event
	switch event.Kind {
	case "":
		entry = s.logger.Debug()
	case "connection", "server":
		entry = s.logger.Error()
	default:
		entry = s.logger.Warn()
	}

	entry.
		Str("method", event.Method).
		Str("path", event.Path).
		Int("status", event.Status).
		Int64("duration_ms", event.DurationMS)
	if event.Kind != "" {
		entry.Str("kind", event.Kind)
	}
	if event.Detail != "" {
		entry.Str("detail", event.Detail)
	}
	if event.RequestID != "" {
		entry.Str("request_id", event.RequestID)
	}
	entry.Msg("api request")
}
