// Package feed ingests log text from the two supported sources: a streamed
// HTTP response and a WebSocket push feed. Both sources append into the same
// Sink and are not coordinated with each other.
package feed

import (
	"context"
	"time"
)

// Source identifies where a piece of log text came from.
type Source int

const (
	SourceHTTP   Source = iota // Streamed HTTP response body
	SourceSocket               // WebSocket message
)

func (s Source) String() string {
	switch s {
	case SourceHTTP:
		return "http"
	case SourceSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// Event is one append of decoded text to the log.
type Event struct {
	Source    Source
	Text      string
	Timestamp time.Time
}

// Sink is the append target shared by both ingestion paths.
type Sink interface {
	Append(ctx context.Context, src Source, text string)
}

// ChanSink serializes appends from both sources through a channel. The
// consumer (the TUI or the plain-text drain) owns the log text.
type ChanSink chan Event

// Append sends text to the channel. It gives up silently once ctx is done so
// a feed goroutine never outlives its consumer.
func (c ChanSink) Append(ctx context.Context, src Source, text string) {
	select {
	case c <- Event{Source: src, Text: text, Timestamp: time.Now()}:
	case <-ctx.Done():
	}
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(src Source, text string)

// Append calls f.
func (f SinkFunc) Append(_ context.Context, src Source, text string) {
	f(src, text)
}
