package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Defaults for the HTTP path. The sub-slice size and the pause between
// received blocks throttle how fast text shows up in the viewer.
const (
	DefaultChunkSize = 30
	DefaultPause     = 2 * time.Second
	DefaultReadSize  = 4096
)

// HTTPPoller streams one HTTP response body into a Sink.
//
// Each block returned by a body read is split into ChunkSize sub-slices.
// Every sub-slice is decoded through one shared Decoder and appended as soon
// as it is decoded. Once a block is drained the poller waits Pause before
// the next read.
type HTTPPoller struct {
	URL       string
	ChunkSize int // zero means DefaultChunkSize
	// Pause is not defaulted: zero disables pacing and negatives act as zero.
	// Callers wanting the stock pacing pass DefaultPause.
	Pause    time.Duration
	ReadSize int // zero means DefaultReadSize

	// Client defaults to a client without a timeout; the stream is unbounded.
	Client *http.Client
	// Sleep waits d or until ctx is done. Defaults to a timer-based sleep.
	Sleep func(ctx context.Context, d time.Duration) error
	// Log receives fetch and read errors. Nil discards them.
	Log *zap.Logger
}

// Run issues the request and streams the body into sink until EOF, error or
// ctx cancellation. Fetch and read errors are logged and returned; callers
// in the viewer ignore the return value, so the failure stays silent in the
// UI and whatever was appended before it remains.
func (p *HTTPPoller) Run(ctx context.Context, sink Sink) error {
	log := p.logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		log.Error("error fetching data", zap.Error(err))
		return fmt.Errorf("feed: http request: %w", err)
	}
	resp, err := p.client().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("error fetching data", zap.Error(err))
		return fmt.Errorf("feed: http fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("non-success status, streaming body anyway", zap.Int("status", resp.StatusCode))
	}

	return p.stream(ctx, resp.Body, sink)
}

func (p *HTTPPoller) stream(ctx context.Context, body io.Reader, sink Sink) error {
	log := p.logger()
	dec := NewDecoder()
	chunk := p.chunkSize()
	buf := make([]byte, p.readSize())

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			block := buf[:n]
			for off := 0; off < len(block); off += chunk {
				end := off + chunk
				if end > len(block) {
					end = len(block)
				}
				if text := dec.Decode(block[off:end]); text != "" {
					sink.Append(ctx, SourceHTTP, text)
				}
			}
			if err := p.sleep(ctx, p.pause()); err != nil {
				return err
			}
		}

		if errors.Is(readErr, io.EOF) {
			if text := dec.Flush(); text != "" {
				sink.Append(ctx, SourceHTTP, text)
			}
			log.Debug("stream complete")
			return nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error("error reading stream", zap.Error(readErr))
			return fmt.Errorf("feed: http read: %w", readErr)
		}
	}
}

func (p *HTTPPoller) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log.With(zap.Stringer("source", SourceHTTP))
}

func (p *HTTPPoller) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

func (p *HTTPPoller) chunkSize() int {
	if p.ChunkSize > 0 {
		return p.ChunkSize
	}
	return DefaultChunkSize
}

func (p *HTTPPoller) readSize() int {
	if p.ReadSize > 0 {
		return p.ReadSize
	}
	return DefaultReadSize
}

func (p *HTTPPoller) pause() time.Duration {
	if p.Pause < 0 {
		return 0
	}
	return p.Pause
}

func (p *HTTPPoller) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
