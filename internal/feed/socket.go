package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler receives socket events. It isolates the ingestion logic from the
// transport so either side can be replaced in tests.
type Handler interface {
	OnMessage(payload string)
	OnError(err error)
}

// Conn is the subset of a message-oriented connection the listener needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens a Conn to a URL.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WSDialer dials WebSocket endpoints with gorilla/websocket.
type WSDialer struct {
	Dialer *websocket.Dialer
}

// Dial opens a WebSocket connection.
func (d WSDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// SocketListener opens one persistent connection and forwards every inbound
// message to a Handler. There is no reconnect: after an error the listener
// is done.
type SocketListener struct {
	URL    string
	Dialer Dialer
	Log    *zap.Logger
}

// Start returns immediately and dials the endpoint in a goroutine, which
// then runs the read loop. A dial failure is reported to h and ends the
// handle. Closing the handle while the dial is pending cancels it.
func (l *SocketListener) Start(ctx context.Context, h Handler) *SocketConn {
	dialCtx, cancel := context.WithCancel(ctx)
	sc := &SocketConn{cancel: cancel, done: make(chan struct{})}

	dialer := l.Dialer
	if dialer == nil {
		dialer = WSDialer{}
	}

	go sc.run(dialCtx, dialer, l.URL, h, l.logger())
	return sc
}

func (l *SocketListener) logger() *zap.Logger {
	if l.Log == nil {
		return zap.NewNop()
	}
	return l.Log.With(zap.Stringer("source", SourceSocket))
}

// SocketConn owns at most one live connection.
type SocketConn struct {
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}

	mu     sync.Mutex
	conn   Conn
	closed bool
}

func (sc *SocketConn) run(ctx context.Context, dialer Dialer, url string, h Handler, log *zap.Logger) {
	defer close(sc.done)

	conn, err := dialer.Dial(ctx, url)
	if err != nil {
		if ctx.Err() != nil || sc.isClosed() {
			log.Debug("socket dial aborted", zap.Error(err))
			return
		}
		log.Error("websocket error", zap.Error(err))
		h.OnError(fmt.Errorf("feed: socket dial: %w", err))
		return
	}
	if !sc.attach(conn) {
		// Closed while dialing; the late connection is ours to close.
		_ = conn.Close()
		return
	}
	sc.readLoop(conn, h, log)
}

// attach stores conn unless Close already ran.
func (sc *SocketConn) attach(conn Conn) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		return false
	}
	sc.conn = conn
	return true
}

func (sc *SocketConn) readLoop(conn Conn, h Handler, log *zap.Logger) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if sc.isClosed() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("socket closed", zap.Error(err))
				return
			}
			log.Error("websocket error", zap.Error(err))
			h.OnError(fmt.Errorf("feed: socket read: %w", err))
			return
		}
		h.OnMessage(string(payload))
	}
}

// Close cancels a pending dial and closes the connection once. Closing a
// nil, never-opened or already closed SocketConn returns nil.
func (sc *SocketConn) Close() error {
	if sc == nil {
		return nil
	}
	sc.closeOnce.Do(func() {
		sc.mu.Lock()
		sc.closed = true
		conn := sc.conn
		sc.mu.Unlock()

		if sc.cancel != nil {
			sc.cancel()
		}
		if conn != nil {
			sc.closeErr = conn.Close()
		}
	})
	return sc.closeErr
}

// Done is closed once the dial has failed or the read loop has exited.
func (sc *SocketConn) Done() <-chan struct{} {
	return sc.done
}

func (sc *SocketConn) isClosed() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.closed
}

// SinkHandler appends socket messages verbatim into a Sink. Errors are
// already logged by the listener and are otherwise ignored.
type SinkHandler struct {
	Ctx  context.Context
	Sink Sink
}

// OnMessage appends payload as one whole piece of text.
func (s *SinkHandler) OnMessage(payload string) {
	s.Sink.Append(s.context(), SourceSocket, payload)
}

// OnError takes no corrective action: no reconnect, no backoff.
func (s *SinkHandler) OnError(error) {}

func (s *SinkHandler) context() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}
