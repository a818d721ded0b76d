package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeConn replays scripted messages, then blocks until closed.
type fakeConn struct {
	msgs    chan []byte
	readErr error
	closed  chan struct{}

	mu         sync.Mutex
	closeCalls int
}

func newFakeConn(msgs ...string) *fakeConn {
	c := &fakeConn{msgs: make(chan []byte, len(msgs)), closed: make(chan struct{})}
	for _, m := range msgs {
		c.msgs <- []byte(m)
	}
	return c
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case m := <-c.msgs:
		return websocket.TextMessage, m, nil
	default:
	}
	if c.readErr != nil {
		return 0, nil, c.readErr
	}
	<-c.closed
	return 0, nil, errors.New("use of closed network connection")
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCalls++
	if c.closeCalls == 1 {
		close(c.closed)
	}
	return nil
}

func (c *fakeConn) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCalls
}

type fakeDialer struct {
	conn Conn
	err  error
}

func (d fakeDialer) Dial(context.Context, string) (Conn, error) {
	return d.conn, d.err
}

// stallDialer blocks until release is closed or ctx is cancelled.
type stallDialer struct {
	conn    Conn
	entered chan struct{}
	release chan struct{}
}

func newStallDialer(conn Conn) *stallDialer {
	return &stallDialer{conn: conn, entered: make(chan struct{}), release: make(chan struct{})}
}

func (d *stallDialer) Dial(ctx context.Context, _ string) (Conn, error) {
	close(d.entered)
	select {
	case <-d.release:
		return d.conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// handlerRecorder collects handler callbacks.
type handlerRecorder struct {
	mu   sync.Mutex
	msgs []string
	errs []error
}

func (h *handlerRecorder) OnMessage(p string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, p)
}

func (h *handlerRecorder) OnError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *handlerRecorder) snapshot() ([]string, []error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.msgs...), append([]error(nil), h.errs...)
}

func TestSocketListener_MessagesInOrder(t *testing.T) {
	conn := newFakeConn("one\n", "two", " and three\n")
	l := &SocketListener{Dialer: fakeDialer{conn: conn}}
	h := &handlerRecorder{}

	sc := l.Start(context.Background(), h)
	assert.Eventually(t, func() bool {
		msgs, _ := h.snapshot()
		return len(msgs) == 3
	}, time.Second, 5*time.Millisecond)

	msgs, errs := h.snapshot()
	assert.Equal(t, []string{"one\n", "two", " and three\n"}, msgs)
	assert.Empty(t, errs)

	require.NoError(t, sc.Close())
	<-sc.Done()
	_, errs = h.snapshot()
	assert.Empty(t, errs, "closing our own connection is not an error")
}

func TestSocketListener_CloseExactlyOnce(t *testing.T) {
	conn := newFakeConn()
	l := &SocketListener{Dialer: fakeDialer{conn: conn}}
	sc := l.Start(context.Background(), &handlerRecorder{})

	assert.NoError(t, sc.Close())
	assert.NoError(t, sc.Close())
	assert.NoError(t, sc.Close())
	<-sc.Done()
	assert.NoError(t, sc.Close())
	assert.Equal(t, 1, conn.calls())
}

func TestSocketListener_StartDoesNotWaitForDial(t *testing.T) {
	d := newStallDialer(nil)
	log, logs := observedLogger()
	l := &SocketListener{URL: "ws://unresponsive/ws", Dialer: d, Log: log}
	h := &handlerRecorder{}

	started := make(chan *SocketConn)
	go func() { started <- l.Start(context.Background(), h) }()

	var sc *SocketConn
	select {
	case sc = <-started:
	case <-time.After(time.Second):
		t.Fatal("Start blocked on a pending dial")
	}
	<-d.entered

	require.NoError(t, sc.Close())
	select {
	case <-sc.Done():
	case <-time.After(time.Second):
		t.Fatal("Close did not cancel the pending dial")
	}

	_, errs := h.snapshot()
	assert.Empty(t, errs, "an aborted dial is not an error")
	assert.Zero(t, logs.FilterMessage("websocket error").Len())
	assert.Equal(t, 1, logs.FilterMessage("socket dial aborted").Len())
}

func TestSocketListener_CloseDuringDialClosesLateConn(t *testing.T) {
	conn := newFakeConn("never delivered")
	d := newStallDialer(conn)
	l := &SocketListener{Dialer: d}
	h := &handlerRecorder{}

	// The dial ignores cancellation here and succeeds after Close.
	sc := l.Start(context.Background(), h)
	<-d.entered
	sc.mu.Lock()
	sc.closed = true
	sc.mu.Unlock()
	close(d.release)

	<-sc.Done()
	assert.Equal(t, 1, conn.calls())
	msgs, errs := h.snapshot()
	assert.Empty(t, msgs)
	assert.Empty(t, errs)
}

func TestSocketListener_ParentCancelAbortsDial(t *testing.T) {
	d := newStallDialer(nil)
	h := &handlerRecorder{}
	ctx, cancel := context.WithCancel(context.Background())

	sc := (&SocketListener{Dialer: d}).Start(ctx, h)
	<-d.entered
	cancel()

	select {
	case <-sc.Done():
	case <-time.After(time.Second):
		t.Fatal("cancelling the parent context did not abort the dial")
	}
	_, errs := h.snapshot()
	assert.Empty(t, errs)
	assert.NoError(t, sc.Close())
}

func TestSocketConn_CloseNilAndNeverOpened(t *testing.T) {
	var nilConn *SocketConn
	assert.NoError(t, nilConn.Close())

	empty := &SocketConn{}
	assert.NoError(t, empty.Close())
}

func TestSocketListener_DialErrorReported(t *testing.T) {
	dialErr := errors.New("connection refused")
	log, logs := observedLogger()
	l := &SocketListener{Dialer: fakeDialer{err: dialErr}, Log: log}
	h := &handlerRecorder{}

	sc := l.Start(context.Background(), h)
	select {
	case <-sc.Done():
	case <-time.After(time.Second):
		t.Fatal("failed dial should end the handle")
	}

	_, errs := h.snapshot()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], dialErr)

	entries := logs.FilterMessage("websocket error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "socket", entries[0].ContextMap()["source"])
	assert.Equal(t, "connection refused", entries[0].ContextMap()["error"])
	assert.NoError(t, sc.Close())
}

func TestSocketListener_ReadErrorNoReconnect(t *testing.T) {
	conn := newFakeConn("partial")
	conn.readErr = errors.New("boom")
	log, logs := observedLogger()
	l := &SocketListener{Dialer: fakeDialer{conn: conn}, Log: log}
	h := &handlerRecorder{}

	sc := l.Start(context.Background(), h)
	<-sc.Done()

	msgs, errs := h.snapshot()
	assert.Equal(t, []string{"partial"}, msgs)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "boom")

	entries := logs.FilterMessage("websocket error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestSocketListener_OwnCloseNotLoggedAsError(t *testing.T) {
	conn := newFakeConn("x")
	log, logs := observedLogger()
	l := &SocketListener{Dialer: fakeDialer{conn: conn}, Log: log}
	h := &handlerRecorder{}

	sc := l.Start(context.Background(), h)
	assert.Eventually(t, func() bool {
		msgs, _ := h.snapshot()
		return len(msgs) == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, sc.Close())
	<-sc.Done()

	assert.Zero(t, logs.FilterMessage("websocket error").Len())
	assert.Equal(t, 1, logs.FilterMessage("socket closed").Len())
}

func TestSinkHandler_AppendsVerbatim(t *testing.T) {
	var got []string
	sink := SinkFunc(func(src Source, text string) {
		assert.Equal(t, SourceSocket, src)
		got = append(got, text)
	})
	h := &SinkHandler{Sink: sink}

	h.OnMessage("a\n")
	h.OnMessage("")
	h.OnMessage("b")
	assert.Equal(t, []string{"a\n", "", "b"}, got)

	h.OnError(errors.New("x"))
	assert.Len(t, got, 3, "errors never reach the sink")
}

func TestSocketListener_RealWebSocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.WriteMessage(websocket.TextMessage, []byte("hello "))
		_ = c.WriteMessage(websocket.BinaryMessage, []byte("world\n"))
		<-release
	}))
	defer srv.Close()
	defer close(release)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	l := &SocketListener{URL: url}
	h := &handlerRecorder{}
	sc := l.Start(context.Background(), h)

	assert.Eventually(t, func() bool {
		msgs, _ := h.snapshot()
		return len(msgs) == 2
	}, 2*time.Second, 10*time.Millisecond)
	msgs, errs := h.snapshot()
	assert.Equal(t, "hello world\n", strings.Join(msgs, ""))
	assert.Empty(t, errs)

	require.NoError(t, sc.Close())
	<-sc.Done()
	assert.NoError(t, sc.Close())
}

func TestChanSink_DropsAfterCancel(t *testing.T) {
	ch := make(ChanSink)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		ch.Append(ctx, SourceHTTP, "never read")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Append blocked after cancellation")
	}
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "http", SourceHTTP.String())
	assert.Equal(t, "socket", SourceSocket.String())
	assert.Equal(t, "unknown", Source(9).String())
}
