package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.LogView/internal/config"
	"github.com/LISSConsulting/LISSTech.LogView/internal/diag"
	"github.com/LISSConsulting/LISSTech.LogView/internal/feed"
	"github.com/LISSConsulting/LISSTech.LogView/internal/tui"
)

// eventBuffer is the capacity of the channel between the feeds and the
// consumer.
const eventBuffer = 128

// options holds the root command flags.
type options struct {
	configPath string
	httpURL    string
	wsURL      string
	noTUI      bool
}

// resolveConfig builds the effective configuration: file, then .env and the
// environment, then flags.
func resolveConfig(opts options) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if opts.httpURL != "" {
		cfg.Sources.HTTPURL = opts.httpURL
	}
	if opts.wsURL != "" {
		cfg.Sources.WSURL = opts.wsURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// execute resolves config, opens diagnostics, starts the feeds and runs the
// chosen front end until the user quits or ctx is cancelled.
func execute(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	dcfg := diag.Config{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	if opts.noTUI {
		dcfg.Console = stderr
	}
	log, cleanup, err := diag.New(dcfg)
	if err != nil {
		return err
	}
	defer cleanup()

	log.Info("starting",
		zap.String("version", version),
		zap.String("http_url", cfg.Sources.HTTPURL),
		zap.String("ws_url", cfg.Sources.WSURL),
		zap.Bool("tui", !opts.noTUI),
	)

	events := make(feed.ChanSink, eventBuffer)
	f := startFeeds(ctx, cfg, events, feed.WSDialer{}, log)
	defer f.Stop()
	go closeWhenDone(f.Done(), events)

	if opts.noTUI {
		return drain(ctx, events, stdout)
	}

	model := tui.New(events, tui.Options{
		AccentColor: cfg.TUI.AccentColor,
		LineHeight:  cfg.TUI.LineHeight,
		HTTPURL:     cfg.Sources.HTTPURL,
		WSURL:       cfg.Sources.WSURL,
	})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	return finishTUI(program)
}

// finishTUI runs the bubbletea program. Cancellation (signal) is a normal
// shutdown and is not reported.
func finishTUI(program *tea.Program) error {
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// feeds owns the running ingestion paths.
type feeds struct {
	cancel context.CancelFunc
	socket *feed.SocketConn
	wg     sync.WaitGroup
	done   chan struct{}
	once   sync.Once
}

// startFeeds starts every ingestion path that has an endpoint. The two run
// independently and share sink.
func startFeeds(ctx context.Context, cfg *config.Config, sink feed.Sink, dialer feed.Dialer, log *zap.Logger) *feeds {
	ctx, cancel := context.WithCancel(ctx)
	f := &feeds{cancel: cancel, done: make(chan struct{})}

	if cfg.Sources.HTTPURL != "" {
		poller := &feed.HTTPPoller{
			URL:       cfg.Sources.HTTPURL,
			ChunkSize: cfg.HTTP.ChunkSize,
			Pause:     cfg.HTTP.Pause(),
			ReadSize:  cfg.HTTP.ReadSize,
			Log:       log,
		}
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			// Failures are logged by the poller and never shown.
			_ = poller.Run(ctx, sink)
		}()
	}

	if cfg.Sources.WSURL != "" {
		listener := &feed.SocketListener{
			URL:    cfg.Sources.WSURL,
			Dialer: dialer,
			Log:    log,
		}
		f.socket = listener.Start(ctx, &feed.SinkHandler{Ctx: ctx, Sink: sink})
	}

	if cfg.Sources.HTTPURL == "" && cfg.Sources.WSURL == "" {
		log.Warn("no endpoints configured; nothing will be shown",
			zap.String("hint", "set sources.http_url / sources.ws_url, "+config.EnvHTTPAPI+" / "+config.EnvWSSAPI+", or --http / --ws"))
	}

	go func() {
		f.wg.Wait()
		if f.socket != nil {
			<-f.socket.Done()
		}
		close(f.done)
	}()

	return f
}

// Done is closed once every started feed has finished on its own or after
// Stop.
func (f *feeds) Done() <-chan struct{} { return f.done }

// Stop cancels the HTTP read loop and closes the socket. It is safe to call
// more than once.
func (f *feeds) Stop() {
	f.once.Do(func() {
		f.cancel()
		_ = f.socket.Close()
		f.wg.Wait()
	})
}

// closeWhenDone closes events once done is closed. Every sender has
// returned by then, so consumers see the end of the feeds as a closed
// channel.
func closeWhenDone(done <-chan struct{}, events feed.ChanSink) {
	<-done
	close(events)
}

// drain prints events to w in arrival order until the channel is closed or
// ctx is cancelled.
func drain(ctx context.Context, events <-chan feed.Event, w io.Writer) error {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := io.WriteString(w, ev.Text); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
