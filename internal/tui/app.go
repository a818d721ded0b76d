package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.LogView/internal/feed"
	"github.com/LISSConsulting/LISSTech.LogView/internal/tui/components"
	"github.com/LISSConsulting/LISSTech.LogView/internal/tui/panels"
)

// Options configures the TUI appearance.
type Options struct {
	Title       string
	AccentColor string
	LineHeight  int // terminal rows per log line
	HTTPURL     string
	WSURL       string
}

// Model is the root bubbletea model. It appends every feed.Event it receives
// to a single log view. Ingestion errors never reach the screen.
type Model struct {
	events <-chan feed.Event

	logView components.LogView
	keys    KeyMap

	layout Layout
	theme  Theme
	width  int
	height int

	title   string
	httpURL string
	wsURL   string

	// done is set once the event channel closes. The UI keeps running and
	// shows no indication of it.
	done bool
}

// New creates the TUI Model reading from events.
func New(events <-chan feed.Event, opts Options) Model {
	layout := Calculate(80, 24, panels.ButtonWidth())
	w, h := innerDims(layout.Log)

	return Model{
		events:  events,
		logView: components.NewLogView(w, h, opts.LineHeight),
		keys:    DefaultKeyMap,
		layout:  layout,
		theme:   NewTheme(opts.AccentColor),
		width:   80,
		height:  24,
		title:   opts.Title,
		httpURL: opts.HTTPURL,
		wsURL:   opts.WSURL,
	}
}

// Text returns the accumulated log text.
func (m Model) Text() string { return m.logView.Text() }

// AutoScroll reports whether the log follows new text.
func (m Model) AutoScroll() bool { return m.logView.AutoScroll() }

// Init starts listening for events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// waitForEvent blocks on the event channel and returns the next message.
func waitForEvent(ch <-chan feed.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return feedDoneMsg{}
		}
		return eventMsg(ev)
	}
}

// Update handles all incoming bubbletea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case eventMsg:
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Append(msg.Text)
		return m, tea.Batch(cmd, waitForEvent(m.events))
	case feedDoneMsg:
		m.done = true
		return m, nil
	case components.ScrollFrameMsg:
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout = Calculate(msg.Width, msg.Height, panels.ButtonWidth())
	if !m.layout.TooSmall {
		m.logView = m.logView.SetSize(innerDims(m.layout.Log))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.keys.IsGlobalKey(msg.String()) {
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleAutoScroll):
		m.logView = m.logView.ToggleAutoScroll()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logView = m.logView.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logView = m.logView.GotoBottom()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if m.layout.Button.Contains(msg.X, msg.Y) {
			m.logView = m.logView.ToggleAutoScroll()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

// View renders the header, the log and the footer.
func (m Model) View() string {
	if m.layout.TooSmall {
		msg := fmt.Sprintf("Terminal too small (%dx%d).\nPlease resize to at least %dx%d.", m.width, m.height, minWidth, minHeight)
		return tooSmallStyle.Width(m.width).Render(msg)
	}

	auto := m.logView.AutoScroll()
	header := panels.RenderHeader(panels.HeaderProps{
		Title:      m.title,
		HTTPURL:    m.httpURL,
		WSURL:      m.wsURL,
		AutoScroll: auto,
	}, m.layout.Header.Width, m.theme.AccentHeaderStyle(), m.theme.ButtonStyle(auto))

	logW, logH := innerDims(m.layout.Log)
	body := m.theme.LogBorderStyle(auto).
		Width(logW).Height(logH).
		Render(m.logView.View())

	footer := panels.RenderFooter(panels.FooterProps{
		Lines:     m.logView.LineCount(),
		RowsBelow: m.logView.RowsBelow(),
		Hints:     m.keys.Hints(),
	}, m.layout.Footer.Width)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
