package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// Placeholder is the single line shown while the log text is empty.
const Placeholder = "Loading..."

// frameInterval is how long a deferred scroll waits: roughly one frame at
// 60 fps, so the viewport content is laid out before it is scrolled.
const frameInterval = time.Second / 60

// ScrollFrameMsg is delivered one frame after a scroll was requested.
type ScrollFrameMsg struct{}

// Line is one display line and its vertical offset in rows.
type Line struct {
	Index int
	Top   int
	Text  string
}

// LogView is a scrollable, append-only log panel that wraps bubbles/viewport.
// In auto-scroll mode (default) every change to the text requests a scroll
// to the bottom on the next frame. Auto-scroll is changed only through
// ToggleAutoScroll.
type LogView struct {
	vp         viewport.Model
	text       string
	autoScroll bool
	lineHeight int
	width      int
	height     int

	scrollRequests int
	framePending   bool
}

// NewLogView creates a LogView with the given dimensions and rows per line,
// initially in auto-scroll mode.
func NewLogView(w, h, lineHeight int) LogView {
	if lineHeight < 1 {
		lineHeight = 1
	}
	v := LogView{
		vp:         viewport.New(w, h),
		autoScroll: true,
		lineHeight: lineHeight,
		width:      w,
		height:     h,
	}
	v.refresh()
	return v
}

// Append adds text to the end of the log. The log is never truncated. If
// auto-scroll is on the returned command delivers the deferred scroll.
func (v LogView) Append(text string) (LogView, tea.Cmd) {
	if text == "" {
		return v, nil
	}
	v.text += text
	v.refresh()
	return v.requestScroll()
}

// ToggleAutoScroll flips auto-scroll. Turning it on scrolls to the bottom
// immediately; turning it off leaves the scroll position alone.
func (v LogView) ToggleAutoScroll() LogView {
	v.autoScroll = !v.autoScroll
	if v.autoScroll {
		v.scrollRequests++
		v.vp.GotoBottom()
	}
	return v
}

func (v LogView) requestScroll() (LogView, tea.Cmd) {
	if !v.autoScroll {
		return v, nil
	}
	v.scrollRequests++
	if v.framePending {
		return v, nil
	}
	v.framePending = true
	return v, tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return ScrollFrameMsg{}
	})
}

// Lines splits the log text into display lines. Empty text yields the
// placeholder; otherwise line i sits at row i*lineHeight.
func (v LogView) Lines() []Line {
	if v.text == "" {
		return []Line{{Index: 0, Top: 0, Text: Placeholder}}
	}
	parts := strings.Split(v.text, "\n")
	lines := make([]Line, len(parts))
	for i, p := range parts {
		lines[i] = Line{Index: i, Top: i * v.lineHeight, Text: p}
	}
	return lines
}

// refresh re-renders the positioned lines into the viewport.
func (v *LogView) refresh() {
	lines := v.Lines()
	rows := make([]string, lines[len(lines)-1].Top+1)
	for _, l := range lines {
		rows[l.Top] = v.fit(l.Text)
	}
	v.vp.SetContent(strings.Join(rows, "\n"))
}

// fit makes a raw log line safe for a single terminal row.
func (v LogView) fit(s string) string {
	s = strings.TrimSuffix(s, "\r")
	s = strings.ReplaceAll(s, "\t", "    ")
	if v.width > 0 && runewidth.StringWidth(s) > v.width {
		s = runewidth.Truncate(s, v.width, "…")
	}
	return s
}

// SetSize resizes the log view. Lines are re-fitted to the new width.
func (v LogView) SetSize(w, h int) LogView {
	v.width = w
	v.height = h
	v.vp.Width = w
	v.vp.Height = h
	v.refresh()
	if v.autoScroll {
		v.vp.GotoBottom()
	}
	return v
}

// GotoTop scrolls to the first line without changing auto-scroll.
func (v LogView) GotoTop() LogView {
	v.vp.GotoTop()
	return v
}

// GotoBottom scrolls to the last line without changing auto-scroll.
func (v LogView) GotoBottom() LogView {
	v.vp.GotoBottom()
	return v
}

// Update handles the deferred scroll frame and forwards scroll keys and
// mouse wheel events to the viewport.
func (v LogView) Update(msg tea.Msg) (LogView, tea.Cmd) {
	if _, ok := msg.(ScrollFrameMsg); ok {
		v.framePending = false
		if v.autoScroll {
			v.vp.GotoBottom()
		}
		return v, nil
	}
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return v, cmd
}

// Text returns the full accumulated log text.
func (v LogView) Text() string { return v.text }

// AutoScroll reports whether auto-scroll is on.
func (v LogView) AutoScroll() bool { return v.autoScroll }

// ScrollRequests counts scroll-to-bottom requests made so far.
func (v LogView) ScrollRequests() int { return v.scrollRequests }

// AtBottom reports whether the viewport shows the last row.
func (v LogView) AtBottom() bool { return v.vp.AtBottom() }

// YOffset returns the index of the first visible row.
func (v LogView) YOffset() int { return v.vp.YOffset }

// RowsBelow returns how many rows are hidden below the visible area.
func (v LogView) RowsBelow() int {
	below := v.vp.TotalLineCount() - v.vp.YOffset - v.vp.Height
	if below < 0 {
		return 0
	}
	return below
}

// LineCount returns the number of log lines, not counting the placeholder.
func (v LogView) LineCount() int {
	if v.text == "" {
		return 0
	}
	return strings.Count(v.text, "\n") + 1
}

// View renders the visible part of the log.
func (v LogView) View() string {
	return v.vp.View()
}
