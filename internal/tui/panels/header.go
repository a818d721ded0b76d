// Package panels renders the header and footer bars of the LogView TUI.
package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderProps holds all data needed to render the header bar.
type HeaderProps struct {
	Title      string
	HTTPURL    string
	WSURL      string
	AutoScroll bool
}

// AutoScrollLabel returns the text of the auto-scroll button. Both states
// have the same width so the button's clickable area does not move.
func AutoScrollLabel(on bool) string {
	if on {
		return "[x] auto-scroll"
	}
	return "[ ] auto-scroll"
}

// ButtonWidth returns the rendered width in cells of the auto-scroll button.
// The button always starts at column 0 of the header row.
func ButtonWidth() int {
	return lipgloss.Width(lipgloss.NewStyle().Padding(0, 1).Render(AutoScrollLabel(true)))
}

// RenderHeader renders the header bar: the auto-scroll button on the left,
// then the title and the two configured endpoints. accentStyle is applied to
// the bar and buttonStyle to the button.
func RenderHeader(props HeaderProps, width int, accentStyle, buttonStyle lipgloss.Style) string {
	button := buttonStyle.Padding(0, 1).Render(AutoScrollLabel(props.AutoScroll))

	title := "LogView"
	if props.Title != "" {
		title = props.Title
	}

	parts := []string{title,
		"http: " + orDash(props.HTTPURL),
		"ws: " + orDash(props.WSURL),
	}
	content := " " + strings.Join(parts, "  │  ")

	rest := width - lipgloss.Width(button)
	if rest < 0 {
		rest = 0
	}
	bar := accentStyle.Width(rest).MaxWidth(rest).MaxHeight(1).Render(content)
	return lipgloss.JoinHorizontal(lipgloss.Top, button, bar)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
