package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

// FooterProps holds all data needed to render the footer bar.
type FooterProps struct {
	Lines     int
	RowsBelow int
	Hints     string // keybinding help, e.g. "f/space auto-scroll • q quit"
}

// RenderFooter renders the footer bar.
// Left side: line count and hidden rows. Right side: keybinding hints.
func RenderFooter(props FooterProps, width int) string {
	noun := "lines"
	if props.Lines == 1 {
		noun = "line"
	}
	left := fmt.Sprintf("%d %s", props.Lines, noun)
	if props.RowsBelow > 0 {
		left += fmt.Sprintf("  ↓%d", props.RowsBelow)
	}

	right := props.Hints

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}

	return footerStyle.Width(width).MaxWidth(width).MaxHeight(1).Render(left + strings.Repeat(" ", gap) + right)
}
