package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds accent-color-derived styles.
type Theme struct {
	accentStyle     lipgloss.Style // header bar background
	buttonOn        lipgloss.Style // auto-scroll button while enabled
	borderFocused   lipgloss.Style // log border while auto-scroll is on
	borderUnfocused lipgloss.Style // log border while auto-scroll is off
}

// NewTheme creates a Theme from a hex accent color string (e.g. "#7D56F4").
// If accentColor is empty, the default accent color is used.
func NewTheme(accentColor string) Theme {
	color := defaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)
	return Theme{
		accentStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true),
		buttonOn: lipgloss.NewStyle().
			Background(lipgloss.Color("#FFFFFF")).
			Foreground(c).
			Bold(true),
		borderFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c),
		borderUnfocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray),
	}
}

// AccentHeaderStyle returns the style for the header bar.
func (t Theme) AccentHeaderStyle() lipgloss.Style {
	return t.accentStyle
}

// ButtonStyle returns the style of the auto-scroll button for the given state.
func (t Theme) ButtonStyle(on bool) lipgloss.Style {
	if on {
		return t.buttonOn
	}
	return buttonOffStyle
}

// LogBorderStyle returns the log panel border: accent colored while
// auto-scroll is on, gray while it is off.
func (t Theme) LogBorderStyle(autoScroll bool) lipgloss.Style {
	if autoScroll {
		return t.borderFocused
	}
	return t.borderUnfocused
}
