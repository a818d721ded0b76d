// Package tui provides a bubbletea + lipgloss terminal UI that shows the
// accumulated log text from the feed package.
package tui

import "github.com/charmbracelet/lipgloss"

// defaultAccentColor is the default accent color (indigo).
const defaultAccentColor = "#7D56F4"

// Color palette.
var (
	colorWhite = lipgloss.Color("#FAFAFA")
	colorGray  = lipgloss.Color("#888888")
	colorDark  = lipgloss.Color("#3C3C3C")
)

// Styles used across the TUI. Accent-dependent styles (header, button,
// border) live on Theme and are computed from the configured accent color.
var (
	buttonOffStyle = lipgloss.NewStyle().
			Background(colorDark).
			Foreground(colorGray)

	tooSmallStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Align(lipgloss.Center)
)
