package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap lists the keys handled by the root model. Anything else is
// forwarded to the log viewport, which scrolls on up/down/pgup/pgdown.
type KeyMap struct {
	ToggleAutoScroll key.Binding
	Top              key.Binding
	Bottom           key.Binding
	Scroll           key.Binding // help only; handled by the viewport
	Quit             key.Binding
}

// DefaultKeyMap is the key map used by New.
var DefaultKeyMap = KeyMap{
	ToggleAutoScroll: key.NewBinding(
		key.WithKeys("f", " "),
		key.WithHelp("f/space", "auto-scroll"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Scroll: key.NewBinding(
		key.WithKeys("up", "down", "pgup", "pgdown"),
		key.WithHelp("↑/↓/pgup/pgdn", "scroll"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Bindings returns the bindings in footer order.
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.ToggleAutoScroll, k.Scroll, k.Top, k.Bottom, k.Quit}
}

// Hints renders the enabled bindings as "key desc" pairs for the footer.
func (k KeyMap) Hints() string {
	var parts []string
	for _, b := range k.Bindings() {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// IsGlobalKey reports whether keyStr is handled by the root model rather than
// forwarded to the viewport.
func (k KeyMap) IsGlobalKey(keyStr string) bool {
	for _, b := range []key.Binding{k.ToggleAutoScroll, k.Top, k.Bottom, k.Quit} {
		for _, s := range b.Keys() {
			if s == keyStr {
				return true
			}
		}
	}
	return false
}
