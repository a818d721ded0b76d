package tui

import "github.com/LISSConsulting/LISSTech.LogView/internal/feed"

// eventMsg wraps a feed.Event received from the event channel.
type eventMsg feed.Event

// feedDoneMsg signals the event channel closed.
type feedDoneMsg struct{}
