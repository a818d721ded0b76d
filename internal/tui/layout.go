package tui

// Minimum terminal size that can show the header, a bordered log and the footer.
const (
	minWidth  = 40
	minHeight = 6
)

// Rect represents a rectangular region of the terminal.
type Rect struct {
	X, Y, Width, Height int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Layout holds the computed geometry for a given terminal size.
type Layout struct {
	Header, Log, Footer Rect
	Button              Rect // auto-scroll button inside the header
	TooSmall            bool // true when terminal is below the minimum size
}

// Calculate computes the layout for a terminal of the given dimensions.
//
//   - Header: full width, 1 row at top; the button occupies its left edge
//   - Log: full width, everything between header and footer
//   - Footer: full width, 1 row at bottom
func Calculate(width, height, buttonWidth int) Layout {
	if width < minWidth || height < minHeight {
		return Layout{TooSmall: true}
	}
	if buttonWidth > width {
		buttonWidth = width
	}
	return Layout{
		Header: Rect{X: 0, Y: 0, Width: width, Height: 1},
		Button: Rect{X: 0, Y: 0, Width: buttonWidth, Height: 1},
		Log:    Rect{X: 0, Y: 1, Width: width, Height: height - 2},
		Footer: Rect{X: 0, Y: height - 1, Width: width, Height: 1},
	}
}

// innerDims returns the content dimensions for a panel rect accounting for
// the 1-character border on each side (2 total per dimension).
func innerDims(r Rect) (w, h int) {
	w = r.Width - 2
	if w < 1 {
		w = 1
	}
	h = r.Height - 2
	if h < 1 {
		h = 1
	}
	return
}
