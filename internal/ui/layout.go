package ui

// LayoutManager manages the layout calculations for the TUI.
type LayoutManager struct {
	width  int
	height int
}

// ComponentHeights defines the height of each stacked component.
type ComponentHeights struct {
	HeaderHeight int // Title and key hints, with border
	FilterHeight int // Filter box, with border
	PaneHeight   int // The three columns, with border
	FlashHeight  int // Always 1 line
	TableRows    int // Body rows of a list pane, i.e. its page size
}

// ComponentWidths defines the width of each column.
type ComponentWidths struct {
	Secrets    int
	Versions   int
	Properties int
}

// Constants for component heights
const (
	HeaderLineCount  = 4 // border + title + hints + border
	FilterLineCount  = 3 // border + input + border
	FlashLineCount   = 1
	PaneBorderLines  = 2
	TableHeaderLines = 2 // Header + border
	PagerLineCount   = 1 // "page x/y" under the table
	MinTableRows     = 1
	MinPaneWidth     = 12
)

// NewLayoutManager creates a new layout manager
func NewLayoutManager(width, height int) *LayoutManager {
	return &LayoutManager{
		width:  width,
		height: height,
	}
}

// SetDimensions updates the layout manager dimensions
func (lm *LayoutManager) SetDimensions(width, height int) {
	lm.width = width
	lm.height = height
}

// CalculateHeights splits the window height. The list panes get whatever the
// fixed components leave, but never fewer than MinTableRows body rows.
func (lm *LayoutManager) CalculateHeights() ComponentHeights {
	heights := ComponentHeights{
		HeaderHeight: HeaderLineCount,
		FilterHeight: FilterLineCount,
		FlashHeight:  FlashLineCount,
	}
	chrome := PaneBorderLines + TableHeaderLines + PagerLineCount
	minPane := chrome + MinTableRows

	pane := lm.height - heights.HeaderHeight - heights.FilterHeight - heights.FlashHeight
	if pane < minPane {
		// Drop the header before squeezing the lists.
		pane += heights.HeaderHeight
		heights.HeaderHeight = 0
	}
	if pane < minPane {
		pane = minPane
	}
	heights.PaneHeight = pane
	heights.TableRows = pane - chrome
	return heights
}

// CalculateWidths splits the window width into the three columns. The
// properties column takes the rounding remainder.
func (lm *LayoutManager) CalculateWidths() ComponentWidths {
	w := max(lm.width, 3*MinPaneWidth)
	third := w / 3
	return ComponentWidths{
		Secrets:    third,
		Versions:   third,
		Properties: w - 2*third,
	}
}

// GetWidth returns the current width
func (lm *LayoutManager) GetWidth() int {
	return lm.width
}

// GetHeight returns the current height
func (lm *LayoutManager) GetHeight() int {
	return lm.height
}
