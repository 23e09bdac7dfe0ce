package ui

import "github.com/kraitsura/segment_viewer/pkg/rowstate"

// Layout breakpoints for responsive design.
const (
	// BreakpointNarrow is the width below which the detail panel is hidden.
	BreakpointNarrow = 80

	// BreakpointMedium is the width above which the tree gets the larger share.
	BreakpointMedium = 120
)

const (
	// MinContentHeight is the minimum height for scrollable content areas.
	MinContentHeight = 5

	headerLines = 3
	footerLines = 2
)

// treePanelWidth returns the width of the tree panel for a terminal width.
func treePanelWidth(width int) int {
	switch {
	case width < BreakpointNarrow:
		return width
	case width < BreakpointMedium:
		return width * 50 / 100
	default:
		return width * 55 / 100
	}
}

// treeLine is one line of the tree panel: either a row or the "▤ name"
// header that opens a per-dimension forest.
type treeLine struct {
	header string
	row    int // index into rows; -1 for headers
}

func (l treeLine) isHeader() bool {
	return l.row < 0
}

// layoutTreeLines places a header before the first root of each named
// tree. Filtered rows are listed without headers.
func layoutTreeLines(rows []rowstate.Row, filtered bool) []treeLine {
	lines := make([]treeLine, 0, len(rows))
	lastTree := ""
	for i, row := range rows {
		if !filtered && row.Tree != "" && row.Tree != lastTree && row.Depth == 0 {
			lines = append(lines, treeLine{header: row.Tree, row: -1})
		}
		lastTree = row.Tree
		lines = append(lines, treeLine{row: i})
	}
	return lines
}

// cursorLine returns the line index of the cursor row.
func (m *Model) cursorLine() int {
	for i, l := range m.lines {
		if l.row == m.cursor {
			return i
		}
	}
	return 0
}
