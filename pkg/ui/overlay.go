package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	reflowtrunc "github.com/muesli/reflow/truncate"
)

// cutAfterWidth returns the portion of s after skipping startWidth visual cells
func cutAfterWidth(s string, startWidth int) string {
	if startWidth <= 0 {
		return s
	}
	w := 0
	for i, r := range s {
		if w >= startWidth {
			return s[i:]
		}
		w += ansi.PrintableRuneWidth(string(r))
	}
	return ""
}

// truncateToWidth shortens s to at most width cells, ending in "…" when cut.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.PrintableRuneWidth(s) <= width {
		return s
	}
	return reflowtrunc.StringWithTail(s, uint(width), "…")
}

// padToWidth right-pads plain text to width cells.
func padToWidth(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// renderModalOverlay centers modal over base, keeping the base visible on
// either side.
func renderModalOverlay(base, modal string, width, height int) string {
	modalWidth := lipgloss.Width(modal)
	modalHeight := lipgloss.Height(modal)

	baseLines := strings.Split(base, "\n")
	modalLines := strings.Split(modal, "\n")

	startRow := (height - modalHeight) / 2
	startCol := (width - modalWidth) / 2
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	for len(baseLines) < startRow+len(modalLines) {
		baseLines = append(baseLines, "")
	}

	for i, modalLine := range modalLines {
		row := startRow + i
		baseLine := baseLines[row]
		baseLineWidth := ansi.PrintableRuneWidth(baseLine)
		modalLineWidth := ansi.PrintableRuneWidth(modalLine)

		var newLine strings.Builder
		if startCol > 0 {
			if baseLineWidth >= startCol {
				newLine.WriteString(reflowtrunc.String(baseLine, uint(startCol)))
			} else {
				newLine.WriteString(baseLine)
				newLine.WriteString(strings.Repeat(" ", startCol-baseLineWidth))
			}
		}
		newLine.WriteString(modalLine)

		rightStart := startCol + modalLineWidth
		if rightStart < baseLineWidth {
			newLine.WriteString(cutAfterWidth(baseLine, rightStart))
		}
		baseLines[row] = newLine.String()
	}

	return strings.Join(baseLines, "\n")
}
