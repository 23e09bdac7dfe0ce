package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model
func (m Model) View() string {
	base := m.renderMain()
	switch {
	case m.help.IsVisible():
		return renderModalOverlay(base, m.help.View(), m.width, m.height)
	case m.showNoteInput:
		return renderModalOverlay(base, m.noteInput.View(), m.width, m.height)
	}
	return base
}

func (m Model) renderMain() string {
	t := m.theme
	var out strings.Builder

	out.WriteString(m.renderHeader() + "\n")
	out.WriteString(RenderDivider(m.width, t) + "\n")

	if m.filtering || m.filterInput.Value() != "" {
		out.WriteString(m.filterInput.View() + "\n")
	}

	height := m.treeHeight()
	treeWidth := treePanelWidth(m.width)
	tree := strings.Split(m.renderTree(treeWidth, height), "\n")

	if treeWidth >= m.width {
		out.WriteString(strings.Join(tree, "\n") + "\n")
	} else {
		detail := strings.Split(m.detail.View(), "\n")
		dividerStyle := t.Renderer.NewStyle().Foreground(t.Border)
		if m.detailFocus {
			dividerStyle = dividerStyle.Foreground(t.Primary)
		}
		for i := 0; i < height; i++ {
			left, right := "", ""
			if i < len(tree) {
				left = tree[i]
			}
			if i < len(detail) {
				right = detail[i]
			}
			if w := lipgloss.Width(left); w < treeWidth {
				left += strings.Repeat(" ", treeWidth-w)
			}
			out.WriteString(left + dividerStyle.Render("│") + right + "\n")
		}
	}

	out.WriteString(RenderDivider(m.width, t) + "\n")
	out.WriteString(m.renderFooter())
	return out.String()
}

func (m Model) renderHeader() string {
	t := m.theme
	titleStyle := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)
	subStyle := t.Renderer.NewStyle().Foreground(t.Subtext)
	modeStyle := t.Renderer.NewStyle().Foreground(t.Secondary)

	result := m.ctrl.Result()
	title := "no result loaded"
	if result != nil {
		title = result.Metric
	}
	header := titleStyle.Render("◆ "+title) + " " + modeStyle.Render("["+m.ctrl.Mode().Label()+"]")

	if result != nil {
		header += " " + subStyle.Render(fmt.Sprintf("%s → %s  %d drivers",
			result.Baseline, result.Comparison, len(result.TopDrivers)))
	}
	if n := len(m.ctrl.Skipped()); n > 0 {
		header += " " + t.Renderer.NewStyle().Foreground(t.Warning).Render(fmt.Sprintf("⚠ %d skipped", n))
	}
	if m.source != "" {
		header += " " + subStyle.Faint(true).Render(m.source)
	}
	return truncateToWidth(header, m.width)
}

func (m Model) renderTree(width, height int) string {
	t := m.theme
	if len(m.rows) == 0 {
		msg := "No segments"
		if m.filterInput.Value() != "" {
			msg = "No segments match the filter"
		}
		return t.Renderer.NewStyle().Faint(true).Render(msg)
	}

	filtered := m.filterInput.Value() != ""
	cursorStyle := t.Renderer.NewStyle().Foreground(t.Primary)
	prefixStyle := t.Renderer.NewStyle().Foreground(t.Border)
	treeHeaderStyle := t.Renderer.NewStyle().Foreground(t.Secondary).Bold(true)

	var lines []string
	end := m.scroll + height
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for _, tl := range m.lines[m.scroll:end] {
		if tl.isHeader() {
			lines = append(lines, treeHeaderStyle.Render("▤ "+tl.header))
			continue
		}
		i := tl.row
		row := m.rows[i]

		var line strings.Builder
		if i == m.cursor {
			line.WriteString(cursorStyle.Render("▸ "))
		} else {
			line.WriteString("  ")
		}

		if !filtered && row.TreePrefix != "" {
			line.WriteString(prefixStyle.Render(row.TreePrefix))
		}

		switch {
		case !m.ctrl.ShowsAffordance(row.State):
			line.WriteString("  ")
		case row.State.Expanded:
			line.WriteString(prefixStyle.Render("▾ "))
		default:
			line.WriteString(prefixStyle.Render("▸ "))
		}

		impact := ""
		if r := m.ctrl.Result(); r != nil {
			if info, ok := r.SliceInfo(row.State.Key); ok {
				impact = RenderImpact(info.Impact, t)
			}
		}
		badge := RenderNoteBadge(m.noteCounts[row.State.SerializedKey], t)

		tail := impact
		if badge != "" {
			tail = badge + " " + tail
		}
		labelWidth := width - lipgloss.Width(line.String()) - lipgloss.Width(tail) - 1
		labelStyle := t.Renderer.NewStyle().Foreground(t.Subtext)
		if i == m.cursor {
			labelStyle = labelStyle.Foreground(t.Primary).Bold(true)
		} else if row.Depth == 0 {
			labelStyle = labelStyle.Foreground(t.Primary)
		}
		label := padToWidth(truncateToWidth(rowLabel(row, filtered), labelWidth), labelWidth)
		line.WriteString(labelStyle.Render(label) + " " + tail)

		lines = append(lines, truncateToWidth(line.String(), width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	t := m.theme
	if m.status != "" {
		style := t.Renderer.NewStyle().Foreground(t.Info)
		if m.statusErr {
			style = style.Foreground(t.Negative)
		}
		return truncateToWidth(style.Render(m.status), m.width)
	}

	keyStyle := t.Renderer.NewStyle().Foreground(t.Primary)
	hintStyle := t.Renderer.NewStyle().Faint(true)
	hints := []struct{ key, desc string }{
		{"j/k", " nav "},
		{"enter", " toggle "},
		{"m", "ode "},
		{"/", " filter "},
		{"r", "elated "},
		{"n", "ote "},
		{"y", "ank "},
		{"?", " help "},
		{"q", "uit"},
	}
	var b strings.Builder
	for _, h := range hints {
		b.WriteString(keyStyle.Render(h.key) + hintStyle.Render(h.desc))
	}
	return truncateToWidth(b.String(), m.width)
}
