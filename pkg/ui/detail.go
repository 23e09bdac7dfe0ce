package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/kraitsura/segment_viewer/pkg/hierarchy"
	"github.com/kraitsura/segment_viewer/pkg/model"
	"github.com/kraitsura/segment_viewer/pkg/rowstate"
	"github.com/kraitsura/segment_viewer/pkg/segment"
)

const maxRelated = 15

// significanceLevel is the confidence at which a change is marked significant.
const significanceLevel = 0.95

// updateDetail re-renders the detail viewport for the selected row.
func (m *Model) updateDetail() {
	row, ok := m.SelectedRow()
	if !ok {
		m.detail.SetContent("No segment selected")
		return
	}
	m.detail.SetContent(m.renderDetail(row))
	m.detail.GotoTop()
}

func (m *Model) renderDetail(row rowstate.Row) string {
	t := m.theme
	width := m.detail.Width
	if width < 20 {
		width = 20
	}
	state := row.State

	var b strings.Builder
	headerStyle := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)
	b.WriteString(renderTokens(segment.Format(state.Key, state.ParentKey()), t))
	b.WriteString("\n")
	b.WriteString(RenderDivider(width-2, t) + "\n")

	labelStyle := t.Renderer.NewStyle().Foreground(t.Secondary).Width(12)
	valueStyle := t.Renderer.NewStyle().Foreground(t.Subtext)
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	field("Key", truncateToWidth(state.SerializedKey, width-14))
	field("Path", fmt.Sprintf("depth %d", len(state.Path)-1))
	if row.Tree != "" {
		field("Dimension", row.Tree)
	}

	result := m.ctrl.Result()
	if result != nil {
		if info, ok := result.SliceInfo(state.Key); ok {
			b.WriteString("\n" + headerStyle.Render("Statistics") + "\n")
			field("Baseline", formatStats(info.Baseline))
			field("Comparison", formatStats(info.Comparison))
			field("Change", fmt.Sprintf("%s (%s)", formatSigned(info.Change()), formatPercent(info.ChangePercent())))
			b.WriteString(labelStyle.Render("Impact") + RenderImpact(info.Impact, t) + "\n")
			if info.Confidence != nil {
				confidence := fmt.Sprintf("%.1f%%", *info.Confidence*100)
				if info.IsSignificant(significanceLevel) {
					confidence += " (significant)"
				}
				field("Confidence", confidence)
			}
			if info.ChangeDev != nil {
				field("Change dev", fmt.Sprintf("%.2f", *info.ChangeDev))
			}
		} else {
			b.WriteString("\n" + valueStyle.Faint(true).Render("no statistics for this segment") + "\n")
		}
		if result.HasMoreChildren(state.SerializedKey) {
			b.WriteString(valueStyle.Italic(true).Render("more sub-segments not computed") + "\n")
		}
	}

	if len(state.Path) > 1 {
		b.WriteString("\n" + headerStyle.Render("Path") + "\n")
		for i, step := range state.Path {
			b.WriteString(valueStyle.Render(strings.Repeat("  ", i)+truncateToWidth(step, width-2*i-2)) + "\n")
		}
	}

	if m.showRelated && result != nil {
		b.WriteString("\n" + headerStyle.Render("Related segments") + "\n")
		b.WriteString(m.renderRelated(result, state.Key, width))
	}

	if m.notes != nil {
		b.WriteString(m.renderNotes(state.SerializedKey, width))
	}

	return b.String()
}

func (m *Model) renderRelated(result *model.MetricResult, key segment.Key, width int) string {
	t := m.theme
	related := result.Related(key)
	if len(related) == 0 {
		return t.Renderer.NewStyle().Faint(true).Render("none") + "\n"
	}
	var b strings.Builder
	for i, info := range related {
		if i == maxRelated {
			b.WriteString(t.Renderer.NewStyle().Faint(true).Render(fmt.Sprintf("… %d more", len(related)-maxRelated)) + "\n")
			break
		}
		k, err := segment.Deserialize(info.Key)
		label := info.Key
		if err == nil {
			label = segment.Label(k, key)
		}
		impact := RenderImpact(info.Impact, t)
		b.WriteString(padToWidth(truncateToWidth(label, width-12), width-11) + impact + "\n")
	}
	return b.String()
}

func (m *Model) renderNotes(serialized string, width int) string {
	t := m.theme
	history, err := m.notes.History(serialized)
	if err != nil || len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + t.Renderer.NewStyle().Bold(true).Foreground(t.Primary).Render(fmt.Sprintf("Notes (%d)", len(history))) + "\n")
	metaStyle := t.Renderer.NewStyle().Foreground(t.Secondary)
	bodyStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Width(width - 2)
	for _, n := range history {
		meta := n.CreatedAt.Local().Format("2006-01-02 15:04")
		if n.Author != "" {
			meta += " · " + n.Author
		}
		b.WriteString(metaStyle.Render(meta) + "\n")
		b.WriteString(bodyStyle.Render(n.Body) + "\n")
	}
	return b.String()
}

// renderTokens renders formatted key tokens, bolding emphasized components.
func renderTokens(tokens []segment.Token, t Theme) string {
	emphasized := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)
	plain := t.Renderer.NewStyle().Foreground(t.Subtext)
	and := t.Renderer.NewStyle().Faint(true)

	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		switch {
		case tok.Kind == segment.TokenAnd:
			parts[i] = and.Render(tok.String())
		case tok.Emphasized:
			parts[i] = emphasized.Render(tok.String())
		default:
			parts[i] = plain.Render(tok.String())
		}
	}
	return strings.Join(parts, " ")
}

func formatStats(s model.SliceStats) string {
	return fmt.Sprintf("%.2f (n=%d, size %.1f%%)", s.SliceValue, s.SliceCount, s.SliceSize*100)
}

func formatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", p)
}

// rowLabel is the tree panel text for a row: components relative to the
// parent, or the full key for roots.
func rowLabel(row rowstate.Row, filtered bool) string {
	if filtered {
		label := segment.Label(row.State.Key, nil)
		if len(row.State.Path) > 1 {
			label += "  ‹ " + hierarchy.JoinPath(row.State.Path[:len(row.State.Path)-1])
		}
		return label
	}
	var b strings.Builder
	for i, tok := range segment.Format(row.State.Key, row.State.ParentKey()) {
		if tok.Kind == segment.TokenAnd || !tok.Emphasized {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteString(" ∧ ")
		}
		b.WriteString(tok.String())
	}
	if b.Len() == 0 {
		return row.State.SerializedKey
	}
	if row.Depth > 0 {
		return "+ " + b.String()
	}
	return b.String()
}
