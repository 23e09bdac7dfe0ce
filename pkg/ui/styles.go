package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Dracula-inspired
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBg          = lipgloss.Color("#282A36")
	ColorBgSubtle    = lipgloss.Color("#363949")
	ColorBgHighlight = lipgloss.Color("#44475A")
	ColorText        = lipgloss.Color("#F8F8F2")
	ColorSubtext     = lipgloss.Color("#BFBFBF")
	ColorMuted       = lipgloss.Color("#6272A4")

	ColorPrimary = lipgloss.Color("#BD93F9")
	ColorInfo    = lipgloss.Color("#8BE9FD")
	ColorSuccess = lipgloss.Color("#50FA7B")
	ColorWarning = lipgloss.Color("#FFB86C")
	ColorDanger  = lipgloss.Color("#FF5555")
)

// Theme carries the renderer and adaptive colors used by every view.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Positive  lipgloss.AdaptiveColor // impact > 0
	Negative  lipgloss.AdaptiveColor // impact < 0
	Warning   lipgloss.AdaptiveColor
	Info      lipgloss.AdaptiveColor
}

// DefaultTheme returns the standard palette bound to r. A nil renderer uses
// lipgloss's default renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: string(ColorPrimary)},
		Secondary: lipgloss.AdaptiveColor{Light: "#5A6FA0", Dark: string(ColorMuted)},
		Subtext:   lipgloss.AdaptiveColor{Light: "#555555", Dark: string(ColorSubtext)},
		Border:    lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: string(ColorBgHighlight)},
		Positive:  lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: string(ColorSuccess)},
		Negative:  lipgloss.AdaptiveColor{Light: "#CF222E", Dark: string(ColorDanger)},
		Warning:   lipgloss.AdaptiveColor{Light: "#9A6700", Dark: string(ColorWarning)},
		Info:      lipgloss.AdaptiveColor{Light: "#0969DA", Dark: string(ColorInfo)},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// METRIC VISUALIZATION
// ══════════════════════════════════════════════════════════════════════════════

// RenderImpact renders a signed impact value colored by direction.
func RenderImpact(impact float64, t Theme) string {
	color := t.Subtext
	switch {
	case impact > 0:
		color = t.Positive
	case impact < 0:
		color = t.Negative
	}
	return t.Renderer.NewStyle().Foreground(color).Render(formatSigned(impact))
}

func formatSigned(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%+.2fM", v/1e6)
	case math.Abs(v) >= 1e3:
		return fmt.Sprintf("%+.1fk", v/1e3)
	default:
		return fmt.Sprintf("%+.2f", v)
	}
}

// RenderMiniBar renders a mini horizontal bar for a value between 0 and 1
func RenderMiniBar(value float64, width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	if value < 0 || math.IsNaN(value) {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}

	var barColor lipgloss.AdaptiveColor
	if value >= 0.5 {
		barColor = t.Warning
	} else if value >= 0.25 {
		barColor = t.Info
	} else {
		barColor = t.Secondary
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Renderer.NewStyle().Foreground(barColor).Render(bar)
}

// RenderNoteBadge renders a note counter, or nothing for zero.
func RenderNoteBadge(count int, t Theme) string {
	if count <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().Foreground(t.Info).Render(fmt.Sprintf("✎%d", count))
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Border).
		Render(strings.Repeat("─", width))
}
