package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# Segment Viewer

## Navigation

| Key | Action |
|-----|--------|
| j / ↓ | Move down |
| k / ↑ | Move up |
| g / G | Top / bottom |
| tab | Focus detail panel |

## Tree

| Key | Action |
|-----|--------|
| enter / space | Expand or collapse |
| l / → | Expand |
| h / ← | Collapse, or jump to parent |
| e / E | Expand all / collapse all |
| m | Switch grouping (combined / per dimension) |

## Segment

| Key | Action |
|-----|--------|
| / | Fuzzy filter |
| r | Show related segments |
| n | Add note |
| x | Delete newest note |
| y | Copy segment key |

## View

| Key | Action |
|-----|--------|
| ? | Toggle this help |
| q | Quit |
`

// HelpOverlayModel shows keyboard shortcuts help
type HelpOverlayModel struct {
	visible  bool
	width    int
	height   int
	theme    Theme
	rendered string
}

// NewHelpOverlayModel creates a new help overlay
func NewHelpOverlayModel(theme Theme) HelpOverlayModel {
	return HelpOverlayModel{theme: theme}
}

// Show makes the help overlay visible
func (m *HelpOverlayModel) Show() {
	m.visible = true
	m.render()
}

// Hide makes the help overlay invisible
func (m *HelpOverlayModel) Hide() {
	m.visible = false
}

// Toggle toggles visibility
func (m *HelpOverlayModel) Toggle() {
	m.visible = !m.visible
}

// IsVisible returns true if overlay is showing
func (m HelpOverlayModel) IsVisible() bool {
	return m.visible
}

// SetSize sets dimensions and drops the cached rendering.
func (m *HelpOverlayModel) SetSize(width, height int) {
	if width != m.width {
		m.rendered = ""
	}
	m.width = width
	m.height = height
}

// Update handles input
func (m HelpOverlayModel) Update(msg tea.Msg) (HelpOverlayModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		// Any key closes help
		m.visible = false
	}
	return m, nil
}

func (m *HelpOverlayModel) render() string {
	if m.rendered != "" {
		return m.rendered
	}
	wrap := m.width - 10
	if wrap < 40 {
		wrap = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if out, err := r.Render(helpMarkdown); err == nil {
			m.rendered = strings.TrimSpace(out)
			return m.rendered
		}
	}
	m.rendered = helpMarkdown
	return m.rendered
}

// View renders the help overlay
func (m *HelpOverlayModel) View() string {
	if !m.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.render())
	b.WriteString("\n\n")
	hintStyle := m.theme.Renderer.NewStyle().Faint(true).Italic(true)
	b.WriteString(hintStyle.Render("[Press any key to close]"))

	boxStyle := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1)

	return boxStyle.Render(b.String())
}
