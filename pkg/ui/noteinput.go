package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NoteInputModel provides a modal for entering a note on a segment
type NoteInputModel struct {
	textarea   textarea.Model
	segmentKey string
	label      string
	width      int
	height     int
	theme      Theme

	// Result
	submitted bool
	cancelled bool
	body      string
}

// NewNoteInputModel creates a new note input modal for the segment with
// the given canonical key and display label.
func NewNoteInputModel(segmentKey, label string, theme Theme) NoteInputModel {
	ta := textarea.New()
	ta.Placeholder = "What explains this segment?"
	ta.Focus()
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(5)

	return NoteInputModel{
		textarea:   ta,
		segmentKey: segmentKey,
		label:      label,
		theme:      theme,
	}
}

// Init implements tea.Model
func (m NoteInputModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model
func (m NoteInputModel) Update(msg tea.Msg) (NoteInputModel, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.cancelled = true
			return m, nil
		case "ctrl+enter", "ctrl+s", "ctrl+j":
			// ctrl+j is alternate for terminals that don't support ctrl+enter
			m.submitted = true
			m.body = m.textarea.Value()
			return m, nil
		}
	}

	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m NoteInputModel) View() string {
	var b strings.Builder

	width := 60
	if m.width > 0 && m.width < 70 {
		width = m.width - 10
	}

	titleStyle := m.theme.Renderer.NewStyle().
		Bold(true).
		Foreground(m.theme.Primary).
		Width(width).
		Align(lipgloss.Center)
	b.WriteString(titleStyle.Render("Add Note"))
	b.WriteString("\n\n")

	promptStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.Subtext)
	b.WriteString(promptStyle.Render(truncateToWidth(m.label, width)))
	b.WriteString("\n\n")

	b.WriteString(m.textarea.View())
	b.WriteString("\n\n")

	hintStyle := m.theme.Renderer.NewStyle().Faint(true)
	b.WriteString(hintStyle.Render("[Ctrl+S/Ctrl+J] Save  [Esc] Cancel"))

	boxStyle := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(1, 2).
		Width(width)

	return boxStyle.Render(b.String())
}

// SetSize sets the modal dimensions
func (m *NoteInputModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	taWidth := width - 20
	if taWidth < 30 {
		taWidth = 30
	}
	if taWidth > 60 {
		taWidth = 60
	}
	m.textarea.SetWidth(taWidth)
}

// IsSubmitted returns true if the user submitted the note
func (m NoteInputModel) IsSubmitted() bool {
	return m.submitted
}

// IsCancelled returns true if the user cancelled
func (m NoteInputModel) IsCancelled() bool {
	return m.cancelled
}

// Body returns the entered note text
func (m NoteInputModel) Body() string {
	return m.body
}

// SegmentKey returns the canonical key being annotated
func (m NoteInputModel) SegmentKey() string {
	return m.segmentKey
}
