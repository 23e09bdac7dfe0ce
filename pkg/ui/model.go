package ui

import (
	"fmt"
	"log"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kraitsura/segment_viewer/pkg/hierarchy"
	"github.com/kraitsura/segment_viewer/pkg/model"
	"github.com/kraitsura/segment_viewer/pkg/notes"
	"github.com/kraitsura/segment_viewer/pkg/rowstate"
	"github.com/kraitsura/segment_viewer/pkg/segment"
)

// ResultReloadedMsg carries a freshly loaded result into the update loop.
// It is the only way new results reach the controller while the program runs.
type ResultReloadedMsg struct {
	Result *model.MetricResult
	Err    error
}

// Options configures a Model.
type Options struct {
	Notes  *notes.Store // optional
	Source string       // shown in the header
	Theme  *Theme
}

// Model is the main bubbletea model: a tree panel over the controller's
// visible rows with a detail panel for the selected segment.
type Model struct {
	ctrl  *rowstate.Controller
	notes *notes.Store

	rows   []rowstate.Row
	lines  []treeLine // rows plus per-dimension headers, as laid out in the panel
	cursor int
	scroll int // first visible entry of lines

	// Detail panel
	detail      viewport.Model
	detailFocus bool
	showRelated bool

	// Filter
	filterInput textinput.Model
	filtering   bool

	// Modals
	noteInput     NoteInputModel
	showNoteInput bool
	help          HelpOverlayModel

	noteCounts map[string]int
	source     string
	status     string
	statusErr  bool

	width  int
	height int
	theme  Theme
}

// NewModel creates the UI over ctrl. The controller must already hold a
// result (or none); the model never loads files itself.
func NewModel(ctrl *rowstate.Controller, opts Options) Model {
	theme := DefaultTheme(nil)
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	ti := textinput.New()
	ti.Placeholder = "filter segments..."
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.Width = 40

	m := Model{
		ctrl:        ctrl,
		notes:       opts.Notes,
		source:      opts.Source,
		detail:      viewport.New(40, 20),
		filterInput: ti,
		help:        NewHelpOverlayModel(theme),
		theme:       theme,
		width:       100,
		height:      30,
	}
	m.detail.Style = lipgloss.NewStyle()
	if r := ctrl.Result(); r != nil && m.notes != nil {
		m.notes.SetMetric(r.Metric)
	}
	m.refreshNoteCounts()
	m.refreshRows()
	m.resize()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case ResultReloadedMsg:
		m.applyReload(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.showNoteInput:
		m.noteInput, cmd = m.noteInput.Update(msg)
	case m.filtering:
		m.filterInput, cmd = m.filterInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help.IsVisible() {
		m.help, _ = m.help.Update(msg)
		return m, nil
	}

	if m.showNoteInput {
		var cmd tea.Cmd
		m.noteInput, cmd = m.noteInput.Update(msg)
		switch {
		case m.noteInput.IsSubmitted():
			m.saveNote()
			m.showNoteInput = false
		case m.noteInput.IsCancelled():
			m.showNoteInput = false
		}
		return m, cmd
	}

	if m.filtering {
		return m.handleFilterKey(msg)
	}

	if m.detailFocus {
		switch msg.String() {
		case "tab", "shift+tab", "esc":
			m.detailFocus = false
			return m, nil
		case "q":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		if m.filterInput.Value() != "" {
			m.clearFilter()
			return m, nil
		}
		return m, tea.Quit
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "g", "home":
		m.moveCursor(-len(m.rows))
	case "G", "end":
		m.moveCursor(len(m.rows))
	case "pgdown", "ctrl+d":
		m.moveCursor(m.treeHeight() / 2)
	case "pgup", "ctrl+u":
		m.moveCursor(-m.treeHeight() / 2)
	case "enter", " ":
		m.toggleSelected()
	case "l", "right":
		m.setSelectedExpanded(true)
	case "h", "left":
		m.collapseOrParent()
	case "e":
		m.ctrl.SetAll(true)
		m.refreshRows()
	case "E":
		m.ctrl.SetAll(false)
		m.refreshRows()
	case "m":
		m.toggleMode()
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case "r":
		m.showRelated = !m.showRelated
		m.updateDetail()
	case "n":
		return m, m.openNoteInput()
	case "x":
		m.deleteLatestNote()
	case "y":
		m.copySelectedKey()
	case "tab":
		if m.width >= BreakpointNarrow {
			m.detailFocus = true
		}
	case "?":
		m.help.SetSize(m.width, m.height)
		m.help.Show()
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.clearFilter()
		return m, nil
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.cursor = 0
	m.scroll = 0
	m.refreshRows()
	return m, cmd
}

func (m *Model) clearFilter() {
	m.filtering = false
	m.filterInput.Blur()
	m.filterInput.SetValue("")
	m.refreshRows()
}

// applyReload swaps in a reloaded result. A failed reload keeps the current
// trees on screen.
func (m *Model) applyReload(msg ResultReloadedMsg) {
	if msg.Err != nil {
		log.Printf("Warning: reload failed: %v", msg.Err)
		m.setStatus(fmt.Sprintf("reload failed: %v", msg.Err), true)
		return
	}
	if err := m.ctrl.Load(msg.Result); err != nil {
		log.Printf("Warning: rebuild failed: %v", err)
		m.setStatus(fmt.Sprintf("rebuild failed: %v", err), true)
		return
	}
	if m.notes != nil && msg.Result != nil {
		m.notes.SetMetric(msg.Result.Metric)
	}
	m.refreshNoteCounts()
	m.refreshRows()
	m.setStatus("result reloaded", false)
}

func (m *Model) toggleMode() {
	if err := m.ctrl.ToggleMode(); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.cursor = 0
	m.scroll = 0
	m.refreshRows()
	m.setStatus("grouping: "+m.ctrl.Mode().Label(), false)
}

func (m *Model) toggleSelected() {
	row, ok := m.SelectedRow()
	if !ok {
		return
	}
	if m.ctrl.TryToggle(row.State.Path) {
		m.refreshRows()
	}
}

func (m *Model) setSelectedExpanded(expanded bool) {
	row, ok := m.SelectedRow()
	if !ok || row.State.IsLeaf() || row.State.Expanded == expanded {
		return
	}
	if err := m.ctrl.SetExpanded(row.State.Path, expanded); err != nil {
		log.Printf("Warning: ignoring expand on stale path: %v", err)
		return
	}
	m.refreshRows()
}

// collapseOrParent collapses an expanded row, otherwise moves to its parent.
func (m *Model) collapseOrParent() {
	row, ok := m.SelectedRow()
	if !ok {
		return
	}
	if row.State.Expanded {
		m.toggleSelected()
		return
	}
	if len(row.State.Path) < 2 {
		return
	}
	parent := hierarchy.JoinPath(row.State.Path[:len(row.State.Path)-1])
	for i := m.cursor - 1; i >= 0; i-- {
		if hierarchy.JoinPath(m.rows[i].State.Path) == parent {
			m.cursor = i
			m.ensureVisible()
			m.updateDetail()
			return
		}
	}
}

func (m *Model) copySelectedKey() {
	row, ok := m.SelectedRow()
	if !ok {
		return
	}
	if err := clipboard.WriteAll(row.State.SerializedKey); err != nil {
		m.setStatus(fmt.Sprintf("clipboard unavailable: %v", err), true)
		return
	}
	m.setStatus("copied "+row.State.SerializedKey, false)
}

func (m *Model) openNoteInput() tea.Cmd {
	row, ok := m.SelectedRow()
	if !ok {
		return nil
	}
	if m.notes == nil {
		m.setStatus("notes are disabled", true)
		return nil
	}
	m.noteInput = NewNoteInputModel(row.State.SerializedKey, segment.Label(row.State.Key, nil), m.theme)
	m.noteInput.SetSize(m.width, m.height)
	m.showNoteInput = true
	return m.noteInput.Init()
}

func (m *Model) saveNote() {
	if m.notes == nil {
		return
	}
	if _, err := m.notes.Add(m.noteInput.SegmentKey(), m.noteInput.Body()); err != nil {
		m.setStatus(fmt.Sprintf("note not saved: %v", err), true)
		return
	}
	m.refreshNoteCounts()
	m.updateDetail()
	m.setStatus("note saved", false)
}

// deleteLatestNote removes the newest note on the selected segment.
func (m *Model) deleteLatestNote() {
	row, ok := m.SelectedRow()
	if !ok {
		return
	}
	if m.notes == nil {
		m.setStatus("notes are disabled", true)
		return
	}
	n, err := m.notes.DeleteLatest(row.State.SerializedKey)
	switch {
	case err != nil:
		m.setStatus(fmt.Sprintf("note not deleted: %v", err), true)
		return
	case n == nil:
		m.setStatus("no notes on "+row.State.SerializedKey, false)
		return
	}
	m.refreshNoteCounts()
	m.updateDetail()
	m.setStatus("note deleted", false)
}

func (m *Model) refreshNoteCounts() {
	m.noteCounts = nil
	if m.notes == nil {
		return
	}
	var keys []string
	seen := make(map[string]bool)
	for _, t := range m.ctrl.Trees() {
		t.Walk(func(r *rowstate.RowState) bool {
			if !seen[r.SerializedKey] {
				seen[r.SerializedKey] = true
				keys = append(keys, r.SerializedKey)
			}
			return true
		})
	}
	counts, err := m.notes.Counts(keys)
	if err != nil {
		log.Printf("Warning: could not count notes: %v", err)
		return
	}
	m.noteCounts = counts
}

// refreshRows recomputes the visible rows, keeping the cursor on the same
// path when it is still visible.
func (m *Model) refreshRows() {
	var selected string
	if row, ok := m.SelectedRow(); ok {
		selected = hierarchy.JoinPath(row.State.Path)
	}

	q := m.filterInput.Value()
	if q != "" {
		m.rows = filterRows(m.ctrl.Trees(), q)
	} else {
		m.rows = m.ctrl.Visible()
	}

	if selected != "" {
		for i, r := range m.rows {
			if hierarchy.JoinPath(r.State.Path) == selected {
				m.cursor = i
				break
			}
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.lines = layoutTreeLines(m.rows, q != "")
	m.ensureVisible()
	m.updateDetail()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.ensureVisible()
	m.updateDetail()
}

func (m *Model) treeHeight() int {
	h := m.height - headerLines - footerLines
	if m.filtering || m.filterInput.Value() != "" {
		h--
	}
	if h < MinContentHeight {
		h = MinContentHeight
	}
	return h
}

// ensureVisible scrolls so the cursor row is on screen, together with the
// header of its forest when the row is the forest's first line.
func (m *Model) ensureVisible() {
	visible := m.treeHeight()
	line := m.cursorLine()
	top := line
	if line > 0 && m.lines[line-1].isHeader() {
		top = line - 1
	}
	if top < m.scroll {
		m.scroll = top
	} else if line >= m.scroll+visible {
		m.scroll = line - visible + 1
	}
	maxScroll := len(m.lines) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m *Model) resize() {
	detailWidth := m.width - treePanelWidth(m.width) - 1
	if detailWidth < 0 {
		detailWidth = 0
	}
	m.detail.Width = detailWidth
	m.detail.Height = m.treeHeight()
	m.filterInput.Width = m.width - 4
	m.help.SetSize(m.width, m.height)
	if m.showNoteInput {
		m.noteInput.SetSize(m.width, m.height)
	}
	m.ensureVisible()
	m.updateDetail()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// SelectedRow returns the row under the cursor.
func (m Model) SelectedRow() (rowstate.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return rowstate.Row{}, false
	}
	return m.rows[m.cursor], true
}

// Rows returns the rows currently listed in the tree panel.
func (m Model) Rows() []rowstate.Row {
	return m.rows
}

// Cursor returns the cursor index.
func (m Model) Cursor() int {
	return m.cursor
}

// Status returns the last status line message.
func (m Model) Status() string {
	return m.status
}
