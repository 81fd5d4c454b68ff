package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m AppModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.DetailsViewport.Width = msg.Width / 2
		m.DetailsViewport.Height = msg.Height - 4 // minus footer/header
		return m, nil

	case tea.KeyMsg:
		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				m.InputMode = false
				m.performSearch()
				return m, nil
			case tea.KeyEsc:
				m.InputMode = false
				m.InputBuffer.Blur()
				m.SearchActive = false
				m.InputBuffer.SetValue("")
				m.performSearch()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.SearchActive {
				m.InputBuffer.Blur()
				m.SearchActive = false
				m.InputBuffer.SetValue("")
				m.performSearch()
			}
		case "up", "k":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
			}
		case "down", "j":
			if m.SelectedIdx < len(m.FilteredIndices)-1 {
				m.SelectedIdx++
			}
		case "enter", " ", "right", "l":
			if r, ok := m.selectedRow(); ok && m.expandable(r) {
				m.Expanded[r.ID] = !m.Expanded[r.ID]
				m.rebuildRows()
				m.performSearch()
			}
		case "left", "h":
			if r, ok := m.selectedRow(); ok && m.Expanded[r.ID] {
				m.Expanded[r.ID] = false
				m.rebuildRows()
				m.performSearch()
			}
		case "a":
			m.ShowAliases = !m.ShowAliases
		case "/":
			m.InputMode = true
			m.InputBuffer.Focus()
			m.InputBuffer.SetValue("")
			return m, textinput.Blink
		}
	}

	return m, cmd
}

func (m *AppModel) selectedRow() (Row, bool) {
	if m.SelectedIdx >= len(m.FilteredIndices) {
		return Row{}, false
	}
	return m.Rows[m.FilteredIndices[m.SelectedIdx]], true
}

func (m *AppModel) expandable(r Row) bool {
	return !r.Missing && !r.Cycle && r.Node != nil && len(r.Node.Deps) > 0
}

// performSearch filters visible rows by label or soname prefix. An empty
// term shows everything.
func (m *AppModel) performSearch() {
	term := strings.ToLower(m.InputBuffer.Value())
	if term == "" {
		m.SearchActive = false
		m.resetFilter()
		return
	}

	m.SearchActive = true
	var result []int
	for i, r := range m.Rows {
		name := strings.ToLower(r.ShortName)
		label := ""
		if r.Node != nil {
			label = strings.ToLower(r.Node.Label)
		}
		if strings.HasPrefix(name, term) || strings.HasPrefix(label, term) {
			result = append(result, i)
		}
	}
	m.FilteredIndices = result

	if m.SelectedIdx >= len(m.FilteredIndices) {
		if len(m.FilteredIndices) > 0 {
			m.SelectedIdx = len(m.FilteredIndices) - 1
		} else {
			m.SelectedIdx = 0
		}
	}
}
