package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	fuzzyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // Orange

	borderColor = lipgloss.Color("63")
)

func (m AppModel) View() string {
	width := m.WindowSize.Width
	height := m.WindowSize.Height

	netWidth := width - 6
	if netWidth < 20 {
		netWidth = 20
	}
	leftWidth := netWidth / 2
	rightWidth := netWidth - leftWidth

	boxHeight := height - 6
	if boxHeight < 6 {
		boxHeight = 6
	}
	interiorHeight := boxHeight - 2
	if interiorHeight < 2 {
		interiorHeight = 2
	}

	// LEFT PANEL: dependency graph
	var leftView strings.Builder
	leftView.WriteString(titleStyle.Render("Dependency Graph"))
	leftView.WriteString("\n\n")

	// Header takes 2 lines.
	visibleItems := interiorHeight - 2
	if visibleItems < 1 {
		visibleItems = 1
	}
	startIdx := 0
	endIdx := len(m.FilteredIndices)
	if len(m.FilteredIndices) > visibleItems {
		if m.SelectedIdx >= visibleItems/2 {
			startIdx = m.SelectedIdx - (visibleItems / 2)
		}
		if startIdx < 0 {
			startIdx = 0
		}
		if startIdx+visibleItems > len(m.FilteredIndices) {
			startIdx = len(m.FilteredIndices) - visibleItems
		}
		endIdx = startIdx + visibleItems
	}

	for i := startIdx; i < endIdx; i++ {
		r := m.Rows[m.FilteredIndices[i]]
		line := m.rowLine(r)

		if len(line) > leftWidth-2 {
			line = line[:leftWidth-5] + "..."
		}

		style := normalStyle
		switch {
		case i == m.SelectedIdx:
			style = selectedStyle
		case r.Missing:
			style = missingStyle
		case r.Cycle:
			style = dimStyle
		}
		leftView.WriteString(style.Render(line))
		leftView.WriteString("\n")
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(strings.TrimSuffix(leftView.String(), "\n"))

	// RIGHT PANEL: details of the selected node
	var rightView strings.Builder
	rightView.WriteString(titleStyle.Render("Details"))
	rightView.WriteString("\n")

	if r, ok := m.selectedRow(); ok {
		m.renderDetails(&rightView, r)
	} else {
		rightView.WriteString("\nNo matches.")
	}

	// Slice the details to the interior height.
	lines := strings.Split(strings.TrimSuffix(rightView.String(), "\n"), "\n")
	if len(lines) > interiorHeight {
		lines = lines[:interiorHeight]
	}
	var sb strings.Builder
	for i, line := range lines {
		if len(line) > rightWidth {
			line = line[:rightWidth-4] + "..."
		}
		sb.WriteString(line)
		if i < len(lines)-1 {
			sb.WriteString("\n")
		}
	}

	right := lipgloss.NewStyle().
		Width(rightWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(sb.String())

	// Footer
	help := "Help: ↑/↓: Navigate • ↵/→: Expand • ←: Collapse • a: Aliases • /: Search • q: Quit"
	footer := "\n\n" + help
	if m.InputMode {
		footer = fmt.Sprintf("\n\nSearch: %s", m.InputBuffer.View())
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + footer
}

func (m AppModel) rowLine(r Row) string {
	indent := strings.Repeat("  ", r.Depth)

	if r.Missing {
		return fmt.Sprintf("%s%s %s (unresolved)", indent, m.iconFor(r), r.ShortName)
	}

	name := r.ShortName
	if r.Depth == 0 {
		name = r.Node.Path
	}
	line := fmt.Sprintf("%s%s %s", indent, m.iconFor(r), name)
	if r.Node != nil && r.Node.Label != "" {
		line += fmt.Sprintf("  [%s]", r.Node.Label)
	}
	if r.Cycle {
		line += " (cycle)"
	} else if m.expandable(r) {
		if m.Expanded[r.ID] {
			line += " ▾"
		} else {
			line += fmt.Sprintf(" ▸ %d", len(r.Node.Deps))
		}
	}
	return line
}

func (m AppModel) renderDetails(w *strings.Builder, r Row) {
	if r.Missing {
		w.WriteString(fmt.Sprintf("\nSoname:     %s", r.ShortName))
		w.WriteString(fmt.Sprintf("\nDeclared:   %s", r.Declared))
		w.WriteString("\n\n" + missingStyle.Render("Not found in any search path."))
		return
	}

	w.WriteString(fmt.Sprintf("\nLabel:      %s", r.Node.Label))
	w.WriteString(fmt.Sprintf("\nPath:       %s", r.Node.Path))
	if r.ShortName != "" {
		w.WriteString(fmt.Sprintf("\nSoname:     %s", r.ShortName))
	}
	if r.Declared != "" && r.Declared != r.Node.Path {
		w.WriteString(fmt.Sprintf("\nDeclared:   %s", r.Declared))
	}
	if r.Node.Fuzzy {
		w.WriteString("\n" + fuzzyStyle.Render("Fuzzy:      matched a fuzzy dependency path"))
	}
	w.WriteString(fmt.Sprintf("\nDirect deps: %d", len(r.Node.Deps)))

	if len(r.Node.Aliases) > 0 {
		w.WriteString(fmt.Sprintf("\n\nAliases (%d):", len(r.Node.Aliases)))
		if m.ShowAliases {
			for _, a := range r.Node.Aliases {
				w.WriteString("\n  " + a)
			}
		} else {
			w.WriteString(" press 'a' to list")
		}
	}

	if len(r.Node.Deps) > 0 {
		w.WriteString("\n\nNeeded:")
		for _, d := range r.Node.Deps {
			w.WriteString(fmt.Sprintf("\n  %s => %s", d.ShortName, d.Path))
		}
	}
}
