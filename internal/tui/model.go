package tui

import (
	"hostdeps/internal/emit"
	"hostdeps/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Row is one visible line in the graph panel: a binary, or a dependency
// reached from one, indented by depth.
type Row struct {
	ID        string // chain of paths from the root, unique per position
	Depth     int
	ShortName string // empty for top-level binaries
	Node      *emit.Node
	Declared  string
	Cycle     bool // the node already appeared on this row's ancestor chain
	Missing   bool // the dependency resolved to nothing in the snapshot
}

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Snapshot *emit.Snapshot
	byPath   map[string]*emit.Node

	// UI State
	Rows        []Row
	Expanded    map[string]bool
	SelectedIdx int
	WindowSize  tea.WindowSizeMsg
	ShowAliases bool

	// Search State
	InputMode       bool
	InputBuffer     textinput.Model
	FilteredIndices []int // indices into Rows
	SearchActive    bool

	// Components
	DetailsViewport viewport.Model
}

// InitialModel builds the initial state around a finished snapshot.
func InitialModel(snap *emit.Snapshot) AppModel {
	ti := textinput.New()
	ti.Placeholder = "Label or soname..."
	ti.CharLimit = 80
	ti.Width = 30

	byPath := make(map[string]*emit.Node)
	for i := range snap.Binaries {
		byPath[snap.Binaries[i].Path] = &snap.Binaries[i]
	}
	for i := range snap.Libraries {
		byPath[snap.Libraries[i].Path] = &snap.Libraries[i]
	}

	m := AppModel{
		Snapshot:    snap,
		byPath:      byPath,
		Expanded:    make(map[string]bool),
		InputBuffer: ti,
	}
	m.rebuildRows()
	m.resetFilter()
	return m
}

// rebuildRows flattens the expanded parts of the graph into Rows.
func (m *AppModel) rebuildRows() {
	m.Rows = m.Rows[:0]
	for i := range m.Snapshot.Binaries {
		bin := &m.Snapshot.Binaries[i]
		m.appendNode(bin.Path, bin, "", "", 0, nil)
	}
}

func (m *AppModel) appendNode(id string, node *emit.Node, shortName, declared string, depth int, chain map[string]bool) {
	onChain := chain[node.Path]
	m.Rows = append(m.Rows, Row{
		ID:        id,
		Depth:     depth,
		ShortName: shortName,
		Node:      node,
		Declared:  declared,
		Cycle:     onChain,
	})
	if onChain || !m.Expanded[id] {
		return
	}

	next := make(map[string]bool, len(chain)+1)
	for p := range chain {
		next[p] = true
	}
	next[node.Path] = true

	for _, dep := range node.Deps {
		childID := id + "\x00" + dep.Path
		child, ok := m.byPath[dep.Path]
		if !ok {
			m.Rows = append(m.Rows, Row{
				ID:        childID,
				Depth:     depth + 1,
				ShortName: dep.ShortName,
				Declared:  dep.Declared,
				Missing:   true,
			})
			continue
		}
		m.appendNode(childID, child, dep.ShortName, dep.Declared, depth+1, next)
	}
}

func (m *AppModel) resetFilter() {
	m.FilteredIndices = make([]int, len(m.Rows))
	for i := range m.Rows {
		m.FilteredIndices[i] = i
	}
	if m.SelectedIdx >= len(m.FilteredIndices) {
		m.SelectedIdx = 0
	}
}

func (m *AppModel) iconFor(r Row) string {
	switch {
	case r.Missing:
		return model.IconMissing
	case r.Depth == 0:
		return model.IconBinary
	case r.Node != nil && r.Node.Fuzzy:
		return model.IconFuzzy
	case r.Node != nil && len(r.Node.Aliases) > 0:
		return model.IconSymlink
	default:
		return model.IconLibrary
	}
}
