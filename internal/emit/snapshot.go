// Package emit exposes the finished dependency graph as plain data for
// downstream consumers (build-system generators, the TUI, the web view).
package emit

import (
	"encoding/json"
	"io"
	"sort"

	"hostdeps/internal/graph"
	"hostdeps/internal/label"
	"hostdeps/internal/model"
)

// DepRef is one dependency edge, with the resolved node's label filled
// in for convenience.
type DepRef struct {
	ShortName string `json:"shortName"`
	Declared  string `json:"declared"`
	Path      string `json:"path"`
	Label     string `json:"label"`
}

// Node is one binary or shared object in the snapshot.
type Node struct {
	Label   string   `json:"label"`
	Path    string   `json:"path"`
	Aliases []string `json:"aliases,omitempty"`
	Fuzzy   bool     `json:"fuzzy,omitempty"`
	Deps    []DepRef `json:"deps"`
}

// Snapshot is everything the core owes its consumers: per node the
// canonical path, alias set, fuzziness flag, ordered dependency edges
// and assigned label.
type Snapshot struct {
	Binaries  []Node `json:"binaries"`
	Libraries []Node `json:"libraries"`
}

// Build flattens the graph and label assignment into a Snapshot.
// Ordering follows the run: binaries as requested, libraries in store
// insertion order, aliases sorted for stable output.
func Build(bins []*model.Binary, store *graph.Store, labels *label.Assignment) *Snapshot {
	byPath := labels.ByPath()

	depRefs := func(deps []model.Dep) []DepRef {
		out := make([]DepRef, 0, len(deps))
		for _, d := range deps {
			out = append(out, DepRef{
				ShortName: d.ShortName,
				Declared:  d.AsPath,
				Path:      d.Resolved,
				Label:     byPath[d.Resolved],
			})
		}
		return out
	}

	snap := &Snapshot{}
	for _, bin := range bins {
		snap.Binaries = append(snap.Binaries, Node{
			Label: byPath[bin.Path],
			Path:  bin.Path,
			Deps:  depRefs(bin.Deps),
		})
	}
	for _, so := range store.All() {
		var aliases []string
		for a := range so.Aliases {
			aliases = append(aliases, a)
		}
		sort.Strings(aliases)
		snap.Libraries = append(snap.Libraries, Node{
			Label:   byPath[so.Path],
			Path:    so.Path,
			Aliases: aliases,
			Fuzzy:   so.IsFuzzy,
			Deps:    depRefs(so.Deps),
		})
	}
	return snap
}

// WriteJSON renders the snapshot as indented JSON.
func WriteJSON(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
