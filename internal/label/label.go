// Package label derives unique, human-readable short names for every
// node in the dependency graph.
package label

import (
	"fmt"
	"path/filepath"
	"strings"

	"hostdeps/internal/graph"
	"hostdeps/internal/model"
)

// Potentials returns the candidate labels for a path, least specific
// first: for /lib64/libc.so.6 that is
//
//	["libc", "libc.so", "libc.so.6", "lib64__libc.so.6"]
//
// The final entry joins every path segment with "__" and is unique as
// long as paths are, making it a guaranteed fallback.
func Potentials(p string) []string {
	name := filepath.Base(p)

	// Suffixes stripped one at a time, most specific first.
	stems := []string{name}
	cur := name
	for {
		ext := filepath.Ext(cur)
		stem := strings.TrimSuffix(cur, ext)
		if ext == "" || stem == "" || stem == cur {
			break
		}
		stems = append(stems, stem)
		cur = stem
	}
	// Reverse into least-specific-first consumption order.
	out := make([]string, 0, len(stems)+1)
	for i := len(stems) - 1; i >= 0; i-- {
		out = append(out, stems[i])
	}
	out = append(out, strings.Join(strings.Split(strings.Trim(p, "/"), "/"), "__"))
	return out
}

// Assignment maps labels to node paths while remembering insertion order
// for deterministic output.
type Assignment struct {
	labels map[string]string
	order  []string
}

// Labels returns the label -> canonical path mapping.
func (a *Assignment) Labels() map[string]string { return a.labels }

// ByPath inverts the mapping to canonical path -> label.
func (a *Assignment) ByPath() map[string]string {
	out := make(map[string]string, len(a.labels))
	for l, p := range a.labels {
		out[p] = l
	}
	return out
}

// Assign computes a total, injective label mapping for all binaries and
// shared objects. Binaries are placed first so they get first claim on
// the short friendly names.
//
// Placement order follows the input order of the binaries and the
// store's insertion order; this makes labels sensitive to the order the
// binaries were requested in, which the emitted output deliberately
// preserves (sorting here would silently change downstream names).
func Assign(bins []*model.Binary, store *graph.Store) (*Assignment, error) {
	a := &Assignment{labels: make(map[string]string)}
	for _, bin := range bins {
		if err := a.place(bin.Path); err != nil {
			return nil, err
		}
	}
	for _, so := range store.All() {
		if err := a.place(so.Path); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// pending is a node awaiting (re-)placement, with its candidate labels.
type pending struct {
	path string
	pots []string
}

// labelAt reads a candidate at a specificity level; level -1 selects the
// full-path fallback.
func labelAt(pots []string, level int) string {
	if level < 0 {
		return pots[len(pots)-1]
	}
	return pots[level]
}

// place claims a label for path, displacing previous claims as needed.
//
// Each round tries one specificity level for the entire displaced set at
// once. If any member of the round has run out of more-specific
// candidates, the whole round jumps to the full-path fallback: mixing
// `libc.so.6` with `lib64__libc.so` in one round would be more confusing
// than two fully-qualified labels. Colliding claims are evicted and join
// the round, which retries at the next level. Termination: path depth is
// finite and the fallback labels are unique for unique paths; if even
// the fallback level collides something upstream already went wrong.
func (a *Assignment) place(path string) error {
	displaced := []pending{{path: path, pots: Potentials(path)}}
	level := 0
	placed := false

	for i := range displaced[0].pots {
		level = i
		for _, d := range displaced {
			if i >= len(d.pots)-1 {
				level = -1
				break
			}
		}

		seen := make(map[string]bool, len(displaced))
		distinct, free := true, true
		for _, d := range displaced {
			l := labelAt(d.pots, level)
			if seen[l] {
				distinct = false
			}
			seen[l] = true
			if _, taken := a.labels[l]; taken {
				free = false
			}
		}
		if distinct && free {
			placed = true
			break
		}

		// Evict every claim at or below this specificity level and let
		// the owners join the round. The sweep is index-based because
		// evictions append to displaced while we iterate, and the
		// full-path jump can skip over intermediate levels.
		for j := 0; j < len(displaced); j++ {
			d := displaced[j]
			var sweep []string
			if level < 0 {
				sweep = d.pots
			} else {
				sweep = d.pots[:level+1]
			}
			for _, l := range sweep {
				if victim, taken := a.labels[l]; taken {
					delete(a.labels, l)
					a.dropOrder(l)
					displaced = append(displaced, pending{path: victim, pots: Potentials(victim)})
				}
			}
		}
	}

	if !placed {
		return fmt.Errorf("unable to find a unique label mapping for %d node(s) starting at `%s`", len(displaced), path)
	}

	for _, d := range displaced {
		l := labelAt(d.pots, level)
		a.labels[l] = d.path
		a.order = append(a.order, l)
	}
	return nil
}

func (a *Assignment) dropOrder(label string) {
	for i, l := range a.order {
		if l == label {
			a.order = append(a.order[:i], a.order[i+1:]...)
			return
		}
	}
}

// Ordered returns the labels in the order they were finally claimed.
func (a *Assignment) Ordered() []string {
	return a.order
}
