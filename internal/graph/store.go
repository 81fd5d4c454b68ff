package graph

import "hostdeps/internal/model"

// Store keeps exactly one SharedObject per canonical path. Iteration
// follows insertion order; label assignment depends on that, so the
// order must never be re-sorted.
type Store struct {
	order []string
	nodes map[string]*model.SharedObject
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{nodes: make(map[string]*model.SharedObject)}
}

// Add inserts a fully-built node, or merges it into an existing node for
// the same canonical path. Merging requires identical dependency lists
// and fuzziness (see model.SharedObject.Merge); callers must therefore
// only Add nodes whose dependency edges are complete.
func (s *Store) Add(so *model.SharedObject) error {
	if existing, ok := s.nodes[so.Path]; ok {
		return existing.Merge(so)
	}
	s.order = append(s.order, so.Path)
	s.nodes[so.Path] = so
	return nil
}

// Get returns the node for a canonical path, if present.
func (s *Store) Get(path string) (*model.SharedObject, bool) {
	so, ok := s.nodes[path]
	return so, ok
}

// Len returns the number of distinct shared objects.
func (s *Store) Len() int { return len(s.order) }

// All returns the nodes in insertion order.
func (s *Store) All() []*model.SharedObject {
	out := make([]*model.SharedObject, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.nodes[p])
	}
	return out
}
