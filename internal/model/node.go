package model

import "fmt"

// Dep records a single dependency edge as declared by the depending file.
type Dep struct {
	ShortName string // The name the ELF asked for (e.g. libc.so.6)
	AsPath    string // Path form used in the declaration; may be a symlink
	Resolved  string // Canonical path of the dependency node
}

// Binary is a top-level requested executable.
// Path is kept exactly as requested; binaries are never merged.
type Binary struct {
	Path string
	Deps []Dep // Ordered as declared in the dynamic section
}

// SharedObject is a library node, deduplicated by canonical Path.
type SharedObject struct {
	Path    string              // Canonical path (realpath, unless fuzzy)
	Aliases map[string]struct{} // Symlinks that resolve to Path
	IsFuzzy bool                // Resolution stopped at a fuzzy boundary
	Deps    []Dep               // Ordered as declared in the dynamic section
}

// NewSharedObject returns a node with an initialized alias set.
func NewSharedObject(path string, aliases []string, fuzzy bool) *SharedObject {
	so := &SharedObject{
		Path:    path,
		Aliases: make(map[string]struct{}, len(aliases)),
		IsFuzzy: fuzzy,
	}
	for _, a := range aliases {
		so.Aliases[a] = struct{}{}
	}
	return so
}

// AddDep appends an edge in declaration order.
func (so *SharedObject) AddDep(shortName, asPath, resolved string) {
	so.Deps = append(so.Deps, Dep{ShortName: shortName, AsPath: asPath, Resolved: resolved})
}

// AddDep appends an edge in declaration order.
func (b *Binary) AddDep(shortName, asPath, resolved string) {
	b.Deps = append(b.Deps, Dep{ShortName: shortName, AsPath: asPath, Resolved: resolved})
}

// AddAliases unions the given symlink paths into the alias set.
func (so *SharedObject) AddAliases(aliases []string) {
	for _, a := range aliases {
		so.Aliases[a] = struct{}{}
	}
}

func equalDeps(a, b []Dep) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Merge folds another observation of the same shared object into this one.
// The two must agree on path, dependency list and fuzziness; the same
// immutable file inspected twice cannot legitimately differ, so any
// disagreement is reported as an error. Only the alias set grows.
func (so *SharedObject) Merge(other *SharedObject) error {
	if so.Path != other.Path || so.IsFuzzy != other.IsFuzzy || !equalDeps(so.Deps, other.Deps) {
		return fmt.Errorf("cannot merge observations of `%s`: deps or fuzziness disagree (this: %+v, that: %+v)", so.Path, so, other)
	}
	for a := range other.Aliases {
		so.Aliases[a] = struct{}{}
	}
	return nil
}
