package graph

import (
	"path/filepath"
	"slices"

	"hostdeps/internal/diag"
	"hostdeps/internal/elfinspect"
	"hostdeps/internal/model"
)

// Inspector is the ELF-introspection capability the builder drives.
// Satisfied by *elfinspect.Inspector; tests substitute a fake.
type Inspector interface {
	Inspect(path string) (*elfinspect.Info, error)
}

// Builder walks one binary at a time, filling the shared Store. It owns
// the Store exclusively during the build phase; afterwards the Store is
// read-only.
type Builder struct {
	Insp  Inspector
	Fuzzy *FuzzySet
	Store *Store
	Diag  *diag.Reporter
}

// ProcessFile inspects one requested binary, recursively resolves its
// shared-object dependencies, and registers the discovered libraries.
//
// Libraries enter the Store only once their own dependency edges are
// complete: insertion triggers merge-with-assert against any existing
// node for the same canonical path, and a partially-built node would
// spuriously fail that equality check.
func (b *Builder) ProcessFile(path string) (*model.Binary, error) {
	b.Diag.Infof(0, "processing file at `%s`", diag.PathStyle.Render(path))

	info, err := b.Insp.Inspect(path)
	if err != nil {
		return nil, err
	}

	bin := &model.Binary{Path: path}
	seen := make(map[string]*model.SharedObject)
	var completed []*model.SharedObject

	for _, name := range info.Needed {
		asPath, ok := info.Resolved[name]
		if !ok {
			b.Diag.Critf(1, "unable to resolve a path for library %s; skipping!", diag.PathStyle.Render(name))
			continue
		}
		so, err := b.library(asPath, seen, &completed)
		if err != nil {
			return nil, err
		}
		bin.AddDep(name, asPath, so.Path)
	}

	// The interpreter is a dependency too, unless the dynamic section
	// already declared it under the same short name.
	if info.Interp != "" && !slices.Contains(info.Needed, filepath.Base(info.Interp)) {
		so, err := b.library(info.Interp, seen, &completed)
		if err != nil {
			return nil, err
		}
		bin.AddDep(filepath.Base(info.Interp), info.Interp, so.Path)
	}

	for _, so := range completed {
		if err := b.Store.Add(so); err != nil {
			return nil, err
		}
	}
	return bin, nil
}

// library resolves one declared path to its shared-object node, creating
// and inspecting the node on first encounter within this walk. Completed
// nodes are appended to *completed in post-order, so every node precedes
// nothing it depends on being filled in.
//
// seen is keyed by canonical path and makes dependency cycles (libc and
// the loader reference each other) terminate; a revisit only unions the
// newly-observed aliases.
func (b *Builder) library(asPath string, seen map[string]*model.SharedObject, completed *[]*model.SharedObject) (*model.SharedObject, error) {
	canonical, aliases, isFuzzy, err := Resolve(asPath, b.Fuzzy, b.Diag)
	if err != nil {
		return nil, err
	}
	if so, ok := seen[canonical]; ok {
		so.AddAliases(aliases)
		return so, nil
	}

	so := model.NewSharedObject(canonical, aliases, isFuzzy)
	seen[canonical] = so

	info, err := b.Insp.Inspect(canonical)
	if err != nil {
		return nil, err
	}
	for _, name := range info.Needed {
		depPath, ok := info.Resolved[name]
		if !ok {
			b.Diag.Critf(1, "unable to resolve a path for library %s; skipping!", diag.PathStyle.Render(name))
			continue
		}
		dep, err := b.library(depPath, seen, completed)
		if err != nil {
			return nil, err
		}
		so.AddDep(name, depPath, dep.Path)
	}

	*completed = append(*completed, so)
	return so, nil
}

// ReportUnusedFuzzyPaths warns about configured fuzzy paths that were
// never traversed; they are probably stale configuration.
func (b *Builder) ReportUnusedFuzzyPaths() {
	for _, p := range b.Fuzzy.Unused() {
		b.Diag.Critf(0, "fuzzy dep path `%s` was not encountered!", diag.PathStyle.Render(p))
	}
}
