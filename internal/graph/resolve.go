// Package graph builds the deduplicated dependency graph between
// requested binaries and the shared objects they transitively need.
package graph

import (
	"fmt"
	"os"
	"path/filepath"

	"hostdeps/internal/diag"
)

// FuzzySet holds the configured fuzzy symlink paths: symlinks that, when
// encountered, are deliberately not resolved further. It tracks which
// members were actually hit so stale configuration can be reported.
type FuzzySet struct {
	order []string
	used  map[string]bool
}

// NewFuzzySet builds a set from the configured paths.
func NewFuzzySet(paths []string) *FuzzySet {
	f := &FuzzySet{used: make(map[string]bool, len(paths))}
	for _, p := range paths {
		if _, ok := f.used[p]; !ok {
			f.order = append(f.order, p)
			f.used[p] = false
		}
	}
	return f
}

// Match reports whether path is a fuzzy boundary, marking it used.
func (f *FuzzySet) Match(path string) bool {
	if _, ok := f.used[path]; !ok {
		return false
	}
	f.used[path] = true
	return true
}

// Unused returns configured paths never encountered during the run, in
// configuration order.
func (f *FuzzySet) Unused() []string {
	var out []string
	for _, p := range f.order {
		if !f.used[p] {
			out = append(out, p)
		}
	}
	return out
}

// Resolve walks the symlink chain at path to a canonical real path,
// recording every symlink traversed as an alias.
//
// The fuzzy check happens before a link is followed, so when a fuzzy
// member is reached it is itself the canonical result (isFuzzy true) and
// does not join the alias list. Relative link targets resolve against the
// directory of the symlink holding them.
func Resolve(path string, fuzzy *FuzzySet, rep *diag.Reporter) (canonical string, aliases []string, isFuzzy bool, err error) {
	orig := path
	if _, err := os.Lstat(path); err != nil {
		return "", nil, false, fmt.Errorf("`%s` does not exist: %w", path, err)
	}

	for {
		st, lerr := os.Lstat(path)
		if lerr != nil {
			return "", nil, false, fmt.Errorf("resolving `%s`: %w", orig, lerr)
		}
		if st.Mode()&os.ModeSymlink == 0 {
			break
		}
		if fuzzy.Match(path) {
			rep.Infof(1, "`%s` is in the fuzzy dep path list; not following further", path)
			isFuzzy = true
			break
		}

		aliases = append(aliases, path)
		target, rerr := os.Readlink(path)
		if rerr != nil {
			return "", nil, false, fmt.Errorf("resolving `%s`: %w", orig, rerr)
		}
		if filepath.IsAbs(target) {
			path = filepath.Clean(target)
		} else {
			path = filepath.Join(filepath.Dir(path), target)
		}
	}

	// Cross-check the manual walk against full system resolution. A
	// mismatch usually means a symlink sat in a parent directory of the
	// chain; the manual result is still what we want to model.
	if !isFuzzy {
		if expected, eerr := filepath.EvalSymlinks(orig); eerr == nil && expected != path {
			rep.Warnf(1, "expected: `%s`\n%s     got: `%s`\n%shave aliases: %v\n\n%sthere's likely a symlink within the path (should be okay)",
				expected, indent12, path, indent12, aliases, indent12)
		}
	}

	return path, aliases, isFuzzy, nil
}

// Continuation lines of the resolution warning align under level 1.
const indent12 = "            "
