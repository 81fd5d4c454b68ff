// Package elfinspect reads the parts of an ELF file that matter for
// shared-library dependency resolution: the file's type, its interpreter
// (if any), the needed-library names in declaration order, and where the
// dynamic loader would find each of them.
package elfinspect

import (
	"debug/elf"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies an inspected file.
type Kind int

const (
	KindExecutable   Kind = iota // ET_EXEC
	KindSharedObject             // ET_DYN (includes PIE executables)
)

func (k Kind) String() string {
	if k == KindExecutable {
		return "executable"
	}
	return "shared object"
}

// Info is the result of inspecting a single file.
type Info struct {
	Kind   Kind
	Interp string   // Interpreter path from PT_INTERP; empty if absent
	Needed []string // DT_NEEDED names, in declaration order

	// Resolved maps each needed name to the path the loader would pick.
	// Names that could not be resolved are absent; the caller decides
	// whether that is fatal (for us it is not: the edge is dropped).
	Resolved map[string]string
}

// Inspector inspects ELF files against one search-path table.
type Inspector struct {
	Paths *SearchPaths
}

// Inspect reads the ELF at path and resolves its needed names.
//
// Any ELF type other than an executable or a shared object is an input
// error. A shared object without its own PT_INTERP gets the search paths
// augmented with the loader-derived directories (see
// SearchPaths.InterpDerived); failure of that derivation is fatal.
func (ins *Inspector) Inspect(path string) (*Info, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("inspecting `%s`: %w", path, err)
	}
	defer f.Close()

	info := &Info{Interp: readInterp(f)}
	switch f.Type {
	case elf.ET_EXEC:
		info.Kind = KindExecutable
	case elf.ET_DYN:
		info.Kind = KindSharedObject
	default:
		return nil, fmt.Errorf("expected a binary (ET_EXEC) or a shared object (ET_DYN) but got a different ELF type for `%s`: %v", path, f.Type)
	}

	info.Needed, err = f.DynString(elf.DT_NEEDED)
	if err != nil {
		// Statically linked files have no dynamic section at all.
		info.Needed = nil
	}

	rpaths := normalizeRpaths(readRpaths(f), filepath.Dir(path))

	augment := info.Kind == KindSharedObject && info.Interp == ""
	var extra []string
	if augment {
		extra, err = ins.Paths.InterpDerived()
		if err != nil {
			return nil, err
		}
	}

	info.Resolved = make(map[string]string, len(info.Needed))
	for _, name := range info.Needed {
		if p, ok := ins.resolveName(name, rpaths, extra); ok {
			info.Resolved[name] = p
		}
	}
	return info, nil
}

// readInterp extracts the PT_INTERP interpreter path, if present.
func readInterp(f *elf.File) string {
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_INTERP {
			continue
		}
		r := prog.Open()
		if r == nil {
			return ""
		}
		if data, err := io.ReadAll(r); err == nil {
			return strings.TrimRight(string(data), "\x00")
		}
	}
	return ""
}

// readRpaths collects DT_RPATH and DT_RUNPATH entries, split on ':'.
func readRpaths(f *elf.File) []string {
	var rpaths []string
	for _, tag := range []elf.DynTag{elf.DT_RPATH, elf.DT_RUNPATH} {
		entries, err := f.DynString(tag)
		if err != nil {
			continue
		}
		for _, v := range entries {
			for _, d := range strings.Split(v, ":") {
				if d != "" {
					rpaths = append(rpaths, d)
				}
			}
		}
	}
	return rpaths
}

// normalizeRpaths expands $ORIGIN and anchors relative entries at the
// directory of the file declaring them.
func normalizeRpaths(rpaths []string, origin string) []string {
	var out []string
	for _, rp := range rpaths {
		if strings.Contains(rp, "$ORIGIN") || strings.Contains(rp, "${ORIGIN}") {
			rp = strings.ReplaceAll(rp, "${ORIGIN}", origin)
			rp = strings.ReplaceAll(rp, "$ORIGIN", origin)
		} else if !filepath.IsAbs(rp) {
			rp = filepath.Join(origin, rp)
		}
		out = append(out, rp)
	}
	return out
}

// resolveName finds the path the loader would use for one needed name.
// Search order: literal paths, RPATH/RUNPATH, LD_LIBRARY_PATH, ld.so.conf
// directories, the ld.so.cache map, conventional defaults, and finally
// the loader-derived directories when augmentation applies.
func (ins *Inspector) resolveName(name string, rpaths, extra []string) (string, bool) {
	if strings.Contains(name, "/") {
		if fileExists(name) {
			return name, true
		}
		return "", false
	}

	for _, group := range [][]string{rpaths, ins.Paths.Env, ins.Paths.Conf} {
		for _, dir := range group {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate, true
			}
		}
	}

	if p, ok := ins.Paths.Cache[name]; ok && fileExists(p) {
		return p, true
	}

	for _, group := range [][]string{ins.Paths.Default, extra} {
		for _, dir := range group {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
