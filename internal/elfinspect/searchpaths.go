package elfinspect

import (
	"debug/elf"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hostdeps/internal/diag"
)

// DefaultProbeBinary is the executable whose PT_INTERP we read to learn
// which loader "regular" programs on this system use. /usr/bin/env is
// about as universally present and dynamically linked as it gets.
const DefaultProbeBinary = "/usr/bin/env"

var defaultDirs = []string{"/lib", "/lib64", "/usr/lib", "/usr/lib64"}

// SearchPaths is the process-wide library search-path table. It is built
// once at startup and passed by reference into the Inspector; nothing
// here is global state.
type SearchPaths struct {
	Env     []string          // LD_LIBRARY_PATH entries
	Conf    []string          // Directories from /etc/ld.so.conf (recursive)
	Cache   map[string]string // soname -> path, from ld.so.cache or ldconfig -p
	Default []string          // Conventional fallback directories

	// ProbeBinary overrides DefaultProbeBinary; used by tests.
	ProbeBinary string

	// Loader-derived directories, computed on first use. Shared objects
	// without a PT_INTERP segment need these: naive resolution would
	// otherwise never look in the loader's own directories, which is
	// where most shared objects live.
	interp     []string
	interpErr  error
	interpDone bool
}

// Load builds the search-path table from the running system.
func Load(rep *diag.Reporter) *SearchPaths {
	s := &SearchPaths{
		Conf:        ReadLdSoConf("/etc/ld.so.conf"),
		Default:     defaultDirs,
		ProbeBinary: DefaultProbeBinary,
	}
	if env := os.Getenv("LD_LIBRARY_PATH"); env != "" {
		for _, d := range strings.Split(env, ":") {
			if d != "" {
				s.Env = append(s.Env, d)
			}
		}
	}

	cache, err := readLdSoCache("")
	if err != nil {
		rep.Warnf(0, "unable to parse ld.so.cache (%v); falling back to `ldconfig -p`", err)
		cache = loadLdconfigMap()
	}
	s.Cache = cache
	return s
}

// InterpDerived returns the search directories conferred by the system's
// default dynamic loader, deriving them once and caching the result.
//
// The probe reads PT_INTERP from ProbeBinary, resolves the interpreter to
// its real path, and takes the interpreter's directory plus the matching
// /usr-prefixed directory. A probe that yields no usable directory is
// fatal: the augmentation heuristic itself has failed.
func (s *SearchPaths) InterpDerived() ([]string, error) {
	if s.interpDone {
		return s.interp, s.interpErr
	}
	s.interpDone = true
	s.interp, s.interpErr = deriveInterpDirs(s.ProbeBinary)
	return s.interp, s.interpErr
}

func deriveInterpDirs(probe string) ([]string, error) {
	f, err := elf.Open(probe)
	if err != nil {
		return nil, fmt.Errorf("loader probe: %w", err)
	}
	defer f.Close()

	interp := readInterp(f)
	if interp == "" {
		return nil, fmt.Errorf("loader probe: `%s` has no PT_INTERP segment (statically linked?)", probe)
	}

	real := interp
	if resolved, err := filepath.EvalSymlinks(interp); err == nil {
		real = resolved
	}

	dir := filepath.Dir(real)
	candidates := []string{dir}
	if !strings.HasPrefix(dir, "/usr/") {
		candidates = append(candidates, "/usr"+dir)
	}

	var dirs []string
	for _, d := range candidates {
		if st, err := os.Stat(d); err == nil && st.IsDir() {
			dirs = append(dirs, d)
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("loader probe: interpreter `%s` yielded no usable search directories (tried %v)", interp, candidates)
	}
	return dirs, nil
}
