package elfinspect

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ReadLdSoConf parses an ld.so.conf-style file into a list of library
// directories, following `include` directives (which may be globs)
// recursively.
func ReadLdSoConf(name string) []string {
	f, err := os.Open(name)
	if err != nil {
		// Missing config is normal on some systems.
		return nil
	}
	defer f.Close()

	var dirs []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		t := strings.TrimSpace(s.Text())
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}

		if rest, ok := strings.CutPrefix(t, "include"); ok && rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
			pattern := strings.TrimSpace(rest)
			if !filepath.IsAbs(pattern) {
				pattern = filepath.Join(filepath.Dir(name), pattern)
			}
			matches, err := filepath.Glob(pattern)
			if err != nil {
				continue
			}
			for _, m := range matches {
				dirs = append(dirs, ReadLdSoConf(m)...)
			}
		} else {
			dirs = append(dirs, t)
		}
	}
	return dirs
}
