package elfinspect

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"strings"
)

// runLdconfig spawns `ldconfig -p` and returns its stdout stream. Split
// out as a variable so tests can substitute canned output.
//
// We sanitize the environment down to PATH so that LD_* variables in the
// caller's environment cannot perturb what ldconfig prints.
var runLdconfig = func() (io.ReadCloser, error) {
	cmd := exec.Command("ldconfig", "-p")
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "PATH=") {
			env = append(env, e)
		}
	}
	cmd.Env = env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	// The caller drains stdout to EOF; reap the child afterwards.
	return &waitCloser{ReadCloser: stdout, cmd: cmd}, nil
}

type waitCloser struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (w *waitCloser) Close() error {
	err := w.ReadCloser.Close()
	if werr := w.cmd.Wait(); werr != nil && err == nil {
		err = werr
	}
	return err
}

// parseLdconfig reads `ldconfig -p` output into a soname -> path map.
// Lines look like:
//
//	libc.so.6 (libc6,x86-64) => /lib/x86_64-linux-gnu/libc.so.6
//
// The first mapping for a soname wins, matching the loader's behavior of
// preferring earlier cache entries.
func parseLdconfig(r io.Reader) map[string]string {
	m := make(map[string]string)
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		left, right, ok := strings.Cut(line, "=>")
		if !ok {
			continue
		}
		path := strings.TrimSpace(right)
		fields := strings.Fields(strings.TrimSpace(left))
		if len(fields) == 0 || path == "" {
			continue
		}
		soname := fields[0]
		if _, exists := m[soname]; !exists {
			m[soname] = path
		}
	}
	return m
}

// loadLdconfigMap is the fallback soname map for systems where
// /etc/ld.so.cache is absent or in an unrecognized format.
func loadLdconfigMap() map[string]string {
	out, err := runLdconfig()
	if err != nil {
		return map[string]string{}
	}
	defer out.Close()
	return parseLdconfig(out)
}
