package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hostdeps/internal/diag"
)

func testReporter() (*diag.Reporter, *bytes.Buffer) {
	var buf bytes.Buffer
	return diag.NewReporter(&buf), &buf
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}
}

func TestResolvePlainFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "libc.so.6")
	touch(t, file)

	rep, _ := testReporter()
	canonical, aliases, isFuzzy, err := Resolve(file, NewFuzzySet(nil), rep)
	if err != nil {
		t.Fatal(err)
	}
	if canonical != file {
		t.Errorf("canonical = %q, want %q", canonical, file)
	}
	if len(aliases) != 0 {
		t.Errorf("aliases = %v, want none", aliases)
	}
	if isFuzzy {
		t.Error("isFuzzy = true for a plain file")
	}
}

func TestResolveSymlinkChain(t *testing.T) {
	dir := t.TempDir()
	c := filepath.Join(dir, "c")
	b := filepath.Join(dir, "b")
	a := filepath.Join(dir, "a")
	touch(t, c)
	symlink(t, c, b)
	symlink(t, b, a)

	rep, _ := testReporter()
	canonical, aliases, isFuzzy, err := Resolve(a, NewFuzzySet(nil), rep)
	if err != nil {
		t.Fatal(err)
	}
	if canonical != c {
		t.Errorf("canonical = %q, want %q", canonical, c)
	}
	if diff := cmp.Diff([]string{a, b}, aliases); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}
	if isFuzzy {
		t.Error("isFuzzy = true without a fuzzy boundary")
	}
}

func TestResolveRelativeTarget(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	real := filepath.Join(sub, "libz.so.1.3")
	touch(t, real)
	link := filepath.Join(dir, "libz.so.1")
	symlink(t, "sub/libz.so.1.3", link)

	rep, _ := testReporter()
	canonical, aliases, _, err := Resolve(link, NewFuzzySet(nil), rep)
	if err != nil {
		t.Fatal(err)
	}
	if canonical != real {
		t.Errorf("canonical = %q, want %q", canonical, real)
	}
	if diff := cmp.Diff([]string{link}, aliases); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}
}

// The fuzzy check happens before a link is followed: the fuzzy path is
// itself the canonical result and the unresolved tail never shows up in
// the alias set.
func TestResolveFuzzyStop(t *testing.T) {
	dir := t.TempDir()
	b := filepath.Join(dir, "b")
	a := filepath.Join(dir, "a")
	touch(t, b)
	symlink(t, b, a)

	fuzzy := NewFuzzySet([]string{a})
	rep, _ := testReporter()
	canonical, aliases, isFuzzy, err := Resolve(a, fuzzy, rep)
	if err != nil {
		t.Fatal(err)
	}
	if canonical != a {
		t.Errorf("canonical = %q, want the fuzzy path %q itself", canonical, a)
	}
	if len(aliases) != 0 {
		t.Errorf("aliases = %v, want none", aliases)
	}
	if !isFuzzy {
		t.Error("isFuzzy = false at a fuzzy boundary")
	}
	if unused := fuzzy.Unused(); len(unused) != 0 {
		t.Errorf("fuzzy path not marked used: %v", unused)
	}
}

// A fuzzy boundary mid-chain: aliases cover the links before the
// boundary, canonical is the boundary itself.
func TestResolveFuzzyMidChain(t *testing.T) {
	dir := t.TempDir()
	c := filepath.Join(dir, "c")
	b := filepath.Join(dir, "b")
	a := filepath.Join(dir, "a")
	touch(t, c)
	symlink(t, c, b)
	symlink(t, b, a)

	fuzzy := NewFuzzySet([]string{b})
	rep, _ := testReporter()
	canonical, aliases, isFuzzy, err := Resolve(a, fuzzy, rep)
	if err != nil {
		t.Fatal(err)
	}
	if canonical != b {
		t.Errorf("canonical = %q, want %q", canonical, b)
	}
	if diff := cmp.Diff([]string{a}, aliases); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}
	if !isFuzzy {
		t.Error("isFuzzy = false at a fuzzy boundary")
	}
}

func TestResolveMissingPath(t *testing.T) {
	rep, _ := testReporter()
	if _, _, _, err := Resolve(filepath.Join(t.TempDir(), "nope"), NewFuzzySet(nil), rep); err == nil {
		t.Fatal("expected error for a missing path")
	}
}

func TestFuzzySetUnused(t *testing.T) {
	fuzzy := NewFuzzySet([]string{"/lib/a", "/lib/b"})
	fuzzy.Match("/lib/b")
	if diff := cmp.Diff([]string{"/lib/a"}, fuzzy.Unused()); diff != "" {
		t.Errorf("Unused mismatch (-want +got):\n%s", diff)
	}
	if fuzzy.Match("/lib/unrelated") {
		t.Error("Match reported true for a non-member")
	}
}

func TestResolveWarnsOnDirSymlink(t *testing.T) {
	// A symlink in a parent directory makes the manual walk disagree
	// with full system resolution; that is a warning, not an error.
	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	if err := os.Mkdir(realDir, 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(realDir, "lib.so"))
	symlink(t, realDir, filepath.Join(dir, "aka"))

	rep, buf := testReporter()
	canonical, _, _, err := Resolve(filepath.Join(dir, "aka", "lib.so"), NewFuzzySet(nil), rep)
	if err != nil {
		t.Fatal(err)
	}
	// The manual walk never followed anything (lib.so itself is not a
	// symlink), so the path keeps its aka/ spelling.
	if canonical != filepath.Join(dir, "aka", "lib.so") {
		t.Errorf("canonical = %q", canonical)
	}
	if !strings.Contains(buf.String(), "warn") {
		t.Errorf("expected a mismatch warning, got: %q", buf.String())
	}
}
