package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestSeverityTags(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Infof(0, "processing file at `%s`", "/bin/ls")
	r.Warnf(0, "fuzzy dep path `%s` was not encountered", "/lib/libz.so")
	r.Critf(0, "unable to resolve a path for library %s", "libmissing.so")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	// lipgloss may or may not emit color codes depending on the
	// environment; the textual tag must survive either way.
	for i, tag := range []string{"info", "warn", "crit"} {
		if !strings.Contains(lines[i], tag+":") {
			t.Errorf("line %d missing %q tag: %q", i, tag, lines[i])
		}
	}
}

func TestIndentLevels(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Infof(1, "nested")
	if !strings.HasPrefix(buf.String(), strings.Repeat(" ", 6)) {
		t.Errorf("level 1 message not indented by 6 columns: %q", buf.String())
	}

	buf.Reset()
	r.Infof(0, "top")
	if strings.HasPrefix(buf.String(), " ") {
		t.Errorf("level 0 message should not be indented: %q", buf.String())
	}
}
