// Package diag is the diagnostics channel: informational, warning and
// critical messages with a nesting level for readability. Messages go to
// stderr by default; tests inject a buffer and match on the severity tag.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")) // Green

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("3")) // Yellow

	critStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("1")) // Red

	// PathStyle highlights a filesystem path inside a message.
	PathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")) // Blue
)

// Reporter writes severity-tagged, indented diagnostics.
type Reporter struct {
	Out io.Writer
}

// NewReporter returns a reporter writing to w (os.Stderr if nil).
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stderr
	}
	return &Reporter{Out: w}
}

// Each nesting level indents by six columns, wide enough to clear the
// severity tag of the parent message.
func indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(" ", 6*level)
}

func (r *Reporter) emit(level int, tag string, format string, a ...any) {
	fmt.Fprintf(r.Out, "%s%s: %s\n", indent(level), tag, fmt.Sprintf(format, a...))
}

// Infof reports progress.
func (r *Reporter) Infof(level int, format string, a ...any) {
	r.emit(level, infoStyle.Render("info"), format, a...)
}

// Warnf reports a recoverable oddity; processing continues.
func (r *Reporter) Warnf(level int, format string, a ...any) {
	r.emit(level, warnStyle.Render("warn"), format, a...)
}

// Critf reports a serious but non-fatal condition, such as a dependency
// edge being dropped.
func (r *Reporter) Critf(level int, format string, a ...any) {
	r.emit(level, critStyle.Render("crit"), format, a...)
}
