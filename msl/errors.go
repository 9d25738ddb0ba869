package msl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/mslc/ir"
)

// FormatWithContext renders err with the offending source line and a caret
// under the error column. Errors without a position are returned as is.
func FormatWithContext(err error, source string) string {
	var e *ir.Error
	if !errors.As(err, &e) || e.Line == 0 || source == "" {
		return err.Error()
	}

	lines := strings.Split(source, "\n")
	if e.Line > len(lines) {
		return err.Error()
	}
	line := strings.TrimRight(lines[e.Line-1], "\r")
	col := e.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s %s: %s\n", e.Phase, e.Kind, e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", e.Line, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", e.Line, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}
