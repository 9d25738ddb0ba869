// Package backend walks MSL bytecode on behalf of the source backends.
//
// The Translator keeps the expression stack and the structured control
// flow; a Dialect spells types, variables and expressions for one target
// language. Both write through an indenting Writer.
package backend

import (
	"fmt"
	"strings"
)

// Writer accumulates indented source lines.
type Writer struct {
	out    strings.Builder
	indent int
}

// Line writes one line at the current indentation. Without args format is
// written verbatim.
func (w *Writer) Line(format string, args ...any) {
	if format != "" {
		w.writeIndent()
	}
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// Push increases the indentation.
func (w *Writer) Push() {
	w.indent++
}

// Pop decreases the indentation.
func (w *Writer) Pop() {
	if w.indent > 0 {
		w.indent--
	}
}

// String returns everything written so far.
func (w *Writer) String() string {
	return w.out.String()
}
