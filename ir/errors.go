package ir

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Diagnostic bounds. Messages and source fragments are truncated, never
// allowed to grow with the input.
const (
	MaxMessageLength  = 256
	MaxFragmentLength = 32
)

// Phase identifies the pipeline stage that produced an error.
type Phase uint8

const (
	PhaseLex Phase = iota
	PhaseParse
	PhaseEmit
	PhaseCodec
	PhaseBackend
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLex:
		return "lex"
	case PhaseParse:
		return "parse"
	case PhaseEmit:
		return "emit"
	case PhaseCodec:
		return "codec"
	case PhaseBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// ErrorKind categorizes toolchain errors.
type ErrorKind uint8

const (
	// ErrNone is returned by KindOf for nil or foreign errors.
	ErrNone ErrorKind = iota

	// ErrInvalidArguments indicates a nil or zero-capacity argument.
	ErrInvalidArguments

	// Lexer errors.
	ErrUnknownToken
	ErrAttributeTooBig
	ErrTokenOverflow

	// Parser errors.
	ErrUnexpectedToken
	ErrUnexpectedEOF
	ErrRedeclaration
	ErrUndeclaredIdentifier
	ErrTypeMismatch
	ErrNodeOverflow

	// Emitter errors.
	ErrUnresolvedReference
	ErrBufferOverflow

	// Codec errors.
	ErrBadMagic
	ErrUnsupportedVersion
	ErrTruncated
	ErrInvalidData

	// Backend errors.
	ErrUnsupportedOpcode
	ErrUnsupportedType
	ErrVersionMismatch
)

var kindNames = map[ErrorKind]string{
	ErrNone:                 "none",
	ErrInvalidArguments:     "invalid-arguments",
	ErrUnknownToken:         "unknown-token",
	ErrAttributeTooBig:      "attribute-too-big",
	ErrTokenOverflow:        "tokens-overflow",
	ErrUnexpectedToken:      "unexpected-token",
	ErrUnexpectedEOF:        "unexpected-eof",
	ErrRedeclaration:        "redeclaration",
	ErrUndeclaredIdentifier: "undeclared-identifier",
	ErrTypeMismatch:         "type-mismatch",
	ErrNodeOverflow:         "node-buffer-overflow",
	ErrUnresolvedReference:  "unresolved-reference",
	ErrBufferOverflow:       "buffer-overflow",
	ErrBadMagic:             "bad-magic",
	ErrUnsupportedVersion:   "unsupported-version",
	ErrTruncated:            "truncated-buffer",
	ErrInvalidData:          "invalid-data",
	ErrUnsupportedOpcode:    "unsupported-opcode",
	ErrUnsupportedType:      "unsupported-type",
	ErrVersionMismatch:      "version-mismatch",
}

// String returns the hyphenated kind name.
func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is the error value returned by every stage of the pipeline.
type Error struct {
	Phase   Phase
	Kind    ErrorKind
	Message string

	// Line and Column locate the offending source, 1-based. Zero when the
	// error has no source position (codec and backend errors).
	Line   int
	Column int

	// Fragment is the offending source text, at most MaxFragmentLength bytes.
	Fragment string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Phase.String())
	sb.WriteByte(' ')
	sb.WriteString(e.Kind.String())
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at %d:%d", e.Line, e.Column)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Fragment != "" {
		fmt.Fprintf(&sb, " near %q", e.Fragment)
	}
	return truncate(sb.String(), MaxMessageLength)
}

// Is matches another *Error with the same kind, so errors.Is can test a
// kind with a sentinel such as &Error{Kind: ErrTypeMismatch}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf creates an error without source position.
func Errorf(phase Phase, kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Phase:   phase,
		Kind:    kind,
		Message: truncate(fmt.Sprintf(format, args...), MaxMessageLength),
	}
}

// At returns a copy of e positioned at line:column with the given fragment.
func (e *Error) At(line, column int, fragment string) *Error {
	c := *e
	c.Line = line
	c.Column = column
	c.Fragment = Fragment(fragment)
	return &c
}

// KindOf returns the kind of err, or ErrNone if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrNone
}

// Fragment bounds s to MaxFragmentLength bytes, cutting at the first line
// break so a fragment never spans lines.
func Fragment(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return truncate(s, MaxFragmentLength)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
