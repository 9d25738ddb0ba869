package backend

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/mslc/ir"
)

// Value is one entry of the expression stack: source text that is safe to
// use as an operand, and its MSL type.
type Value struct {
	Text string
	Type ir.Type
}

// Function is a function header decoded from FUNCTION.
type Function struct {
	ID     int
	Entry  bool
	Return ir.Type
	Params []ir.Type
	Name   string
}

// Dialect spells MSL constructs in one target language.
type Dialect interface {
	// TypeName returns the spelling of t, or ErrUnsupportedType.
	TypeName(t ir.Type) (string, error)

	// Variable returns the expression that reaches an interface variable.
	Variable(cat ir.Category, v ir.Variable) string

	// EntryName returns the name given to the entry function.
	EntryName() string

	Convert(v Value, to ir.Type) (string, error)
	Construct(t ir.Type, args []Value) (string, error)
	Binary(op ir.Op, a, b Value, result ir.Type) (string, error)
	Intrinsic(in ir.Intrinsic, args []Value, result ir.Type) (string, error)
	Sample(texture ir.Variable, coord Value) (string, error)
}

// FormatFloat spells a float literal that every C-family shading
// language accepts.
func FormatFloat(f float32) (string, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", ir.Errorf(ir.PhaseBackend, ir.ErrInvalidData, "float literal %v has no source spelling", f)
	}
	s := strconv.FormatFloat(v, 'g', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	if f < 0 || (f == 0 && math.Signbit(v)) {
		return "(" + s + ")", nil
	}
	return s, nil
}

// FormatInt spells an int literal, parenthesized when negative.
func FormatInt(i int32) string {
	s := strconv.FormatInt(int64(i), 10)
	if i < 0 {
		return "(" + s + ")"
	}
	return s
}

// Call formats name(args...).
func Call(name string, args ...Value) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Text)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Swizzle spells the component letters of a swizzle.
func Swizzle(comps []uint8) string {
	b := make([]byte, len(comps))
	for i, c := range comps {
		b[i] = "xyzw"[c&3]
	}
	return string(b)
}
