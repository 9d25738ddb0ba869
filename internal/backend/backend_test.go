package backend

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mslc/bytecode"
	"github.com/gogpu/mslc/ir"
	"github.com/gogpu/mslc/metadata"
)

// plain is a minimal C-like dialect.
type plain struct{}

func (plain) TypeName(t ir.Type) (string, error) { return t.String(), nil }
func (plain) EntryName() string                  { return "main" }

func (plain) Variable(cat ir.Category, v ir.Variable) string {
	return cat.String()[:2] + "_" + v.Name
}

func (plain) Convert(v Value, to ir.Type) (string, error) {
	return Call(to.String(), v), nil
}

func (plain) Construct(t ir.Type, args []Value) (string, error) {
	return Call(t.String(), args...), nil
}

func (plain) Binary(op ir.Op, a, b Value, _ ir.Type) (string, error) {
	return "(" + a.Text + " " + op.Symbol() + " " + b.Text + ")", nil
}

func (plain) Intrinsic(in ir.Intrinsic, args []Value, _ ir.Type) (string, error) {
	return Call(in.String(), args...), nil
}

func (plain) Sample(texture ir.Variable, coord Value) (string, error) {
	return "sample(" + texture.Name + ", " + coord.Text + ")", nil
}

func header(body ...byte) []byte {
	return append([]byte{'M', 'S', 'B', 'C', 1, 0}, body...)
}

func translate(t *testing.T, code []byte) (string, error) {
	t.Helper()
	md := metadata.New(ir.KindPixel, ir.Interface{
		Outputs: []ir.Variable{{Name: "color", Index: 0, Type: ir.TypeFloat4}},
	})
	r, err := bytecode.NewReader(code)
	require.NoError(t, err)
	var out Writer
	err = NewTranslator(plain{}, md, &out, NewNamer(func(s string) string { return s }, false)).Translate(r)
	return out.String(), err
}

var (
	entry    = []byte{byte(bytecode.OpFunction), 0, 0, bytecode.FlagEntry, byte(ir.TypeVoid), 0}
	fnEnd    = []byte{byte(bytecode.OpFunctionEnd), byte(bytecode.OpEnd)}
	pushTrue = []byte{byte(bytecode.OpPushBool), 1}
)

func body(parts ...[]byte) []byte {
	var code []byte
	for _, p := range parts {
		code = append(code, p...)
	}
	return header(code...)
}

func TestTranslate(t *testing.T) {
	code := body(entry,
		[]byte{byte(bytecode.OpPushFloat), 0x3f, 0x80, 0, 0},
		[]byte{byte(bytecode.OpLocal), 0, 0, byte(ir.TypeFloat1), 1},
		pushTrue,
		[]byte{byte(bytecode.OpIf)},
		[]byte{byte(bytecode.OpLoadOutput), 0, 0},
		[]byte{byte(bytecode.OpLoadLocal), 0, 0},
		[]byte{byte(bytecode.OpConstruct), byte(ir.TypeFloat4), 1},
		[]byte{byte(bytecode.OpStore)},
		[]byte{byte(bytecode.OpElse)},
		[]byte{byte(bytecode.OpDiscard)},
		[]byte{byte(bytecode.OpEndIf)},
		fnEnd,
	)

	got, err := translate(t, code)
	require.NoError(t, err)
	want := `void main() {
    float1 local_0 = 1.0;
    if (true) {
        ou_color = float4(local_0);
    } else {
        discard;
    }
}

`
	assert.Equal(t, want, got)
}

func TestTranslateForLoop(t *testing.T) {
	code := body(entry,
		[]byte{byte(bytecode.OpFor)},
		[]byte{byte(bytecode.OpPushInt), 0, 0, 0, 0},
		[]byte{byte(bytecode.OpLocal), 0, 0, byte(ir.TypeInt1), 1},
		[]byte{byte(bytecode.OpForCond)},
		[]byte{byte(bytecode.OpForStep), 0},
		[]byte{byte(bytecode.OpLoadLocal), 0, 0},
		[]byte{byte(bytecode.OpLoadLocal), 0, 0},
		[]byte{byte(bytecode.OpPushInt), 0, 0, 0, 1},
		[]byte{byte(bytecode.Operator(ir.OpAdd)), byte(ir.TypeInt1)},
		[]byte{byte(bytecode.OpStore)},
		[]byte{byte(bytecode.OpForBody)},
		[]byte{byte(bytecode.OpBreak)},
		[]byte{byte(bytecode.OpEndFor)},
		fnEnd,
	)

	got, err := translate(t, code)
	require.NoError(t, err)
	assert.Contains(t, got, "    for (int1 local_0 = 0; ; local_0 = (local_0 + 1)) {\n        break;\n    }\n")
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want ir.ErrorKind
	}{
		{"outside function", header(byte(bytecode.OpDiscard), byte(bytecode.OpEnd)), ir.ErrInvalidData},
		{"unterminated function", body(entry, []byte{byte(bytecode.OpEnd)}), ir.ErrInvalidData},
		{"stack underflow", body(entry, []byte{byte(bytecode.OpPop)}, fnEnd), ir.ErrInvalidData},
		{"leftover value", body(entry, pushTrue, fnEnd), ir.ErrInvalidData},
		{"else without if", body(entry, []byte{byte(bytecode.OpElse)}, fnEnd), ir.ErrInvalidData},
		{"break outside loop", body(entry, []byte{byte(bytecode.OpBreak)}, fnEnd), ir.ErrInvalidData},
		{"non-bool condition", body(entry, []byte{byte(bytecode.OpPushInt), 0, 0, 0, 1, byte(bytecode.OpIf)}, fnEnd), ir.ErrInvalidData},
		{"undeclared local", body(entry, []byte{byte(bytecode.OpLoadLocal), 0, 3, byte(bytecode.OpPop)}, fnEnd), ir.ErrInvalidData},
		{"unknown output", body(entry, []byte{byte(bytecode.OpLoadOutput), 0, 9, byte(bytecode.OpPop)}, fnEnd), ir.ErrInvalidData},
		{"call forward", body(entry, []byte{byte(bytecode.OpCall), 0, 0, 0, byte(bytecode.OpPop)}, fnEnd), ir.ErrInvalidData},
		{"out of order id", header(byte(bytecode.OpFunction), 0, 1, 0, byte(ir.TypeVoid), 0, byte(bytecode.OpFunctionEnd), byte(bytecode.OpEnd)), ir.ErrInvalidData},
		{"no entry function", header(byte(bytecode.OpFunction), 0, 0, 0, byte(ir.TypeVoid), 0, byte(bytecode.OpFunctionEnd), byte(bytecode.OpEnd)), ir.ErrInvalidData},
		{"empty program", header(byte(bytecode.OpEnd)), ir.ErrInvalidData},
		{"two entry functions", body(entry, []byte{byte(bytecode.OpFunctionEnd), byte(bytecode.OpFunction), 0, 1, bytecode.FlagEntry, byte(ir.TypeVoid), 0}, fnEnd), ir.ErrInvalidData},
		{"swizzle out of range", body(entry, []byte{byte(bytecode.OpPushFloat), 0, 0, 0, 0, byte(bytecode.OpSwizzle), 1, 1, byte(bytecode.OpPop)}, fnEnd), ir.ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := translate(t, tt.code)
			require.Error(t, err)
			assert.Equal(t, tt.want, ir.KindOf(err), "error: %v", err)
			assert.Contains(t, err.Error(), "offset")
		})
	}
}

func TestNamer(t *testing.T) {
	n := NewNamer(func(s string) string {
		if s == "float" {
			return "_float"
		}
		return s
	}, false)

	assert.Equal(t, "color", n.Call("color"))
	assert.Equal(t, "color_1", n.Call("color"))
	assert.Equal(t, "_float", n.Call("float"))
	assert.True(t, n.IsUsed("color_1"))

	n.Reserve("main")
	assert.Equal(t, "main_2", n.Call("main"))

	scope := n.Clone()
	assert.Equal(t, "local", scope.Call("local"))
	assert.False(t, n.IsUsed("local"), "clone must not leak into the parent")
}

func TestNamerFold(t *testing.T) {
	n := NewNamer(func(s string) string { return s }, true)
	assert.Equal(t, "Color", n.Call("Color"))
	assert.Equal(t, "color_1", n.Call("color"))
	assert.True(t, n.IsUsed("COLOR"))
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{0.5, "0.5"},
		{-2, "(-2.0)"},
		{1e20, "1e+20"},
		{float32(math.Copysign(0, -1)), "(-0.0)"},
	}
	for _, tt := range tests {
		got, err := FormatFloat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := FormatFloat(float32(math.Inf(1)))
	assert.Equal(t, ir.ErrInvalidData, ir.KindOf(err))
	_, err = FormatFloat(float32(math.NaN()))
	assert.Equal(t, ir.ErrInvalidData, ir.KindOf(err))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "7", FormatInt(7))
	assert.Equal(t, "(-3)", FormatInt(-3))
	assert.Equal(t, "f(a, b)", Call("f", Value{Text: "a"}, Value{Text: "b"}))
	assert.Equal(t, "g()", Call("g"))
	assert.Equal(t, "wzyx", Swizzle([]uint8{3, 2, 1, 0}))
}

func TestWriterIndent(t *testing.T) {
	var w Writer
	w.Line("a {")
	w.Push()
	w.Line("b = %d;", 1)
	w.Line("")
	w.Pop()
	w.Pop()
	w.Line("}")
	assert.Equal(t, "a {\n    b = 1;\n\n}\n", w.String())
	assert.Equal(t, 4, strings.Count(w.String(), "\n"))
}
