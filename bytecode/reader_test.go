package bytecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mslc/ir"
)

func header(body ...byte) []byte {
	return append([]byte{'M', 'S', 'B', 'C', 1, 0}, body...)
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want ir.ErrorKind
	}{
		{"empty", nil, ir.ErrTruncated},
		{"bad magic", []byte("MSBX\x01\x00\x00"), ir.ErrBadMagic},
		{"no version", []byte("MSBC\x01"), ir.ErrTruncated},
		{"no end", header(), ir.ErrTruncated},
		{"unknown opcode", header(0x3F), ir.ErrUnsupportedOpcode},
		{"past operators", header(byte(OpOperatorBase) + 15), ir.ErrUnsupportedOpcode},
		{"missing operand", header(byte(OpPushInt), 0, 0), ir.ErrTruncated},
		{"missing params", header(byte(OpFunction), 0, 0, 1, 0, 2, byte(ir.TypeFloat1)), ir.ErrTruncated},
		{"bad type", header(byte(OpConvert), 99, byte(OpEnd)), ir.ErrInvalidData},
		{"bad swizzle", header(byte(OpSwizzle), 5, 0, byte(OpEnd)), ir.ErrInvalidData},
		{"bad intrinsic", header(byte(OpIntrinsic), 200, 1, byte(ir.TypeFloat1), byte(OpEnd)), ir.ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.code)
			require.Error(t, err)
			assert.Equal(t, tt.want, ir.KindOf(err), "error: %v", err)
		})
	}
}

func TestReaderOperands(t *testing.T) {
	code := header(
		byte(OpFunction), 0, 7, FlagEntry, byte(ir.TypeFloat2), 2, byte(ir.TypeInt1), byte(ir.TypeFloat4),
		byte(OpPushInt), 0xFF, 0xFF, 0xFF, 0xFE,
		byte(OpPushFloat), 0x40, 0x20, 0, 0,
		byte(OpSwizzle), 3, PackSwizzle([]uint8{2, 1, 0}),
		byte(Operator(ir.OpMul)), byte(ir.TypeFloat3),
		byte(OpCall), 0, 4, 2,
		byte(OpIntrinsic), byte(ir.IntrinsicDot), 2, byte(ir.TypeFloat1),
		byte(OpEnd),
	)

	r, err := NewReader(code)
	require.NoError(t, err)
	major, minor := r.Version()
	assert.Equal(t, uint8(1), major)
	assert.Equal(t, uint8(0), minor)

	fn, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, HeaderSize, fn.Offset)
	assert.Equal(t, 7, fn.A)
	assert.Equal(t, int(FlagEntry), fn.B)
	assert.Equal(t, ir.TypeFloat2, fn.Type)
	assert.Equal(t, []ir.Type{ir.TypeInt1, ir.TypeFloat4}, fn.Params)

	in, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int32(-2), in.Int)

	in, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), in.Float)

	in, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 1, 0}, in.Swizzle)

	in, err = r.Next()
	require.NoError(t, err)
	assert.True(t, in.Op.IsOperator())
	assert.Equal(t, ir.OpMul, in.Op.Op())
	assert.Equal(t, ir.TypeFloat3, in.Type)

	in, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, 4, in.A)
	assert.Equal(t, 2, in.B)

	in, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, int(ir.IntrinsicDot), in.A)
	assert.Equal(t, ir.TypeFloat1, in.Type)

	assert.False(t, r.Done())
	in, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, OpEnd, in.Op)
	assert.True(t, r.Done())

	_, err = r.Next()
	assert.Error(t, err)
}

func TestOpcodeNames(t *testing.T) {
	assert.Equal(t, "FUNCTION", OpFunction.String())
	assert.Equal(t, "ADD", Operator(ir.OpAdd).String())
	assert.Equal(t, "NOT", Operator(ir.OpNot).String())
	assert.Equal(t, "UNKNOWN", Opcode(0x7F).String())
}

func TestDisassemble(t *testing.T) {
	bc, _ := emit(t, controlFlow, ir.KindPixel)

	text, err := Disassemble(bc)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Equal(t, "; MSBC 1.0", lines[0])
	assert.Equal(t, "0006  FUNCTION id=0 ret=float1 (float1)", lines[1])
	assert.Contains(t, text, "FUNCTION id=1 entry ret=void ()")
	assert.Contains(t, text, "  LOCAL slot=0 float1 init\n")
	assert.Contains(t, text, "LOAD_UNIFORM #0\n")
	assert.Contains(t, text, "SWIZZLE .yx\n")
	assert.Contains(t, text, "FOR_STEP cond\n")
	assert.Contains(t, text, "CALL fn=0 argc=1\n")
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "  END"))
}

func TestDisassembleIndentation(t *testing.T) {
	bc, _ := emit(t, solidPixel, ir.KindPixel)

	text, err := Disassemble(bc)
	require.NoError(t, err)
	assert.Equal(t, `; MSBC 1.0
0006  FUNCTION id=0 entry ret=void ()
000c    LOAD_OUTPUT #0
000f    PUSH_FLOAT 1
0014    PUSH_FLOAT 0
0019    PUSH_FLOAT 0
001e    PUSH_FLOAT 1
0023    CONSTRUCT float4 argc=4
0026    STORE
0027  FUNCTION_END
0028  END
`, text)
}
