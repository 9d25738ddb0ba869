package bytecode

import (
	"bytes"
	"math"

	"github.com/gogpu/mslc/internal/wire"
	"github.com/gogpu/mslc/ir"
)

// Instruction is one decoded instruction. Which fields are meaningful
// depends on Op:
//
//	FUNCTION       A=id B=flags Type=return Params
//	LOCAL          A=slot Type B=hasInit
//	FOR_STEP       A=hasCond
//	RETURN         A=hasValue
//	PUSH_INT       Int
//	PUSH_FLOAT     Float
//	PUSH_BOOL      A
//	LOAD_*, SAMPLE A=index or slot
//	SWIZZLE        Swizzle
//	INDEX, CONVERT Type
//	CONSTRUCT      Type A=argc
//	CALL           A=function B=argc
//	INTRINSIC      A=intrinsic B=argc Type
//	operators      Type
type Instruction struct {
	Offset  int
	Op      Opcode
	Type    ir.Type
	A, B    int
	Int     int32
	Float   float32
	Params  []ir.Type
	Swizzle []uint8
}

// Reader decodes a bytecode stream one instruction at a time.
type Reader struct {
	r     *wire.Reader
	major uint8
	minor uint8
	done  bool
}

// NewReader checks the header of code and positions the reader at the
// first instruction.
func NewReader(code []byte) (*Reader, error) {
	r := wire.NewReader(code)
	magic := r.Bytes(len(Magic))
	if r.Short() {
		return nil, ir.Errorf(ir.PhaseCodec, ir.ErrTruncated, "bytecode shorter than its magic")
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, ir.Errorf(ir.PhaseCodec, ir.ErrBadMagic, "bad bytecode magic %q", magic)
	}
	major, minor := r.U8(), r.U8()
	if r.Short() {
		return nil, ir.Errorf(ir.PhaseCodec, ir.ErrTruncated, "bytecode header truncated")
	}
	return &Reader{r: r, major: major, minor: minor}, nil
}

// Version returns the format version recorded in the header.
func (r *Reader) Version() (major, minor uint8) {
	return r.major, r.minor
}

// Done reports whether END has been read.
func (r *Reader) Done() bool {
	return r.done
}

// Offset returns the offset of the next instruction.
func (r *Reader) Offset() int {
	return r.r.Pos()
}

// Next decodes the next instruction.
func (r *Reader) Next() (Instruction, error) {
	in := Instruction{Offset: r.r.Pos()}
	if r.done {
		return in, ir.Errorf(ir.PhaseCodec, ir.ErrInvalidData, "read past END at offset %d", in.Offset)
	}
	in.Op = Opcode(r.r.U8())
	if r.r.Short() {
		return in, ir.Errorf(ir.PhaseCodec, ir.ErrTruncated, "bytecode ends without END at offset %d", in.Offset)
	}
	info, ok := lookup(in.Op)
	if !ok {
		return in, ir.Errorf(ir.PhaseCodec, ir.ErrUnsupportedOpcode, "unknown opcode 0x%02x at offset %d", uint8(in.Op), in.Offset)
	}

	var vals [4]uint32
	for i, kind := range info.operands {
		switch kind {
		case u8:
			vals[i] = uint32(r.r.U8())
		case u16:
			vals[i] = uint32(r.r.U16())
		default:
			vals[i] = r.r.U32()
		}
	}
	if r.r.Short() {
		return in, r.truncated(in)
	}

	var err error
	switch op := in.Op; {
	case op == OpEnd:
		r.done = true
	case op == OpFunction:
		in.A, in.B = int(vals[0]), int(vals[1])
		if in.Type, err = r.typ(in, vals[2]); err != nil {
			return in, err
		}
		n := int(vals[3])
		raw := r.r.Bytes(n)
		if r.r.Short() {
			return in, r.truncated(in)
		}
		if n > 0 {
			in.Params = make([]ir.Type, n)
			for i, b := range raw {
				if in.Params[i], err = r.typ(in, uint32(b)); err != nil {
					return in, err
				}
			}
		}
	case op == OpLocal:
		in.A, in.B = int(vals[0]), int(vals[2])
		in.Type, err = r.typ(in, vals[1])
	case op == OpForStep, op == OpReturn, op == OpPushBool,
		op == OpLoadInput, op == OpLoadOutput, op == OpLoadUniform, op == OpLoadLocal, op == OpSample:
		in.A = int(vals[0])
	case op == OpPushInt:
		in.Int = int32(vals[0])
	case op == OpPushFloat:
		in.Float = math.Float32frombits(vals[0])
	case op == OpSwizzle:
		count := int(vals[0])
		if count < 1 || count > 4 {
			return in, ir.Errorf(ir.PhaseCodec, ir.ErrInvalidData, "swizzle of %d components at offset %d", count, in.Offset)
		}
		in.Swizzle = UnpackSwizzle(count, uint8(vals[1]))
	case op == OpIndex, op == OpConvert, op.IsOperator():
		in.Type, err = r.typ(in, vals[0])
	case op == OpConstruct:
		in.A = int(vals[1])
		in.Type, err = r.typ(in, vals[0])
	case op == OpCall:
		in.A, in.B = int(vals[0]), int(vals[1])
	case op == OpIntrinsic:
		in.A, in.B = int(vals[0]), int(vals[1])
		if !ir.Intrinsic(in.A).IsValid() {
			return in, ir.Errorf(ir.PhaseCodec, ir.ErrInvalidData, "unknown intrinsic %d at offset %d", in.A, in.Offset)
		}
		in.Type, err = r.typ(in, vals[2])
	}
	return in, err
}

func (r *Reader) typ(in Instruction, v uint32) (ir.Type, error) {
	t := ir.Type(v)
	if !t.IsValid() {
		return 0, ir.Errorf(ir.PhaseCodec, ir.ErrInvalidData, "%s at offset %d has invalid type %d", in.Op, in.Offset, v)
	}
	return t, nil
}

func (r *Reader) truncated(in Instruction) error {
	return ir.Errorf(ir.PhaseCodec, ir.ErrTruncated, "%s at offset %d is missing operands", in.Op, in.Offset)
}

// Decode reads every instruction of code up to and including END.
func Decode(code []byte) ([]Instruction, error) {
	r, err := NewReader(code)
	if err != nil {
		return nil, err
	}
	var out []Instruction
	for !r.Done() {
		in, err := r.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}
