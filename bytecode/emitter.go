package bytecode

import (
	"github.com/gogpu/mslc/internal/wire"
	"github.com/gogpu/mslc/ir"
	"github.com/gogpu/mslc/metadata"
	"github.com/gogpu/mslc/msl"
)

// Magic starts every bytecode stream.
var Magic = [4]byte{'M', 'S', 'B', 'C'}

// HeaderSize is the size of the magic and the two version bytes.
const HeaderSize = 6

// Emit writes the bytecode of unit into bc and its metadata into md and
// returns the number of bytes written to each. On error nothing is
// reported written and any partial bytecode is zeroed.
func Emit(unit *msl.ShaderUnit, bc, md []byte) (int, int, error) {
	if unit == nil || unit.Nodes == nil {
		return 0, 0, ir.Errorf(ir.PhaseEmit, ir.ErrInvalidArguments, "nil shader unit")
	}
	if len(bc) == 0 || len(md) == 0 {
		return 0, 0, ir.Errorf(ir.PhaseEmit, ir.ErrInvalidArguments, "output buffers have no capacity")
	}

	n, err := EmitBytecode(unit, bc)
	if err != nil {
		return 0, 0, err
	}
	m, err := metadata.EncodeInto(metadata.New(unit.Kind, unit.Interface), md)
	if err != nil {
		clear(bc[:n])
		return 0, 0, err
	}
	return n, m, nil
}

// EmitBytecode writes only the bytecode of unit into bc.
func EmitBytecode(unit *msl.ShaderUnit, bc []byte) (int, error) {
	e := &emitter{
		unit: unit,
		w:    wire.NewWriter(bc),
	}
	if err := e.program(); err != nil {
		clear(bc[:e.w.Len()])
		return 0, err
	}
	if e.w.Overflowed() {
		clear(bc[:e.w.Len()])
		return 0, ir.Errorf(ir.PhaseEmit, ir.ErrBufferOverflow, "bytecode does not fit in %d bytes", len(bc))
	}
	return e.w.Len(), nil
}

type emitter struct {
	unit *msl.ShaderUnit
	w    *wire.Writer

	fnIndex int
	fn      *msl.Function
}

func (e *emitter) program() error {
	e.w.Bytes(Magic[:])
	e.w.U8(e.unit.Major)
	e.w.U8(e.unit.Minor)

	for i := range e.unit.Functions {
		e.fnIndex = i
		e.fn = &e.unit.Functions[i]
		if err := e.function(); err != nil {
			return err
		}
	}
	e.op(OpEnd)
	return nil
}

func (e *emitter) function() error {
	fn := e.fn
	if len(fn.Params) > 255 {
		return e.fail(e.unit.Nodes.Get(fn.Body), ir.ErrInvalidData, "%s has more than 255 parameters", fn.Name)
	}
	var flags uint8
	if fn.Entry {
		flags |= FlagEntry
	}
	e.op(OpFunction)
	e.w.U16(uint16(e.fnIndex))
	e.w.U8(flags)
	e.w.U8(uint8(fn.Return))
	e.w.U8(uint8(len(fn.Params)))
	for _, p := range fn.Params {
		e.w.U8(uint8(p))
	}
	// Parameters are slots 0..n-1; the remaining slots are declared by
	// LOCAL instructions in the body.
	if err := e.stmt(fn.Body); err != nil {
		return err
	}
	e.op(OpFunctionEnd)
	return nil
}

func (e *emitter) stmt(id msl.NodeID) error {
	n := e.unit.Nodes.Get(id)
	switch n.Kind {
	case msl.NodeBlock:
		for _, child := range n.Children {
			if err := e.stmt(child); err != nil {
				return err
			}
		}

	case msl.NodeLocal:
		hasInit := uint8(0)
		if len(n.Children) > 0 {
			if err := e.expr(n.Children[0]); err != nil {
				return err
			}
			hasInit = 1
		}
		if err := e.checkSlot(n); err != nil {
			return err
		}
		e.op(OpLocal)
		e.w.U16(uint16(n.Ref))
		e.w.U8(uint8(n.Type))
		e.w.U8(hasInit)

	case msl.NodeAssign:
		if err := e.expr(n.Children[0]); err != nil {
			return err
		}
		if err := e.expr(n.Children[1]); err != nil {
			return err
		}
		e.op(OpStore)

	case msl.NodeExprStmt:
		if err := e.expr(n.Children[0]); err != nil {
			return err
		}
		e.op(OpPop)

	case msl.NodeIf:
		if err := e.expr(n.Children[0]); err != nil {
			return err
		}
		e.op(OpIf)
		if err := e.stmt(n.Children[1]); err != nil {
			return err
		}
		if n.Children[2] != msl.InvalidNode {
			e.op(OpElse)
			if err := e.stmt(n.Children[2]); err != nil {
				return err
			}
		}
		e.op(OpEndIf)

	case msl.NodeWhile:
		e.op(OpLoop)
		if err := e.expr(n.Children[0]); err != nil {
			return err
		}
		e.op(OpLoopCond)
		if err := e.stmt(n.Children[1]); err != nil {
			return err
		}
		e.op(OpEndLoop)

	case msl.NodeFor:
		return e.forStmt(n)

	case msl.NodeReturn:
		hasValue := uint8(0)
		if len(n.Children) > 0 {
			if err := e.expr(n.Children[0]); err != nil {
				return err
			}
			hasValue = 1
		}
		e.op(OpReturn)
		e.w.U8(hasValue)

	case msl.NodeDiscard:
		e.op(OpDiscard)
	case msl.NodeBreak:
		e.op(OpBreak)
	case msl.NodeContinue:
		e.op(OpContinue)

	default:
		return e.fail(n, ir.ErrInvalidData, "%s node in statement position", n.Kind)
	}
	return nil
}

// forStmt emits FOR init FOR_COND [cond] FOR_STEP step FOR_BODY body END_FOR.
func (e *emitter) forStmt(n *msl.Node) error {
	init, cond, step, body := n.Children[0], n.Children[1], n.Children[2], n.Children[3]

	e.op(OpFor)
	if init != msl.InvalidNode {
		if err := e.stmt(init); err != nil {
			return err
		}
	}
	e.op(OpForCond)
	hasCond := uint8(0)
	if cond != msl.InvalidNode {
		if err := e.expr(cond); err != nil {
			return err
		}
		hasCond = 1
	}
	e.op(OpForStep)
	e.w.U8(hasCond)
	if step != msl.InvalidNode {
		if err := e.stmt(step); err != nil {
			return err
		}
	}
	e.op(OpForBody)
	if err := e.stmt(body); err != nil {
		return err
	}
	e.op(OpEndFor)
	return nil
}

func (e *emitter) expr(id msl.NodeID) error {
	n := e.unit.Nodes.Get(id)
	switch n.Kind {
	case msl.NodeIntLit:
		e.op(OpPushInt)
		e.w.I32(n.Int)

	case msl.NodeFloatLit:
		e.op(OpPushFloat)
		e.w.F32(n.Float)

	case msl.NodeBoolLit:
		e.op(OpPushBool)
		e.w.U8(uint8(n.Int))

	case msl.NodeInput:
		return e.load(n, OpLoadInput, ir.CategoryInput)
	case msl.NodeOutput:
		return e.load(n, OpLoadOutput, ir.CategoryOutput)
	case msl.NodeUniform:
		return e.load(n, OpLoadUniform, ir.CategoryUniform)

	case msl.NodeLocalRef:
		if err := e.checkSlot(n); err != nil {
			return err
		}
		e.op(OpLoadLocal)
		e.w.U16(uint16(n.Ref))

	case msl.NodeSwizzle:
		if err := e.expr(n.Children[0]); err != nil {
			return err
		}
		e.op(OpSwizzle)
		e.w.U8(uint8(len(n.Swizzle)))
		e.w.U8(PackSwizzle(n.Swizzle))

	case msl.NodeIndex:
		if err := e.exprs(n.Children); err != nil {
			return err
		}
		e.op(OpIndex)
		e.w.U8(uint8(n.Type))

	case msl.NodeConvert:
		if err := e.expr(n.Children[0]); err != nil {
			return err
		}
		e.op(OpConvert)
		e.w.U8(uint8(n.Type))

	case msl.NodeConstruct:
		if err := e.exprs(n.Children); err != nil {
			return err
		}
		e.op(OpConstruct)
		e.w.U8(uint8(n.Type))
		e.w.U8(uint8(len(n.Children)))

	case msl.NodeCall:
		if n.Ref < 0 || n.Ref >= e.fnIndex {
			return e.fail(n, ir.ErrUnresolvedReference, "call to undefined function %d", n.Ref)
		}
		if err := e.exprs(n.Children); err != nil {
			return err
		}
		e.op(OpCall)
		e.w.U16(uint16(n.Ref))
		e.w.U8(uint8(len(n.Children)))

	case msl.NodeIntrinsic:
		if !ir.Intrinsic(n.Ref).IsValid() {
			return e.fail(n, ir.ErrUnresolvedReference, "unknown intrinsic %d", n.Ref)
		}
		if err := e.exprs(n.Children); err != nil {
			return err
		}
		e.op(OpIntrinsic)
		e.w.U8(uint8(n.Ref))
		e.w.U8(uint8(len(n.Children)))
		e.w.U8(uint8(n.Type))

	case msl.NodeSample:
		if _, ok := e.unit.Interface.Lookup(ir.CategoryTexture, uint16(n.Ref)); !ok {
			return e.fail(n, ir.ErrUnresolvedReference, "texture index %d is not declared", n.Ref)
		}
		if err := e.expr(n.Children[0]); err != nil {
			return err
		}
		e.op(OpSample)
		e.w.U16(uint16(n.Ref))

	case msl.NodeUnary, msl.NodeBinary:
		if err := e.exprs(n.Children); err != nil {
			return err
		}
		e.op(Operator(n.Op))
		e.w.U8(uint8(n.Type))

	default:
		return e.fail(n, ir.ErrInvalidData, "%s node in expression position", n.Kind)
	}
	return nil
}

func (e *emitter) exprs(ids []msl.NodeID) error {
	for _, id := range ids {
		if err := e.expr(id); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) load(n *msl.Node, op Opcode, cat ir.Category) error {
	if n.Ref < 0 || n.Ref > 0xFFFF {
		return e.fail(n, ir.ErrUnresolvedReference, "%s index %d out of range", cat, n.Ref)
	}
	if _, ok := e.unit.Interface.Lookup(cat, uint16(n.Ref)); !ok {
		return e.fail(n, ir.ErrUnresolvedReference, "%s index %d is not declared", cat, n.Ref)
	}
	e.op(op)
	e.w.U16(uint16(n.Ref))
	return nil
}

func (e *emitter) checkSlot(n *msl.Node) error {
	if n.Ref < 0 || n.Ref >= len(e.fn.Locals) {
		return e.fail(n, ir.ErrUnresolvedReference, "local slot %d is not declared in %s", n.Ref, e.fn.Name)
	}
	return nil
}

func (e *emitter) op(op Opcode) {
	e.w.U8(uint8(op))
}

func (e *emitter) fail(n *msl.Node, kind ir.ErrorKind, format string, args ...any) error {
	return ir.Errorf(ir.PhaseEmit, kind, format, args...).At(n.Pos.Line, n.Pos.Column, "")
}

// PackSwizzle packs up to four 2-bit component indices, first component
// in the low bits.
func PackSwizzle(comps []uint8) uint8 {
	var packed uint8
	for i, c := range comps {
		packed |= (c & 3) << (2 * i)
	}
	return packed
}

// UnpackSwizzle is the inverse of PackSwizzle.
func UnpackSwizzle(count int, packed uint8) []uint8 {
	comps := make([]uint8, count)
	for i := range comps {
		comps[i] = (packed >> (2 * i)) & 3
	}
	return comps
}
