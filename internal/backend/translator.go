package backend

import (
	"fmt"
	"strings"

	"github.com/gogpu/mslc/bytecode"
	"github.com/gogpu/mslc/ir"
	"github.com/gogpu/mslc/metadata"
)

type blockKind uint8

const (
	blockFunction blockKind = iota
	blockIf
	blockElse
	blockLoopCond // between LOOP and LOOP_COND
	blockWhile
	blockForInit
	blockForCond
	blockForStep
	blockForBody
)

type block struct {
	kind    blockKind
	capture []string
	init    string
	cond    string
}

// Translator turns the functions of a bytecode stream into source text.
type Translator struct {
	d     Dialect
	md    *metadata.Metadata
	out   *Writer
	names *Namer

	funcs  []Function
	fn     *Function
	locals map[int]Value
	scope  *Namer
	stack  []Value
	blocks []block

	offset int
}

// NewTranslator returns a translator writing to out. Global names must
// already be reserved in names.
func NewTranslator(d Dialect, md *metadata.Metadata, out *Writer, names *Namer) *Translator {
	return &Translator{
		d:     d,
		md:    md,
		out:   out,
		names: names,
	}
}

// Functions returns the functions translated so far in definition order.
func (t *Translator) Functions() []Function {
	return t.funcs
}

// Translate reads r up to END and writes every function. The stream must
// define exactly one entry function.
func (t *Translator) Translate(r *bytecode.Reader) error {
	for !r.Done() {
		in, err := r.Next()
		if err != nil {
			return err
		}
		t.offset = in.Offset
		if err := t.instruction(in); err != nil {
			return err
		}
	}
	if t.fn != nil {
		return t.fail("END inside function %s", t.fn.Name)
	}
	entries := 0
	for _, fn := range t.funcs {
		if fn.Entry {
			entries++
		}
	}
	if entries != 1 {
		return t.fail("program has %d entry functions, want exactly 1", entries)
	}
	return nil
}

func (t *Translator) instruction(in bytecode.Instruction) error {
	switch op := in.Op; {
	case op == bytecode.OpEnd:
		return nil
	case op == bytecode.OpFunction:
		return t.function(in)
	case op == bytecode.OpFunctionEnd:
		return t.functionEnd()
	}

	if t.fn == nil {
		return t.fail("%s outside of a function", in.Op)
	}
	if in.Op >= bytecode.OpPushInt {
		return t.expression(in)
	}
	return t.statement(in)
}

func (t *Translator) function(in bytecode.Instruction) error {
	if t.fn != nil {
		return t.fail("nested FUNCTION in %s", t.fn.Name)
	}
	if in.A != len(t.funcs) {
		return t.fail("function id %d out of order, expected %d", in.A, len(t.funcs))
	}

	fn := Function{
		ID:     in.A,
		Entry:  uint8(in.B)&bytecode.FlagEntry != 0,
		Return: in.Type,
		Params: in.Params,
	}
	if fn.Entry {
		fn.Name = t.d.EntryName()
	} else {
		fn.Name = t.names.Call(fmt.Sprintf("func_%d", fn.ID))
	}
	t.funcs = append(t.funcs, fn)
	t.fn = &t.funcs[len(t.funcs)-1]
	t.scope = t.names.Clone()
	t.locals = make(map[int]Value)

	ret, err := t.d.TypeName(fn.Return)
	if err != nil {
		return err
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		v, err := t.declare(i, p)
		if err != nil {
			return err
		}
		params[i] = v
	}
	t.out.Line("%s %s(%s) {", ret, fn.Name, strings.Join(params, ", "))
	t.out.Push()
	t.blocks = append(t.blocks[:0], block{kind: blockFunction})
	return nil
}

func (t *Translator) functionEnd() error {
	if t.fn == nil || len(t.blocks) != 1 || t.blocks[0].kind != blockFunction {
		return t.fail("unbalanced FUNCTION_END")
	}
	if len(t.stack) != 0 {
		return t.fail("%d values left on the stack at the end of %s", len(t.stack), t.fn.Name)
	}
	t.out.Pop()
	t.out.Line("}")
	t.out.Line("")
	t.blocks = t.blocks[:0]
	t.fn = nil
	return nil
}

// declare names a local slot and returns "type name".
func (t *Translator) declare(slot int, typ ir.Type) (string, error) {
	if _, dup := t.locals[slot]; dup {
		return "", t.fail("local slot %d declared twice", slot)
	}
	if !typ.IsValue() {
		return "", t.fail("local slot %d has type %s", slot, typ)
	}
	name, err := t.d.TypeName(typ)
	if err != nil {
		return "", err
	}
	v := Value{Text: t.scope.Call(fmt.Sprintf("local_%d", slot)), Type: typ}
	t.locals[slot] = v
	return name + " " + v.Text, nil
}

func (t *Translator) statement(in bytecode.Instruction) error {
	switch in.Op {
	case bytecode.OpLocal:
		decl, err := t.declare(in.A, in.Type)
		if err != nil {
			return err
		}
		if in.B == 0 {
			return t.emit(decl)
		}
		init, err := t.pop()
		if err != nil {
			return err
		}
		return t.emit(decl + " = " + init.Text)

	case bytecode.OpStore:
		value, err := t.pop()
		if err != nil {
			return err
		}
		target, err := t.pop()
		if err != nil {
			return err
		}
		return t.emit(target.Text + " = " + value.Text)

	case bytecode.OpPop:
		v, err := t.pop()
		if err != nil {
			return err
		}
		return t.emit(v.Text)

	case bytecode.OpIf:
		cond, err := t.popBool()
		if err != nil {
			return err
		}
		t.open(blockIf, "if (%s) {", cond.Text)

	case bytecode.OpElse:
		b := t.top()
		if b == nil || b.kind != blockIf {
			return t.fail("ELSE without IF")
		}
		b.kind = blockElse
		t.out.Pop()
		t.out.Line("} else {")
		t.out.Push()

	case bytecode.OpEndIf:
		return t.close(blockIf, blockElse)

	case bytecode.OpLoop:
		t.blocks = append(t.blocks, block{kind: blockLoopCond})

	case bytecode.OpLoopCond:
		b := t.top()
		if b == nil || b.kind != blockLoopCond {
			return t.fail("LOOP_COND without LOOP")
		}
		cond, err := t.popBool()
		if err != nil {
			return err
		}
		b.kind = blockWhile
		t.out.Line("while (%s) {", cond.Text)
		t.out.Push()

	case bytecode.OpEndLoop:
		return t.close(blockWhile)

	case bytecode.OpFor:
		t.blocks = append(t.blocks, block{kind: blockForInit})

	case bytecode.OpForCond:
		b := t.top()
		if b == nil || b.kind != blockForInit || len(b.capture) > 1 {
			return t.fail("malformed for-loop initializer")
		}
		if len(b.capture) == 1 {
			b.init = b.capture[0]
		}
		b.capture = nil
		b.kind = blockForCond

	case bytecode.OpForStep:
		b := t.top()
		if b == nil || b.kind != blockForCond {
			return t.fail("FOR_STEP without FOR_COND")
		}
		if in.A != 0 {
			cond, err := t.popBool()
			if err != nil {
				return err
			}
			b.cond = cond.Text
		}
		b.kind = blockForStep

	case bytecode.OpForBody:
		b := t.top()
		if b == nil || b.kind != blockForStep || len(b.capture) > 1 {
			return t.fail("malformed for-loop step")
		}
		step := ""
		if len(b.capture) == 1 {
			step = b.capture[0]
		}
		b.kind = blockForBody
		b.capture = nil
		t.out.Line("for (%s; %s; %s) {", b.init, b.cond, step)
		t.out.Push()

	case bytecode.OpEndFor:
		return t.close(blockForBody)

	case bytecode.OpBreak, bytecode.OpContinue:
		if !t.inLoop() {
			return t.fail("%s outside of a loop", in.Op)
		}
		return t.emit(strings.ToLower(in.Op.String()))

	case bytecode.OpDiscard:
		return t.emit("discard")

	case bytecode.OpReturn:
		if in.A == 0 {
			return t.emit("return")
		}
		v, err := t.pop()
		if err != nil {
			return err
		}
		return t.emit("return " + v.Text)

	default:
		return ir.Errorf(ir.PhaseBackend, ir.ErrUnsupportedOpcode, "%s cannot be translated at offset %d", in.Op, in.Offset)
	}
	return nil
}

func (t *Translator) expression(in bytecode.Instruction) error {
	op := in.Op
	switch {
	case op == bytecode.OpPushInt:
		t.push(FormatInt(in.Int), ir.TypeInt1)

	case op == bytecode.OpPushFloat:
		s, err := FormatFloat(in.Float)
		if err != nil {
			return err
		}
		t.push(s, ir.TypeFloat1)

	case op == bytecode.OpPushBool:
		t.push(fmt.Sprint(in.A != 0), ir.TypeBool)

	case op == bytecode.OpLoadInput, op == bytecode.OpLoadOutput, op == bytecode.OpLoadUniform:
		cat := map[bytecode.Opcode]ir.Category{
			bytecode.OpLoadInput:   ir.CategoryInput,
			bytecode.OpLoadOutput:  ir.CategoryOutput,
			bytecode.OpLoadUniform: ir.CategoryUniform,
		}[op]
		v, ok := t.md.Lookup(cat, uint16(in.A))
		if !ok {
			return t.fail("%s index %d is not in the metadata", cat, in.A)
		}
		t.push(t.d.Variable(cat, v), v.Type)

	case op == bytecode.OpLoadLocal:
		v, ok := t.locals[in.A]
		if !ok {
			return t.fail("local slot %d is not declared", in.A)
		}
		t.stack = append(t.stack, v)

	case op == bytecode.OpSwizzle:
		base, err := t.pop()
		if err != nil {
			return err
		}
		if !base.Type.IsVector() {
			return t.fail("swizzle of %s", base.Type)
		}
		for _, c := range in.Swizzle {
			if int(c) >= base.Type.Size() {
				return t.fail("swizzle component %d out of range for %s", c, base.Type)
			}
		}
		t.push(base.Text+"."+Swizzle(in.Swizzle), ir.Vector(base.Type.Scalar(), len(in.Swizzle)))

	case op == bytecode.OpIndex:
		args, err := t.popN(2)
		if err != nil {
			return err
		}
		if args[0].Type.Row() != in.Type || args[1].Type != ir.TypeInt1 {
			return t.fail("cannot index %s with %s", args[0].Type, args[1].Type)
		}
		t.push(args[0].Text+"["+args[1].Text+"]", in.Type)

	case op == bytecode.OpConvert:
		v, err := t.pop()
		if err != nil {
			return err
		}
		s, err := t.d.Convert(v, in.Type)
		if err != nil {
			return err
		}
		t.push(s, in.Type)

	case op == bytecode.OpConstruct:
		args, err := t.popN(in.A)
		if err != nil {
			return err
		}
		s, err := t.d.Construct(in.Type, args)
		if err != nil {
			return err
		}
		t.push(s, in.Type)

	case op == bytecode.OpCall:
		if in.A >= len(t.funcs)-1 {
			return t.fail("call to function %d before its definition", in.A)
		}
		callee := t.funcs[in.A]
		if in.B != len(callee.Params) {
			return t.fail("%s takes %d arguments, got %d", callee.Name, len(callee.Params), in.B)
		}
		args, err := t.popN(in.B)
		if err != nil {
			return err
		}
		t.push(Call(callee.Name, args...), callee.Return)

	case op == bytecode.OpIntrinsic:
		intr := ir.Intrinsic(in.A)
		if in.B != intr.Info().Arity {
			return t.fail("%s takes %d arguments, got %d", intr, intr.Info().Arity, in.B)
		}
		args, err := t.popN(in.B)
		if err != nil {
			return err
		}
		s, err := t.d.Intrinsic(intr, args, in.Type)
		if err != nil {
			return err
		}
		t.push(s, in.Type)

	case op == bytecode.OpSample:
		tex, ok := t.md.Lookup(ir.CategoryTexture, uint16(in.A))
		if !ok {
			return t.fail("texture index %d is not in the metadata", in.A)
		}
		coord, err := t.pop()
		if err != nil {
			return err
		}
		s, err := t.d.Sample(tex, coord)
		if err != nil {
			return err
		}
		t.push(s, ir.TypeFloat4)

	case op.IsOperator():
		return t.operator(op.Op(), in.Type)

	default:
		return ir.Errorf(ir.PhaseBackend, ir.ErrUnsupportedOpcode, "%s cannot be translated at offset %d", op, in.Offset)
	}
	return nil
}

func (t *Translator) operator(op ir.Op, result ir.Type) error {
	if op.IsUnary() {
		v, err := t.pop()
		if err != nil {
			return err
		}
		t.push("("+op.Symbol()+v.Text+")", result)
		return nil
	}
	args, err := t.popN(2)
	if err != nil {
		return err
	}
	s, err := t.d.Binary(op, args[0], args[1], result)
	if err != nil {
		return err
	}
	t.push(s, result)
	return nil
}

// emit writes a statement, or captures it while inside a for-loop header.
func (t *Translator) emit(stmt string) error {
	b := t.top()
	switch {
	case b == nil:
		return t.fail("statement outside of a function")
	case b.kind == blockForInit || b.kind == blockForStep:
		b.capture = append(b.capture, stmt)
	case b.kind == blockForCond || b.kind == blockLoopCond:
		return t.fail("statement inside a loop condition")
	default:
		t.out.Line("%s;", stmt)
	}
	return nil
}

func (t *Translator) open(kind blockKind, format string, args ...any) {
	t.out.Line(format, args...)
	t.out.Push()
	t.blocks = append(t.blocks, block{kind: kind})
}

func (t *Translator) close(kinds ...blockKind) error {
	b := t.top()
	if b == nil || len(t.blocks) < 2 {
		return t.fail("unbalanced block end")
	}
	for _, k := range kinds {
		if b.kind == k {
			t.blocks = t.blocks[:len(t.blocks)-1]
			t.out.Pop()
			t.out.Line("}")
			return nil
		}
	}
	return t.fail("unbalanced block end")
}

func (t *Translator) top() *block {
	if len(t.blocks) == 0 {
		return nil
	}
	return &t.blocks[len(t.blocks)-1]
}

func (t *Translator) inLoop() bool {
	for _, b := range t.blocks {
		if b.kind == blockWhile || b.kind == blockForBody {
			return true
		}
	}
	return false
}

func (t *Translator) push(text string, typ ir.Type) {
	t.stack = append(t.stack, Value{Text: text, Type: typ})
}

func (t *Translator) pop() (Value, error) {
	if len(t.stack) == 0 {
		return Value{}, t.fail("expression stack underflow")
	}
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return v, nil
}

func (t *Translator) popBool() (Value, error) {
	v, err := t.pop()
	if err == nil && v.Type != ir.TypeBool {
		err = t.fail("condition has type %s", v.Type)
	}
	return v, err
}

// popN pops n values and returns them in push order.
func (t *Translator) popN(n int) ([]Value, error) {
	if n < 0 || n > len(t.stack) {
		return nil, t.fail("expression stack underflow")
	}
	args := make([]Value, n)
	copy(args, t.stack[len(t.stack)-n:])
	t.stack = t.stack[:len(t.stack)-n]
	return args, nil
}

func (t *Translator) fail(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return ir.Errorf(ir.PhaseBackend, ir.ErrInvalidData, "%s at offset %d", msg, t.offset)
}
