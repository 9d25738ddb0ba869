package bytecode

import "github.com/gogpu/mslc/ir"

// Opcode is a bytecode instruction code.
type Opcode uint8

// Statement and structure opcodes.
const (
	OpEnd         Opcode = 0x00
	OpFunction    Opcode = 0x01
	OpFunctionEnd Opcode = 0x02
	OpLocal       Opcode = 0x03
	OpStore       Opcode = 0x04
	OpPop         Opcode = 0x05
	OpIf          Opcode = 0x06
	OpElse        Opcode = 0x07
	OpEndIf       Opcode = 0x08
	OpLoop        Opcode = 0x09
	OpLoopCond    Opcode = 0x0A
	OpEndLoop     Opcode = 0x0B
	OpFor         Opcode = 0x0C
	OpForCond     Opcode = 0x0D
	OpForStep     Opcode = 0x0E
	OpForBody     Opcode = 0x0F
	OpEndFor      Opcode = 0x10
	OpBreak       Opcode = 0x11
	OpContinue    Opcode = 0x12
	OpReturn      Opcode = 0x13
	OpDiscard     Opcode = 0x14
)

// Expression opcodes. Each pushes one value.
const (
	OpPushInt     Opcode = 0x20
	OpPushFloat   Opcode = 0x21
	OpPushBool    Opcode = 0x22
	OpLoadInput   Opcode = 0x23
	OpLoadOutput  Opcode = 0x24
	OpLoadUniform Opcode = 0x25
	OpLoadLocal   Opcode = 0x26
	OpSwizzle     Opcode = 0x27
	OpIndex       Opcode = 0x28
	OpConvert     Opcode = 0x29
	OpConstruct   Opcode = 0x2A
	OpCall        Opcode = 0x2B
	OpIntrinsic   Opcode = 0x2C
	OpSample      Opcode = 0x2D
)

// OpOperatorBase is the opcode of ir.OpAdd; operator opcodes follow ir.Op
// order up to ir.OpNot.
const OpOperatorBase Opcode = 0x40

// Operator returns the opcode of an ir operator.
func Operator(op ir.Op) Opcode {
	return OpOperatorBase + Opcode(op)
}

// IsOperator reports whether o is one of the operator opcodes.
func (o Opcode) IsOperator() bool {
	return o >= OpOperatorBase && ir.Op(o-OpOperatorBase).IsValid()
}

// Op returns the ir operator of an operator opcode.
func (o Opcode) Op() ir.Op {
	return ir.Op(o - OpOperatorBase)
}

// operand is the encoding of one fixed operand.
type operand uint8

const (
	u8 operand = iota
	u16
	i32
	f32
)

func (o operand) size() int {
	switch o {
	case u8:
		return 1
	case u16:
		return 2
	default:
		return 4
	}
}

type opInfo struct {
	name     string
	operands []operand
}

var opTable = map[Opcode]opInfo{
	OpEnd:         {"END", nil},
	OpFunction:    {"FUNCTION", []operand{u16, u8, u8, u8}}, // followed by n param types
	OpFunctionEnd: {"FUNCTION_END", nil},
	OpLocal:       {"LOCAL", []operand{u16, u8, u8}},
	OpStore:       {"STORE", nil},
	OpPop:         {"POP", nil},
	OpIf:          {"IF", nil},
	OpElse:        {"ELSE", nil},
	OpEndIf:       {"END_IF", nil},
	OpLoop:        {"LOOP", nil},
	OpLoopCond:    {"LOOP_COND", nil},
	OpEndLoop:     {"END_LOOP", nil},
	OpFor:         {"FOR", nil},
	OpForCond:     {"FOR_COND", nil},
	OpForStep:     {"FOR_STEP", []operand{u8}},
	OpForBody:     {"FOR_BODY", nil},
	OpEndFor:      {"END_FOR", nil},
	OpBreak:       {"BREAK", nil},
	OpContinue:    {"CONTINUE", nil},
	OpReturn:      {"RETURN", []operand{u8}},
	OpDiscard:     {"DISCARD", nil},

	OpPushInt:     {"PUSH_INT", []operand{i32}},
	OpPushFloat:   {"PUSH_FLOAT", []operand{f32}},
	OpPushBool:    {"PUSH_BOOL", []operand{u8}},
	OpLoadInput:   {"LOAD_INPUT", []operand{u16}},
	OpLoadOutput:  {"LOAD_OUTPUT", []operand{u16}},
	OpLoadUniform: {"LOAD_UNIFORM", []operand{u16}},
	OpLoadLocal:   {"LOAD_LOCAL", []operand{u16}},
	OpSwizzle:     {"SWIZZLE", []operand{u8, u8}},
	OpIndex:       {"INDEX", []operand{u8}},
	OpConvert:     {"CONVERT", []operand{u8}},
	OpConstruct:   {"CONSTRUCT", []operand{u8, u8}},
	OpCall:        {"CALL", []operand{u16, u8}},
	OpIntrinsic:   {"INTRINSIC", []operand{u8, u8, u8}},
	OpSample:      {"SAMPLE", []operand{u16}},
}

var operatorNames = [...]string{
	ir.OpAdd: "ADD",
	ir.OpSub: "SUB",
	ir.OpMul: "MUL",
	ir.OpDiv: "DIV",
	ir.OpMod: "MOD",
	ir.OpNeg: "NEG",
	ir.OpEq:  "EQ",
	ir.OpNe:  "NE",
	ir.OpLt:  "LT",
	ir.OpGt:  "GT",
	ir.OpLe:  "LE",
	ir.OpGe:  "GE",
	ir.OpAnd: "AND",
	ir.OpOr:  "OR",
	ir.OpNot: "NOT",
}

func lookup(o Opcode) (opInfo, bool) {
	if o.IsOperator() {
		return opInfo{operatorNames[o.Op()], []operand{u8}}, true
	}
	info, ok := opTable[o]
	return info, ok
}

// String returns the mnemonic of o.
func (o Opcode) String() string {
	if info, ok := lookup(o); ok {
		return info.name
	}
	return "UNKNOWN"
}

// Function flags.
const (
	FlagEntry uint8 = 1 << 0
)
