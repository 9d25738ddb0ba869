package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/mslc/ir"
)

// Disassemble renders code as one instruction per line, indented by block
// nesting:
//
//	; MSBC 1.0
//	0006  FUNCTION id=0 entry ret=void ()
//	000c    PUSH_FLOAT 1
//	...
func Disassemble(code []byte) (string, error) {
	r, err := NewReader(code)
	if err != nil {
		return "", err
	}
	major, minor := r.Version()

	var sb strings.Builder
	fmt.Fprintf(&sb, "; MSBC %d.%d\n", major, minor)

	depth := 0
	for !r.Done() {
		in, err := r.Next()
		if err != nil {
			return "", err
		}
		switch in.Op {
		case OpFunctionEnd, OpEndIf, OpEndLoop, OpEndFor, OpElse, OpLoopCond, OpForCond, OpForStep, OpForBody:
			depth--
		}
		if depth < 0 {
			depth = 0
		}
		fmt.Fprintf(&sb, "%04x  %s%s\n", in.Offset, strings.Repeat("  ", depth), in)
		switch in.Op {
		case OpFunction, OpIf, OpElse, OpLoop, OpLoopCond, OpFor, OpForCond, OpForStep, OpForBody:
			depth++
		}
	}
	return sb.String(), nil
}

// String formats the instruction with its operands.
func (in Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(in.Op.String())
	arg := func(format string, args ...any) {
		sb.WriteByte(' ')
		fmt.Fprintf(&sb, format, args...)
	}

	switch op := in.Op; {
	case op == OpFunction:
		arg("id=%d", in.A)
		if uint8(in.B)&FlagEntry != 0 {
			arg("entry")
		}
		arg("ret=%s", in.Type)
		params := make([]string, len(in.Params))
		for i, p := range in.Params {
			params[i] = p.String()
		}
		arg("(%s)", strings.Join(params, ", "))
	case op == OpLocal:
		arg("slot=%d %s", in.A, in.Type)
		if in.B != 0 {
			arg("init")
		}
	case op == OpForStep:
		if in.A != 0 {
			arg("cond")
		}
	case op == OpReturn:
		if in.A != 0 {
			arg("value")
		}
	case op == OpPushInt:
		arg("%d", in.Int)
	case op == OpPushFloat:
		arg("%s", strconv.FormatFloat(float64(in.Float), 'g', -1, 32))
	case op == OpPushBool:
		arg("%t", in.A != 0)
	case op == OpLoadInput, op == OpLoadOutput, op == OpLoadUniform, op == OpSample:
		arg("#%d", in.A)
	case op == OpLoadLocal:
		arg("slot=%d", in.A)
	case op == OpSwizzle:
		comps := make([]byte, len(in.Swizzle))
		for i, c := range in.Swizzle {
			comps[i] = "xyzw"[c]
		}
		arg(".%s", comps)
	case op == OpIndex, op == OpConvert, op.IsOperator():
		arg("%s", in.Type)
	case op == OpConstruct:
		arg("%s argc=%d", in.Type, in.A)
	case op == OpCall:
		arg("fn=%d argc=%d", in.A, in.B)
	case op == OpIntrinsic:
		arg("%s argc=%d %s", ir.Intrinsic(in.A), in.B, in.Type)
	}
	return sb.String()
}
