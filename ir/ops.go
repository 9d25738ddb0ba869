package ir

// Op is a unary or binary operator. Its value is the offset of the
// corresponding bytecode opcode from the first operator opcode.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
	OpNot

	opCount
)

var opSymbols = [opCount]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpNeg: "-",
	OpEq:  "==",
	OpNe:  "!=",
	OpLt:  "<",
	OpGt:  ">",
	OpLe:  "<=",
	OpGe:  ">=",
	OpAnd: "&&",
	OpOr:  "||",
	OpNot: "!",
}

// Symbol returns the C-family spelling shared by MSL, GLSL and HLSL.
func (o Op) Symbol() string {
	if o < opCount {
		return opSymbols[o]
	}
	return "?"
}

// IsValid reports whether o is a known operator.
func (o Op) IsValid() bool { return o < opCount }

// IsUnary reports whether o takes one operand.
func (o Op) IsUnary() bool { return o == OpNeg || o == OpNot }

// Intrinsic identifies a built-in function. The value is its bytecode id.
type Intrinsic uint8

const (
	IntrinsicSin Intrinsic = iota
	IntrinsicCos
	IntrinsicTan
	IntrinsicAsin
	IntrinsicAcos
	IntrinsicAtan
	IntrinsicExp
	IntrinsicExp2
	IntrinsicLog
	IntrinsicLog2
	IntrinsicSqrt
	IntrinsicRsqrt
	IntrinsicFloor
	IntrinsicCeil
	IntrinsicFract
	IntrinsicSaturate
	IntrinsicAbs
	IntrinsicNormalize
	IntrinsicLength
	IntrinsicPow
	IntrinsicAtan2
	IntrinsicStep
	IntrinsicMin
	IntrinsicMax
	IntrinsicDot
	IntrinsicDistance
	IntrinsicCross
	IntrinsicReflect
	IntrinsicClamp
	IntrinsicLerp
	IntrinsicSmoothstep
	IntrinsicMul

	intrinsicCount
)

// IntrinsicInfo describes a built-in function.
type IntrinsicInfo struct {
	Name  string
	Arity int
}

var intrinsics = [intrinsicCount]IntrinsicInfo{
	IntrinsicSin:        {"sin", 1},
	IntrinsicCos:        {"cos", 1},
	IntrinsicTan:        {"tan", 1},
	IntrinsicAsin:       {"asin", 1},
	IntrinsicAcos:       {"acos", 1},
	IntrinsicAtan:       {"atan", 1},
	IntrinsicExp:        {"exp", 1},
	IntrinsicExp2:       {"exp2", 1},
	IntrinsicLog:        {"log", 1},
	IntrinsicLog2:       {"log2", 1},
	IntrinsicSqrt:       {"sqrt", 1},
	IntrinsicRsqrt:      {"rsqrt", 1},
	IntrinsicFloor:      {"floor", 1},
	IntrinsicCeil:       {"ceil", 1},
	IntrinsicFract:      {"fract", 1},
	IntrinsicSaturate:   {"saturate", 1},
	IntrinsicAbs:        {"abs", 1},
	IntrinsicNormalize:  {"normalize", 1},
	IntrinsicLength:     {"length", 1},
	IntrinsicPow:        {"pow", 2},
	IntrinsicAtan2:      {"atan2", 2},
	IntrinsicStep:       {"step", 2},
	IntrinsicMin:        {"min", 2},
	IntrinsicMax:        {"max", 2},
	IntrinsicDot:        {"dot", 2},
	IntrinsicDistance:   {"distance", 2},
	IntrinsicCross:      {"cross", 2},
	IntrinsicReflect:    {"reflect", 2},
	IntrinsicClamp:      {"clamp", 3},
	IntrinsicLerp:       {"lerp", 3},
	IntrinsicSmoothstep: {"smoothstep", 3},
	IntrinsicMul:        {"mul", 2},
}

var intrinsicByName = func() map[string]Intrinsic {
	m := make(map[string]Intrinsic, intrinsicCount)
	for i, info := range intrinsics {
		m[info.Name] = Intrinsic(i)
	}
	return m
}()

// Info returns the name and arity of i.
func (i Intrinsic) Info() IntrinsicInfo {
	if i < intrinsicCount {
		return intrinsics[i]
	}
	return IntrinsicInfo{Name: "invalid"}
}

// String returns the MSL name of i.
func (i Intrinsic) String() string { return i.Info().Name }

// IsValid reports whether i is a known intrinsic.
func (i Intrinsic) IsValid() bool { return i < intrinsicCount }

// LookupIntrinsic returns the intrinsic with the given MSL name.
func LookupIntrinsic(name string) (Intrinsic, bool) {
	i, ok := intrinsicByName[name]
	return i, ok
}

// SampleName is the MSL name of the texture sampling built-in. It compiles
// to its own opcode rather than an intrinsic id.
const SampleName = "sample"
