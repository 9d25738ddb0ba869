// Package bytecode emits and decodes MSL bytecode, the stack-based
// intermediate form consumed by the GLSL and HLSL backends.
//
// A stream starts with the magic "MSBC" and two version bytes, followed by
// one FUNCTION ... FUNCTION_END group per function in definition order and
// a final END. Multi-byte operands are big-endian.
//
// Expression opcodes push one value; STORE pops a value and the target
// pushed before it; POP discards an expression statement result.
// Structured control flow keeps its shape:
//
//	cond IF then [ELSE else] END_IF
//	LOOP cond LOOP_COND body END_LOOP
//	FOR init FOR_COND [cond] FOR_STEP(hasCond) step FOR_BODY body END_FOR
//
// Emit writes the bytecode together with its metadata blob. Reader and
// Disassemble read it back.
package bytecode
