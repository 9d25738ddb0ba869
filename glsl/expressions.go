// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/mslc/internal/backend"
	"github.com/gogpu/mslc/ir"
)

// intrinsicNames maps intrinsics whose GLSL name differs from MSL. The
// rest keep their MSL spelling.
var intrinsicNames = map[ir.Intrinsic]string{
	ir.IntrinsicRsqrt: "inversesqrt",
	ir.IntrinsicAtan2: "atan",
	ir.IntrinsicLerp:  "mix",
}

// Convert implements backend.Dialect using constructor-style casts.
func (w *Writer) Convert(v backend.Value, to ir.Type) (string, error) {
	name, err := w.TypeName(to)
	if err != nil {
		return "", err
	}
	return backend.Call(name, v), nil
}

// Construct implements backend.Dialect. GLSL fills matrices column by
// column, so the MSL row vectors become columns and indexing yields the
// same vector in both languages.
func (w *Writer) Construct(t ir.Type, args []backend.Value) (string, error) {
	name, err := w.TypeName(t)
	if err != nil {
		return "", err
	}
	return backend.Call(name, args...), nil
}

// Binary implements backend.Dialect.
func (w *Writer) Binary(op ir.Op, a, b backend.Value, _ ir.Type) (string, error) {
	// The * operator on two GLSL matrices is the linear algebra product.
	if op == ir.OpMul && a.Type.IsMatrix() && b.Type.IsMatrix() {
		return backend.Call("matrixCompMult", a, b), nil
	}
	return "(" + a.Text + " " + op.Symbol() + " " + b.Text + ")", nil
}

// Intrinsic implements backend.Dialect.
func (w *Writer) Intrinsic(in ir.Intrinsic, args []backend.Value, _ ir.Type) (string, error) {
	switch in {
	case ir.IntrinsicSaturate:
		return "clamp(" + args[0].Text + ", 0.0, 1.0)", nil
	case ir.IntrinsicMul:
		// Matrices are stored transposed relative to MSL.
		return "(" + args[1].Text + " * " + args[0].Text + ")", nil
	}
	if name, ok := intrinsicNames[in]; ok {
		return backend.Call(name, args...), nil
	}
	return backend.Call(in.String(), args...), nil
}

// Sample implements backend.Dialect.
func (w *Writer) Sample(texture ir.Variable, coord backend.Value) (string, error) {
	name := w.vars[nameKey{ir.CategoryTexture, texture.Index}]
	return "texture(" + name + ", " + coord.Text + ")", nil
}
