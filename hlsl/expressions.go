// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/mslc/internal/backend"
	"github.com/gogpu/mslc/ir"
)

// cast writes a C-style conversion, which also splats scalars.
func (w *Writer) cast(v backend.Value, to ir.Type) (string, error) {
	name, err := w.TypeName(to)
	if err != nil {
		return "", err
	}
	return "((" + name + ")" + v.Text + ")", nil
}

// Convert implements backend.Dialect.
func (w *Writer) Convert(v backend.Value, to ir.Type) (string, error) {
	return w.cast(v, to)
}

// Construct implements backend.Dialect. HLSL fills matrices row by row,
// the same order MSL uses.
func (w *Writer) Construct(t ir.Type, args []backend.Value) (string, error) {
	if len(args) == 1 && args[0].Type.IsScalar() {
		return w.cast(args[0], t)
	}
	name, err := w.TypeName(t)
	if err != nil {
		return "", err
	}
	return backend.Call(name, args...), nil
}

// Binary implements backend.Dialect. Every MSL operator, including * on
// matrices, is component-wise in HLSL as well.
func (w *Writer) Binary(op ir.Op, a, b backend.Value, _ ir.Type) (string, error) {
	return "(" + a.Text + " " + op.Symbol() + " " + b.Text + ")", nil
}

// Intrinsic implements backend.Dialect.
func (w *Writer) Intrinsic(in ir.Intrinsic, args []backend.Value, _ ir.Type) (string, error) {
	if in == ir.IntrinsicFract {
		return backend.Call("frac", args...), nil
	}
	return backend.Call(in.String(), args...), nil
}

// Sample implements backend.Dialect. Vertex shaders have no derivatives
// and read the top mip level.
func (w *Writer) Sample(texture ir.Variable, coord backend.Value) (string, error) {
	name := w.vars[nameKey{ir.CategoryTexture, texture.Index}]
	sampler := w.samplers[texture.Index]
	if w.md.Kind == ir.KindVertex {
		return name + ".SampleLevel(" + sampler + ", " + coord.Text + ", 0.0)", nil
	}
	return name + ".Sample(" + sampler + ", " + coord.Text + ")", nil
}
