// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/mslc/ir"
)

// TypeName implements backend.Dialect.
func (w *Writer) TypeName(t ir.Type) (string, error) {
	switch {
	case t == ir.TypeVoid:
		return "void", nil
	case t == ir.TypeBool:
		return "bool", nil
	case t == ir.TypeInt1:
		return "int", nil
	case t == ir.TypeFloat1:
		return "float", nil
	case t.IsVector():
		return vectorToGLSL(t), nil
	case t.IsMatrix():
		return matrixToGLSL(t)
	case t.IsTexture():
		return w.samplerToGLSL(t)
	}
	return "", ir.Errorf(ir.PhaseBackend, ir.ErrUnsupportedType, "type %d has no GLSL spelling", t)
}

// vectorToGLSL returns the GLSL name for a vector type.
func vectorToGLSL(t ir.Type) string {
	prefix := ""
	if t.IsInt() {
		prefix = "i"
	}
	return prefix + "vec" + string(rune('0'+t.Size()))
}

// matrixToGLSL returns the GLSL name for a matrix type. GLSL only has
// float matrices.
func matrixToGLSL(t ir.Type) (string, error) {
	if !t.IsFloat() {
		return "", ir.Errorf(ir.PhaseBackend, ir.ErrUnsupportedType, "GLSL has no %s", t)
	}
	return "mat" + string(rune('0'+t.Size())), nil
}

// samplerToGLSL returns the combined sampler type for a texture.
func (w *Writer) samplerToGLSL(t ir.Type) (string, error) {
	switch t {
	case ir.TypeTexture1D:
		if w.options.LangVersion.ES {
			return "", ir.Errorf(ir.PhaseBackend, ir.ErrUnsupportedType, "GLSL ES has no %s", t)
		}
		return "sampler1D", nil
	case ir.TypeTexture2D:
		return "sampler2D", nil
	default:
		return "sampler3D", nil
	}
}
