// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"

	"github.com/gogpu/mslc/ir"
)

// TypeName implements backend.Dialect. HLSL spells every MSL value type
// directly: float1 is float, float3 is float3, int2x2 is int2x2.
func (w *Writer) TypeName(t ir.Type) (string, error) {
	switch {
	case t == ir.TypeVoid:
		return "void", nil
	case t == ir.TypeBool:
		return "bool", nil
	case t.IsTexture():
		return textureToHLSL(t), nil
	case !t.IsValid():
		return "", ir.Errorf(ir.PhaseBackend, ir.ErrUnsupportedType, "type %d has no HLSL spelling", t)
	}

	base := "float"
	if t.IsInt() {
		base = "int"
	}
	switch {
	case t.IsVector():
		return base + strconv.Itoa(t.Size()), nil
	case t.IsMatrix():
		n := strconv.Itoa(t.Size())
		return base + n + "x" + n, nil
	}
	return base, nil
}

// textureToHLSL returns the texture object type.
func textureToHLSL(t ir.Type) string {
	switch t {
	case ir.TypeTexture1D:
		return "Texture1D"
	case ir.TypeTexture2D:
		return "Texture2D"
	default:
		return "Texture3D"
	}
}
