// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/mslc/ir"
)

// ShaderModel represents a DirectX Shader Model version.
// Shader Models define the feature set available for shader compilation.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel5_0 is the base SM5 version (DirectX 11, default).
	ShaderModel5_0 ShaderModel = iota

	// ShaderModel5_1 adds register spaces.
	ShaderModel5_1

	// ShaderModel6_0 introduces DXIL.
	ShaderModel6_0

	ShaderModel6_1
	ShaderModel6_2
	ShaderModel6_3
	ShaderModel6_4
	ShaderModel6_5
	ShaderModel6_6
)

// String returns a human-readable representation of the shader model.
// Example: "SM 5.0", "SM 6.0"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "5_0", "6_0"
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

// Profile returns the compiler target profile for a shader kind, such as
// "vs_5_0" or "ps_6_0".
func (sm ShaderModel) Profile(kind ir.ShaderKind) string {
	prefix := "vs_"
	if kind == ir.KindPixel {
		prefix = "ps_"
	}
	return prefix + sm.ProfileSuffix()
}

// version returns the major and minor version numbers.
func (sm ShaderModel) version() (major, minor uint8) {
	switch {
	case sm <= ShaderModel5_1:
		return 5, uint8(sm)
	case sm <= ShaderModel6_6:
		return 6, uint8(sm - ShaderModel6_0)
	default:
		return 5, 0 // Default to 5.0 for unknown
	}
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 {
	major, _ := sm.version()
	return major
}

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 {
	_, minor := sm.version()
	return minor
}

// SupportsRegisterSpaces reports whether register() may name a space.
// Spaces were introduced in Shader Model 5.1.
func (sm ShaderModel) SupportsRegisterSpaces() bool {
	return sm >= ShaderModel5_1 && sm <= ShaderModel6_6
}

// SupportsDXIL returns true if this shader model uses DXIL output.
// Earlier models use DXBC (DirectX Bytecode).
func (sm ShaderModel) SupportsDXIL() bool {
	return sm >= ShaderModel6_0 && sm <= ShaderModel6_6
}

// ParseShaderModel parses "5.0", "5_1", "sm6.0" or "SM 6.2".
func ParseShaderModel(s string) (ShaderModel, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSpace(strings.TrimPrefix(v, "sm"))
	v = strings.ReplaceAll(v, "_", ".")
	for sm := ShaderModel5_0; sm <= ShaderModel6_6; sm++ {
		major, minor := sm.version()
		if v == fmt.Sprintf("%d.%d", major, minor) {
			return sm, nil
		}
	}
	return 0, fmt.Errorf("hlsl: unknown shader model %q", s)
}
