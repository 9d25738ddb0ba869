// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// BindTarget specifies the HLSL register binding for a resource.
// HLSL uses register(x#, space#) syntax for resource binding.
type BindTarget struct {
	// Space is the register space (0-based). Only written for Shader
	// Model 5.1 and later.
	Space uint8

	// Register is the register index within the space.
	Register uint32
}

// RegisterType represents the HLSL register type.
type RegisterType uint8

const (
	// RegisterTypeB is for constant buffers (cbuffer).
	RegisterTypeB RegisterType = iota

	// RegisterTypeT is for textures and shader resource views.
	RegisterTypeT

	// RegisterTypeS is for samplers.
	RegisterTypeS
)

// String returns the single-character register prefix.
func (rt RegisterType) String() string {
	switch rt {
	case RegisterTypeT:
		return "t"
	case RegisterTypeS:
		return "s"
	default:
		return "b"
	}
}

// Annotation formats the register() annotation for this target.
func (bt BindTarget) Annotation(rt RegisterType, sm ShaderModel) string {
	if sm.SupportsRegisterSpaces() {
		return fmt.Sprintf("register(%s%d, space%d)", rt, bt.Register, bt.Space)
	}
	return fmt.Sprintf("register(%s%d)", rt, bt.Register)
}
