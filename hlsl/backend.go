// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/mslc/bytecode"
	"github.com/gogpu/mslc/ir"
	"github.com/gogpu/mslc/metadata"
)

// Options configures HLSL code generation.
type Options struct {
	// ShaderModel specifies the target shader model.
	// Defaults to ShaderModel5_0.
	ShaderModel ShaderModel

	// EntryPoint names the generated entry function.
	// Defaults to "main".
	EntryPoint string

	// RegisterSpace is written into every register() annotation when the
	// shader model supports spaces.
	RegisterSpace uint8
}

// DefaultOptions returns sensible default options for HLSL generation.
func DefaultOptions() Options {
	return Options{
		ShaderModel: ShaderModel5_0,
		EntryPoint:  "main",
	}
}

// Assemble translates MSL bytecode and its metadata into HLSL source.
func Assemble(code, md []byte, options Options) (string, error) {
	m, err := metadata.Decode(md)
	if err != nil {
		return "", err
	}
	r, err := bytecode.NewReader(code)
	if err != nil {
		return "", err
	}
	return Compile(r, m, options)
}

// Compile writes HLSL for decoded metadata and a bytecode reader
// positioned after the header.
func Compile(r *bytecode.Reader, m *metadata.Metadata, options Options) (string, error) {
	if r == nil || m == nil {
		return "", ir.Errorf(ir.PhaseBackend, ir.ErrInvalidArguments, "reader and metadata are required")
	}
	if major, minor := r.Version(); major != ir.VersionMajor {
		return "", ir.Errorf(ir.PhaseBackend, ir.ErrVersionMismatch,
			"bytecode version %d.%d, supported %d.x", major, minor, ir.VersionMajor)
	}

	// Apply defaults for zero values
	if options.EntryPoint == "" {
		options.EntryPoint = "main"
	}
	if options.EntryPoint == entryBodyName || options.EntryPoint == stageInputVar || options.EntryPoint == stageOutputVar {
		return "", ir.Errorf(ir.PhaseBackend, ir.ErrInvalidArguments, "entry point name %q is used by the generated code", options.EntryPoint)
	}

	w := newWriter(m, &options)
	if err := w.writeModule(r); err != nil {
		return "", err
	}
	return w.String(), nil
}
