// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl assembles GLSL (OpenGL Shading Language) source from MSL
// bytecode and its interface metadata.
//
// Supported targets:
//
//   - GLSL 3.30 Core: Desktop OpenGL 3.3+
//   - GLSL 4.10 Core: Desktop OpenGL 4.1+ (default)
//   - GLSL 4.20+ Core: adds layout(binding) on uniforms and samplers
//   - GLSL ES 3.00: WebGL 2.0, OpenGL ES 3.0
//   - GLSL ES 3.10: OpenGL ES 3.1
//
// # Basic Usage
//
//	source, err := glsl.Assemble(code, md, glsl.Options{
//	    LangVersion: glsl.Version330,
//	})
//
// # Interface
//
// Vertex inputs become in_NAME and pixel outputs become out_NAME, both
// with explicit locations. Vertex outputs and pixel inputs are linked by
// index through _varyN names. Output 0 of a vertex shader is gl_Position
// and input 0 of a pixel shader is gl_FragCoord. Constant buffers become
// std140 uniform blocks and each texture a combined sampler.
//
// # Matrices
//
// MSL matrices are rows; GLSL matrices are columns. The backend keeps
// the bytes and swaps the operands of mul instead.
//
// # Reserved Words
//
// Identifiers that collide with GLSL keywords, built-in functions or the
// gl_ prefix are escaped with a leading underscore.
package glsl
