// Package ir defines the representation shared by every stage of the
// mslc toolchain.
//
// The front end (package msl), the bytecode emitter, the metadata codec and
// the backend assemblers all speak in terms of the types declared here:
//   - Type: the closed set of MSL value and texture types
//   - Variable: an input, output, texture or constant-buffer member binding
//   - ConstantBuffer: an ordered group of uniform members
//   - Interface: the four collections that describe a shader's interface
//   - Error: the single error taxonomy of the pipeline
//
// # Pipeline
//
//	source text → tokens → ShaderUnit → {bytecode, metadata} → GLSL / HLSL
//
// Metadata, once emitted, is the single source of truth about the
// interface. Backends never re-parse source text.
package ir
