// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl assembles HLSL (High-Level Shading Language) source from
// MSL bytecode and its interface metadata.
//
// The output targets Direct3D 11 and 12 compilers (FXC for Shader Model
// 5.x, DXC for 6.x).
//
// # Usage
//
//	options := hlsl.DefaultOptions()
//	options.ShaderModel = hlsl.ShaderModel5_1
//
//	source, err := hlsl.Assemble(code, md, options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Stage Interface
//
// Inputs and outputs are gathered into VertexInput/VertexOutput (or
// PixelInput/PixelOutput) structs with TEXCOORDn semantics. Vertex output
// 0 and pixel input 0 carry SV_Position, pixel outputs SV_Targetn. The
// structs live in static globals so every function can reach them; the
// generated entry point copies them in and out around msl_main.
//
// # Register Binding
//
//	cbuffer  : register(b#[, space#])  // constant buffers, in declaration order
//	TextureND: register(t#[, space#])  // textures, by MSL index
//	Sampler  : register(s#[, space#])  // one sampler per texture
//
// Spaces are written for Shader Model 5.1 and later.
//
// # Constant Buffer Layout
//
// Every cbuffer member carries a packoffset at its std140 offset (see
// ir.ConstantBuffer.Layout), so a buffer filled for the GLSL uniform block
// is valid for the HLSL cbuffer as well.
package hlsl
