// Package msl provides lexing and parsing of MSL, a small C-style shading
// language for vertex and pixel shaders.
//
// # Components
//
//   - Lexer: tokenizes source into a caller-provided token buffer
//   - Parser: builds a type-checked ShaderUnit from the tokens
//   - Arena: bounded node storage for function bodies
//
// # Usage
//
//	tokens, err := msl.Tokenize(source, 4096)
//	if err != nil {
//	    log.Fatal(msl.FormatWithContext(err, source))
//	}
//
//	unit, err := msl.Parse(tokens, ir.KindPixel, 8192)
//	if err != nil {
//	    log.Fatal(msl.FormatWithContext(err, source))
//	}
//
// # Language
//
// A program declares its interface first and its functions after:
//
//	input  { float4 position : 0; float2 uv : 1; }
//	output { float4 color : 0; }
//	texture2d albedo : 0;
//	cbuffer Material { float4 tint : 0; }
//
//	void main() {
//	    output.color = sample(albedo, input.uv) * tint;
//	}
//
// Inputs and outputs are reached through input.NAME and output.NAME.
// Textures and constant-buffer members are global names. The entry point
// is the void function main.
package msl
