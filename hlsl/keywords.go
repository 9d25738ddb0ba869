// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "strings"

// UnnamedIdentifier is the default name for empty identifiers.
const UnnamedIdentifier = "_unnamed"

// Names the writer declares itself.
const (
	stageInputVar  = "stage_input"
	stageOutputVar = "stage_output"
	entryBodyName  = "msl_main"
	samplerSuffix  = "_sampler"
)

func fieldSet(lines ...string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, line := range lines {
		for _, w := range strings.Fields(line) {
			m[w] = struct{}{}
		}
	}
	return m
}

// reservedKeywords contains HLSL reserved keywords, reserved words and
// intrinsics a generated identifier must not collide with. Based on the
// FXC and DXC keyword lists.
var reservedKeywords = fieldSet(
	// FXC keywords
	"AppendStructuredBuffer asm asm_fragment BlendState bool break Buffer ByteAddressBuffer",
	"case cbuffer centroid class column_major compile compile_fragment CompileShader const continue",
	"ComputeShader ConsumeStructuredBuffer default DepthStencilState DepthStencilView discard do double",
	"DomainShader dword else export extern false float for fxgroup GeometryShader groupshared half",
	"Hullshader if in inline inout InputPatch int interface line lineadj linear LineStream matrix",
	"min10float min12int min16float min16int min16uint namespace nointerpolation noperspective NULL",
	"out OutputPatch packoffset pass pixelfragment PixelShader point PointStream precise",
	"RasterizerState RenderTargetView return register row_major RWBuffer RWByteAddressBuffer",
	"RWStructuredBuffer RWTexture1D RWTexture2D RWTexture3D sample sampler SamplerState",
	"SamplerComparisonState shared snorm stateblock stateblock_state static string struct switch",
	"StructuredBuffer tbuffer technique technique10 technique11 texture Texture1D Texture1DArray",
	"Texture2D Texture2DArray Texture2DMS Texture2DMSArray Texture3D TextureCube TextureCubeArray",
	"true typedef triangle triangleadj TriangleStream uint uniform unorm unsigned vector",
	"vertexfragment VertexShader void volatile while",

	// FXC reserved words
	"auto catch char const_cast delete dynamic_cast enum explicit friend goto long mutable new",
	"operator private protected public reinterpret_cast short signed sizeof static_cast template",
	"this throw try typename union using virtual",

	// Intrinsics
	"abort abs acos all any asdouble asfloat asin asint asuint atan atan2 ceil clamp clip cos cosh",
	"countbits cross ddx ddy degrees determinant distance dot dst errorf exp exp2 faceforward",
	"firstbithigh firstbitlow floor fma fmod frac frexp fwidth isfinite isinf isnan ldexp length",
	"lerp lit log log10 log2 mad max min modf msad4 mul noise normalize pow printf radians rcp",
	"reflect refract reversebits round rsqrt saturate sign sin sincos sinh smoothstep sqrt step",
	"tan tanh tex1D tex2D tex3D texCUBE transpose trunc",

	// DXC keywords
	"nullptr constexpr decltype noexcept static_assert thread_local alignas alignof",
	"char16_t char32_t concept requires",

	// Names of the generated wrapper
	"main "+entryBodyName+" "+stageInputVar+" "+stageOutputVar,
	"VertexInput VertexOutput PixelInput PixelOutput",
)

// caseInsensitiveKeywords contains keywords that are case-insensitive in HLSL.
// These need special handling to avoid conflicts.
var caseInsensitiveKeywords = fieldSet(
	"asm decl pass technique texture1d texture2d texture3d texturecube",
)

// typeShorthands contains the scalar, vector, and matrix type shorthands.
// Generated programmatically from base types.
var typeShorthands = func() map[string]struct{} {
	result := make(map[string]struct{})

	bases := []string{
		"bool", "int", "uint", "dword", "half", "float", "double",
		"min10float", "min16float", "min12int", "min16int", "min16uint",
	}

	for _, base := range bases {
		result[base] = struct{}{}
		// Vector types: base1..base4
		for i := 1; i <= 4; i++ {
			result[base+string(rune('0'+i))] = struct{}{}
		}
		// Matrix types: baseRxC where R,C in {1,2,3,4}
		for r := 1; r <= 4; r++ {
			for c := 1; c <= 4; c++ {
				result[base+string(rune('0'+r))+"x"+string(rune('0'+c))] = struct{}{}
			}
		}
	}

	return result
}()

// IsReserved checks if a name is an HLSL reserved keyword.
func IsReserved(name string) bool {
	if _, ok := reservedKeywords[name]; ok {
		return true
	}
	_, ok := typeShorthands[name]
	return ok
}

// IsCaseInsensitiveReserved checks if a name conflicts with case-insensitive keywords.
// HLSL has some keywords that are case-insensitive (legacy behavior).
func IsCaseInsensitiveReserved(name string) bool {
	_, ok := caseInsensitiveKeywords[strings.ToLower(name)]
	return ok
}

// Escape returns a safe identifier name.
// If the name is reserved or empty, it's prefixed with underscore.
func Escape(name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	if IsReserved(name) || IsCaseInsensitiveReserved(name) || strings.HasPrefix(name, "SV_") {
		return "_" + name
	}
	return name
}
