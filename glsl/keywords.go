// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

// glslKeywords contains GLSL reserved words and the built-in names a
// generated identifier must not shadow. Based on GLSL 4.60 and GLSL ES
// 3.20.
var glslKeywords = func() map[string]struct{} {
	words := []string{
		// Types
		"void bool int uint float double",
		"vec2 vec3 vec4 ivec2 ivec3 ivec4 uvec2 uvec3 uvec4 bvec2 bvec3 bvec4 dvec2 dvec3 dvec4",
		"mat2 mat3 mat4 mat2x2 mat2x3 mat2x4 mat3x2 mat3x3 mat3x4 mat4x2 mat4x3 mat4x4",
		"dmat2 dmat3 dmat4 atomic_uint",
		"sampler sampler1D sampler2D sampler3D samplerCube sampler2DRect sampler1DArray sampler2DArray",
		"sampler1DShadow sampler2DShadow samplerCubeShadow samplerBuffer sampler2DMS",
		"isampler1D isampler2D isampler3D usampler1D usampler2D usampler3D",
		"image1D image2D image3D imageCube",

		// Keywords
		"attribute const uniform varying buffer shared coherent volatile restrict readonly writeonly",
		"layout centroid flat smooth noperspective patch sample",
		"break continue do for while switch case default if else subroutine",
		"in out inout true false invariant precise discard return struct",
		"lowp mediump highp precision",

		// Reserved for future use
		"common partition active asm class union enum typedef template this resource goto",
		"inline noinline public static extern external interface long short half fixed unsigned superp",
		"input output hvec2 hvec3 hvec4 fvec2 fvec3 fvec4 filter sizeof cast namespace using",

		// Built-in functions
		"main radians degrees sin cos tan asin acos atan sinh cosh tanh",
		"pow exp log exp2 log2 sqrt inversesqrt abs sign floor trunc round ceil fract",
		"mod modf min max clamp mix step smoothstep isnan isinf fma",
		"length distance dot cross normalize faceforward reflect refract",
		"matrixCompMult outerProduct transpose determinant inverse",
		"lessThan lessThanEqual greaterThan greaterThanEqual equal notEqual any all not",
		"texture textureSize textureLod textureProj texelFetch textureGrad textureGather",
		"dFdx dFdy fwidth",
	}
	m := make(map[string]struct{})
	for _, line := range words {
		for _, w := range strings.Fields(line) {
			m[w] = struct{}{}
		}
	}
	return m
}()

// isKeyword checks if a name is a GLSL keyword or reserved word.
func isKeyword(name string) bool {
	_, ok := glslKeywords[name]
	return ok
}

// escapeKeyword escapes a name if it conflicts with GLSL keywords.
// Returns the name with underscore prefix if it's reserved.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	// Identifiers containing "__" are reserved.
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	if isKeyword(name) || strings.HasPrefix(name, "gl_") {
		return "_" + name
	}
	return name
}
