// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/mslc/bytecode"
	"github.com/gogpu/mslc/ir"
	"github.com/gogpu/mslc/metadata"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	// Desktop OpenGL versions
	Version330 = Version{Major: 3, Minor: 30, ES: false} // OpenGL 3.3 Core
	Version400 = Version{Major: 4, Minor: 0, ES: false}  // OpenGL 4.0
	Version410 = Version{Major: 4, Minor: 10, ES: false} // OpenGL 4.1
	Version420 = Version{Major: 4, Minor: 20, ES: false} // OpenGL 4.2
	Version450 = Version{Major: 4, Minor: 50, ES: false} // OpenGL 4.5

	// OpenGL ES / WebGL versions
	VersionES300 = Version{Major: 3, Minor: 0, ES: true}  // ES 3.0 / WebGL 2.0
	VersionES310 = Version{Major: 3, Minor: 10, ES: true} // ES 3.1
)

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// VersionNumber returns just the numeric version (e.g., "410", "300").
func (v Version) VersionNumber() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// ParseVersion parses "410", "410 core", "300 es" or "300es".
func ParseVersion(s string) (Version, error) {
	var num int
	var profile string
	n, _ := fmt.Sscanf(s, "%d%s", &num, &profile)
	if n == 0 || num < 100 {
		return Version{}, fmt.Errorf("glsl: invalid version %q", s)
	}
	v := Version{Major: uint8(num / 100), Minor: uint8(num % 100)}
	switch profile {
	case "", "core":
	case "es":
		v.ES = true
	default:
		return Version{}, fmt.Errorf("glsl: invalid profile %q", profile)
	}
	return v, nil
}

// versionAtLeast reports whether the numeric version (Major*100+Minor) is
// at least the desktop or ES number given.
func (v Version) versionAtLeast(desktop, es int) bool {
	n := int(v.Major)*100 + int(v.Minor)
	if v.ES {
		return n >= es
	}
	return n >= desktop
}

// SupportsVaryingLocations reports whether vertex outputs and pixel inputs
// may carry layout(location) qualifiers.
func (v Version) SupportsVaryingLocations() bool {
	return v.versionAtLeast(410, 310)
}

// SupportsBindings reports whether uniforms may carry layout(binding)
// qualifiers.
func (v Version) SupportsBindings() bool {
	return v.versionAtLeast(420, 310)
}

// Options configures GLSL code generation.
type Options struct {
	// LangVersion is the target GLSL version.
	// Defaults to Version410 if zero.
	LangVersion Version

	// TextureBindingBase adds offset to texture binding indices.
	TextureBindingBase uint32

	// UniformBindingBase adds offset to uniform block binding indices.
	UniformBindingBase uint32

	// ForceHighPrecision writes highp defaults for ES targets. Without it
	// floats default to mediump.
	ForceHighPrecision bool
}

// DefaultOptions returns sensible default options for GLSL generation.
func DefaultOptions() Options {
	return Options{
		LangVersion:        Version410,
		ForceHighPrecision: true,
	}
}

// Assemble translates MSL bytecode and its metadata into GLSL source.
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

// Compile writes GLSL for decoded metadata and a bytecode reader
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
	if options.LangVersion.Major == 0 {
		options.LangVersion = Version410
	}

	w := newWriter(m, &options)
	if err := w.writeModule(r); err != nil {
		return "", err
	}
	return w.String(), nil
}
