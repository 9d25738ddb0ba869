package ir

import "fmt"

// Format versions written into bytecode and metadata headers.
const (
	VersionMajor = 1
	VersionMinor = 0
)

// MaxNameLength is the longest interface name that fits the fixed-width
// metadata name field.
const MaxNameLength = 64

// ShaderKind is the pipeline stage a shader is compiled for.
type ShaderKind uint8

const (
	KindVertex ShaderKind = iota
	KindPixel
)

// String returns the lower-case stage name.
func (k ShaderKind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindPixel:
		return "pixel"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsValid reports whether k is a known shader kind.
func (k ShaderKind) IsValid() bool {
	return k <= KindPixel
}

// ParseShaderKind parses "vertex"/"vs" or "pixel"/"ps"/"fragment".
func ParseShaderKind(s string) (ShaderKind, error) {
	switch s {
	case "vertex", "vs", "vert":
		return KindVertex, nil
	case "pixel", "ps", "frag", "fragment":
		return KindPixel, nil
	}
	return 0, fmt.Errorf("unknown shader kind %q", s)
}

// Variable is an interface binding point: an input, an output, a texture
// or a constant-buffer member.
type Variable struct {
	Name  string
	Index uint16
	Type  Type
}

// ConstantBuffer is a named, ordered group of uniform members.
// Member order is significant for backend layout generation.
type ConstantBuffer struct {
	Name    string
	Members []Variable
}

// Interface holds the declared interface collections of a shader in
// declaration order.
type Interface struct {
	Inputs          []Variable
	Outputs         []Variable
	Textures        []Variable
	ConstantBuffers []ConstantBuffer
}

// Category identifies one of the index namespaces of an Interface.
type Category uint8

const (
	CategoryInput Category = iota
	CategoryOutput
	CategoryTexture
	CategoryUniform
)

// String returns the category name used in diagnostics.
func (c Category) String() string {
	switch c {
	case CategoryInput:
		return "input"
	case CategoryOutput:
		return "output"
	case CategoryTexture:
		return "texture"
	case CategoryUniform:
		return "constant buffer member"
	default:
		return "unknown"
	}
}

// Lookup returns the variable with the given index in a category.
func (in *Interface) Lookup(cat Category, index uint16) (Variable, bool) {
	switch cat {
	case CategoryInput:
		return findIndex(in.Inputs, index)
	case CategoryOutput:
		return findIndex(in.Outputs, index)
	case CategoryTexture:
		return findIndex(in.Textures, index)
	case CategoryUniform:
		for _, cb := range in.ConstantBuffers {
			if v, ok := findIndex(cb.Members, index); ok {
				return v, true
			}
		}
	}
	return Variable{}, false
}

// Uniforms returns every constant-buffer member in declaration order.
func (in *Interface) Uniforms() []Variable {
	var out []Variable
	for _, cb := range in.ConstantBuffers {
		out = append(out, cb.Members...)
	}
	return out
}

func findIndex(vars []Variable, index uint16) (Variable, bool) {
	for _, v := range vars {
		if v.Index == index {
			return v, true
		}
	}
	return Variable{}, false
}

// PositionIndex is the interface index reserved for the position builtin:
// vertex output 0 and pixel input 0.
const PositionIndex = 0

// IsPosition reports whether a variable of the given category is the
// position builtin for a shader kind.
func IsPosition(kind ShaderKind, cat Category, v Variable) bool {
	if v.Index != PositionIndex {
		return false
	}
	return (kind == KindVertex && cat == CategoryOutput) ||
		(kind == KindPixel && cat == CategoryInput)
}
