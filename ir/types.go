package ir

// Type is the closed MSL type set. The numeric value is the wire encoding
// used by both bytecode and metadata.
type Type uint8

const (
	TypeVoid Type = iota
	TypeBool
	TypeInt1
	TypeInt2
	TypeInt3
	TypeInt4
	TypeInt2x2
	TypeInt3x3
	TypeInt4x4
	TypeFloat1
	TypeFloat2
	TypeFloat3
	TypeFloat4
	TypeFloat2x2
	TypeFloat3x3
	TypeFloat4x4
	TypeTexture1D
	TypeTexture2D
	TypeTexture3D

	typeCount
)

// ScalarKind is the element kind of a numeric or boolean type.
type ScalarKind uint8

const (
	ScalarNone ScalarKind = iota
	ScalarBool
	ScalarInt
	ScalarFloat
)

var typeNames = [typeCount]string{
	TypeVoid:      "void",
	TypeBool:      "bool",
	TypeInt1:      "int1",
	TypeInt2:      "int2",
	TypeInt3:      "int3",
	TypeInt4:      "int4",
	TypeInt2x2:    "int2x2",
	TypeInt3x3:    "int3x3",
	TypeInt4x4:    "int4x4",
	TypeFloat1:    "float1",
	TypeFloat2:    "float2",
	TypeFloat3:    "float3",
	TypeFloat4:    "float4",
	TypeFloat2x2:  "float2x2",
	TypeFloat3x3:  "float3x3",
	TypeFloat4x4:  "float4x4",
	TypeTexture1D: "texture1d",
	TypeTexture2D: "texture2d",
	TypeTexture3D: "texture3d",
}

// String returns the MSL spelling of the type.
func (t Type) String() string {
	if t.IsValid() {
		return typeNames[t]
	}
	return "invalid"
}

// IsValid reports whether t is a member of the closed type set.
func (t Type) IsValid() bool {
	return t < typeCount
}

// Scalar returns the element kind of t.
func (t Type) Scalar() ScalarKind {
	switch {
	case t == TypeBool:
		return ScalarBool
	case t >= TypeInt1 && t <= TypeInt4x4:
		return ScalarInt
	case t >= TypeFloat1 && t <= TypeFloat4x4:
		return ScalarFloat
	}
	return ScalarNone
}

// IsNumeric reports whether t is an int or float scalar, vector or matrix.
func (t Type) IsNumeric() bool {
	k := t.Scalar()
	return k == ScalarInt || k == ScalarFloat
}

// IsFloat reports whether t has float elements.
func (t Type) IsFloat() bool { return t.Scalar() == ScalarFloat }

// IsInt reports whether t has int elements.
func (t Type) IsInt() bool { return t.Scalar() == ScalarInt }

// IsScalar reports whether t is bool, int1 or float1.
func (t Type) IsScalar() bool {
	return t == TypeBool || t == TypeInt1 || t == TypeFloat1
}

// IsVector reports whether t is a vector with two or more components.
func (t Type) IsVector() bool {
	return (t >= TypeInt2 && t <= TypeInt4) || (t >= TypeFloat2 && t <= TypeFloat4)
}

// IsMatrix reports whether t is a square matrix.
func (t Type) IsMatrix() bool {
	return (t >= TypeInt2x2 && t <= TypeInt4x4) || (t >= TypeFloat2x2 && t <= TypeFloat4x4)
}

// IsTexture reports whether t is a texture type.
func (t Type) IsTexture() bool {
	return t >= TypeTexture1D && t <= TypeTexture3D
}

// IsValue reports whether t can be held by a variable: any numeric or
// boolean type.
func (t Type) IsValue() bool {
	return t == TypeBool || t.IsNumeric()
}

// Size returns the vector width of t: 1 for scalars, N for vectors and the
// dimension N for NxN matrices. Textures return their dimensionality.
func (t Type) Size() int {
	switch {
	case t == TypeBool:
		return 1
	case t >= TypeInt1 && t <= TypeInt4:
		return int(t-TypeInt1) + 1
	case t >= TypeInt2x2 && t <= TypeInt4x4:
		return int(t-TypeInt2x2) + 2
	case t >= TypeFloat1 && t <= TypeFloat4:
		return int(t-TypeFloat1) + 1
	case t >= TypeFloat2x2 && t <= TypeFloat4x4:
		return int(t-TypeFloat2x2) + 2
	case t.IsTexture():
		return int(t-TypeTexture1D) + 1
	}
	return 0
}

// Components returns the total number of scalar components in t.
func (t Type) Components() int {
	if t.IsMatrix() {
		return t.Size() * t.Size()
	}
	if t.IsValue() {
		return t.Size()
	}
	return 0
}

// Vector returns the scalar or vector type of the given kind and width.
// It returns TypeVoid when no such type exists.
func Vector(kind ScalarKind, size int) Type {
	switch {
	case kind == ScalarBool && size == 1:
		return TypeBool
	case kind == ScalarInt && size >= 1 && size <= 4:
		return TypeInt1 + Type(size-1)
	case kind == ScalarFloat && size >= 1 && size <= 4:
		return TypeFloat1 + Type(size-1)
	}
	return TypeVoid
}

// Matrix returns the NxN matrix type of the given kind, or TypeVoid.
func Matrix(kind ScalarKind, size int) Type {
	if size < 2 || size > 4 {
		return TypeVoid
	}
	switch kind {
	case ScalarInt:
		return TypeInt2x2 + Type(size-2)
	case ScalarFloat:
		return TypeFloat2x2 + Type(size-2)
	}
	return TypeVoid
}

// WithScalar returns t with its element kind replaced, keeping the shape.
func (t Type) WithScalar(kind ScalarKind) Type {
	if t.IsMatrix() {
		return Matrix(kind, t.Size())
	}
	return Vector(kind, t.Size())
}

// Row returns the vector type produced by indexing t: the row vector of a
// matrix or the scalar of a vector.
func (t Type) Row() Type {
	switch {
	case t.IsMatrix():
		return Vector(t.Scalar(), t.Size())
	case t.IsVector():
		return Vector(t.Scalar(), 1)
	}
	return TypeVoid
}

// TextureCoord returns the coordinate type used to sample a texture.
func (t Type) TextureCoord() Type {
	if !t.IsTexture() {
		return TypeVoid
	}
	return Vector(ScalarFloat, t.Size())
}

// ParseType returns the type spelled by an MSL type keyword.
func ParseType(s string) (Type, bool) {
	switch s {
	case "int":
		return TypeInt1, true
	case "float":
		return TypeFloat1, true
	}
	for i, name := range typeNames {
		if name == s {
			return Type(i), true
		}
	}
	return TypeVoid, false
}
