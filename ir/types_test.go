package ir

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTypeShapes(t *testing.T) {
	tests := []struct {
		typ        Type
		scalar     ScalarKind
		size       int
		components int
		vector     bool
		matrix     bool
	}{
		{TypeBool, ScalarBool, 1, 1, false, false},
		{TypeInt1, ScalarInt, 1, 1, false, false},
		{TypeInt3, ScalarInt, 3, 3, true, false},
		{TypeInt2x2, ScalarInt, 2, 4, false, true},
		{TypeFloat1, ScalarFloat, 1, 1, false, false},
		{TypeFloat4, ScalarFloat, 4, 4, true, false},
		{TypeFloat3x3, ScalarFloat, 3, 9, false, true},
		{TypeFloat4x4, ScalarFloat, 4, 16, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.scalar, tt.typ.Scalar())
			assert.Equal(t, tt.size, tt.typ.Size())
			assert.Equal(t, tt.components, tt.typ.Components())
			assert.Equal(t, tt.vector, tt.typ.IsVector())
			assert.Equal(t, tt.matrix, tt.typ.IsMatrix())
		})
	}
}

func TestTypeConstructors(t *testing.T) {
	assert.Equal(t, TypeFloat3, Vector(ScalarFloat, 3))
	assert.Equal(t, TypeInt1, Vector(ScalarInt, 1))
	assert.Equal(t, TypeVoid, Vector(ScalarBool, 2))
	assert.Equal(t, TypeInt4x4, Matrix(ScalarInt, 4))
	assert.Equal(t, TypeVoid, Matrix(ScalarFloat, 1))

	assert.Equal(t, TypeFloat2x2, TypeInt2x2.WithScalar(ScalarFloat))
	assert.Equal(t, TypeFloat3, TypeInt3.WithScalar(ScalarFloat))

	assert.Equal(t, TypeFloat3, TypeFloat3x3.Row())
	assert.Equal(t, TypeInt1, TypeInt4.Row())
	assert.Equal(t, TypeVoid, TypeFloat1.Row())

	assert.Equal(t, TypeFloat2, TypeTexture2D.TextureCoord())
	assert.Equal(t, TypeFloat1, TypeTexture1D.TextureCoord())
	assert.Equal(t, TypeVoid, TypeFloat2.TextureCoord())
}

func TestParseType(t *testing.T) {
	for i := Type(0); i < typeCount; i++ {
		got, ok := ParseType(i.String())
		assert.True(t, ok, i.String())
		assert.Equal(t, i, got)
	}

	got, ok := ParseType("int")
	assert.True(t, ok)
	assert.Equal(t, TypeInt1, got)

	got, ok = ParseType("float")
	assert.True(t, ok)
	assert.Equal(t, TypeFloat1, got)

	_, ok = ParseType("double")
	assert.False(t, ok)
	assert.Equal(t, "invalid", Type(99).String())
}

func TestErrorFormatting(t *testing.T) {
	e := Errorf(PhaseLex, ErrUnknownToken, "unknown token").At(3, 7, "@foo\nbar")
	assert.Equal(t, `lex unknown-token at 3:7: unknown token near "@foo"`, e.Error())
	assert.Equal(t, ErrUnknownToken, KindOf(e))
	assert.Equal(t, ErrUnknownToken, KindOf(fmt.Errorf("wrapped: %w", e)))
	assert.Equal(t, ErrNone, KindOf(errors.New("plain")))
	assert.True(t, errors.Is(e, &Error{Kind: ErrUnknownToken}))
	assert.False(t, errors.Is(e, &Error{Kind: ErrTypeMismatch}))
}

func TestErrorBounded(t *testing.T) {
	long := strings.Repeat("x", 1000)
	e := Errorf(PhaseParse, ErrTypeMismatch, "%s", long).At(1, 1, long)
	assert.LessOrEqual(t, len(e.Error()), MaxMessageLength)
	assert.LessOrEqual(t, len(e.Fragment), MaxFragmentLength)
}

func TestErrorBoundedKeepsRunes(t *testing.T) {
	wide := strings.Repeat("é", 200)
	e := Errorf(PhaseLex, ErrUnknownToken, "%s", wide).At(1, 1, wide)
	assert.Equal(t, strings.Repeat("é", 14)+"...", e.Fragment)
	assert.True(t, utf8.ValidString(e.Message))
	assert.True(t, utf8.ValidString(e.Error()))
	assert.LessOrEqual(t, len(e.Message), MaxMessageLength)
}

func TestParseShaderKind(t *testing.T) {
	k, err := ParseShaderKind("ps")
	assert.NoError(t, err)
	assert.Equal(t, KindPixel, k)

	k, err = ParseShaderKind("vertex")
	assert.NoError(t, err)
	assert.Equal(t, KindVertex, k)

	_, err = ParseShaderKind("compute")
	assert.Error(t, err)
}
