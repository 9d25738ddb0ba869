package msl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mslc/ir"
)

func TestFormatWithContext(t *testing.T) {
	src := "output { float4 color : 0; }\nvoid main() {\n    output.color = foo;\n}\n"
	_, err := parseSource(t, src, ir.KindPixel)
	require.Error(t, err)

	formatted := FormatWithContext(err, src)
	lines := strings.Split(formatted, "\n")
	require.GreaterOrEqual(t, len(lines), 5)

	assert.Equal(t, "error: parse undeclared-identifier: undeclared identifier foo", lines[0])
	assert.Equal(t, "  --> line 3:20", lines[1])
	assert.Equal(t, "  3|     output.color = foo;", lines[3])
	assert.Equal(t, "   | "+strings.Repeat(" ", 19)+"^", lines[4])
}

func TestFormatWithContextWithoutPosition(t *testing.T) {
	err := ir.Errorf(ir.PhaseCodec, ir.ErrBadMagic, "bad magic")
	assert.Equal(t, err.Error(), FormatWithContext(err, "anything"))
}
