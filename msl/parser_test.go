package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mslc/ir"
)

func parseSource(t *testing.T, src string, kind ir.ShaderKind) (*ShaderUnit, error) {
	t.Helper()
	tokens, err := Tokenize(src, 4096)
	require.NoError(t, err)
	return Parse(tokens, kind, 8192)
}

func mustParse(t *testing.T, src string, kind ir.ShaderKind) *ShaderUnit {
	t.Helper()
	unit, err := parseSource(t, src, kind)
	require.NoError(t, err)
	return unit
}

const texturedPixel = `
input {
    float4 position : 0;
    float2 uv : 1;
}
output {
    float4 color : 0;
}
texture2d albedo : 0;
cbuffer Material {
    float4 tint : 0;
    float strength : 1;
}

float4 shade(float4 c, float s) {
    return c * s;
}

void main() {
    float4 base = sample(albedo, input.uv);
    output.color = shade(base * tint, strength);
}
`

func TestParseInterface(t *testing.T) {
	unit := mustParse(t, texturedPixel, ir.KindPixel)

	assert.Equal(t, ir.KindPixel, unit.Kind)
	assert.Equal(t, uint8(ir.VersionMajor), unit.Major)
	assert.Equal(t, []ir.Variable{
		{Name: "position", Index: 0, Type: ir.TypeFloat4},
		{Name: "uv", Index: 1, Type: ir.TypeFloat2},
	}, unit.Interface.Inputs)
	assert.Equal(t, []ir.Variable{{Name: "color", Index: 0, Type: ir.TypeFloat4}}, unit.Interface.Outputs)
	assert.Equal(t, []ir.Variable{{Name: "albedo", Index: 0, Type: ir.TypeTexture2D}}, unit.Interface.Textures)
	require.Len(t, unit.Interface.ConstantBuffers, 1)
	cb := unit.Interface.ConstantBuffers[0]
	assert.Equal(t, "Material", cb.Name)
	assert.Equal(t, []ir.Variable{
		{Name: "tint", Index: 0, Type: ir.TypeFloat4},
		{Name: "strength", Index: 1, Type: ir.TypeFloat1},
	}, cb.Members)
}

func TestParseFunctions(t *testing.T) {
	unit := mustParse(t, texturedPixel, ir.KindPixel)

	require.Len(t, unit.Functions, 2)
	shade := unit.Functions[0]
	assert.Equal(t, "shade", shade.Name)
	assert.Equal(t, ir.TypeFloat4, shade.Return)
	assert.Equal(t, []ir.Type{ir.TypeFloat4, ir.TypeFloat1}, shade.Params)
	assert.Equal(t, []ir.Type{ir.TypeFloat4, ir.TypeFloat1}, shade.Locals)
	assert.False(t, shade.Entry)

	main := unit.Functions[1]
	assert.True(t, main.Entry)
	assert.Equal(t, 1, unit.Entry)
	assert.Equal(t, []ir.Type{ir.TypeFloat4}, main.Locals)

	body := unit.Nodes.Get(main.Body)
	require.Equal(t, NodeBlock, body.Kind)
	require.Len(t, body.Children, 2)

	local := unit.Nodes.Get(body.Children[0])
	assert.Equal(t, NodeLocal, local.Kind)
	assert.Equal(t, NodeSample, unit.Nodes.Get(local.Children[0]).Kind)

	assign := unit.Nodes.Get(body.Children[1])
	assert.Equal(t, NodeAssign, assign.Kind)
	assert.Equal(t, NodeOutput, unit.Nodes.Get(assign.Children[0]).Kind)
	call := unit.Nodes.Get(assign.Children[1])
	assert.Equal(t, NodeCall, call.Kind)
	assert.Equal(t, 0, call.Ref)
}

func TestParseImplicitPromotion(t *testing.T) {
	src := `
output { float4 color : 0; }
void main() {
    float x = 1;
    float3 v = float3(1, 2, 3) * 2;
    output.color = float4(v, x);
}
`
	unit := mustParse(t, src, ir.KindPixel)
	body := unit.Nodes.Get(unit.Functions[0].Body)

	x := unit.Nodes.Get(body.Children[0])
	conv := unit.Nodes.Get(x.Children[0])
	assert.Equal(t, NodeConvert, conv.Kind)
	assert.Equal(t, ir.TypeFloat1, conv.Type)
	assert.Equal(t, NodeIntLit, unit.Nodes.Get(conv.Children[0]).Kind)

	v := unit.Nodes.Get(body.Children[1])
	mul := unit.Nodes.Get(v.Children[0])
	assert.Equal(t, NodeBinary, mul.Kind)
	assert.Equal(t, ir.OpMul, mul.Op)
	assert.Equal(t, ir.TypeFloat3, mul.Type)
	assert.Equal(t, NodeConvert, unit.Nodes.Get(mul.Children[1]).Kind)
}

func TestParseControlFlow(t *testing.T) {
	src := `
output { float4 color : 0; }
void main() {
    float sum = 0.0;
    for (int i = 0; i < 4; i = i + 1) {
        if (i == 2) {
            continue;
        } else {
            sum = sum + 0.25;
        }
    }
    while (sum > 1.0) {
        sum = sum - 1.0;
        break;
    }
    if (sum < 0.0) discard;
    output.color = float4(sum);
}
`
	unit := mustParse(t, src, ir.KindPixel)
	body := unit.Nodes.Get(unit.Functions[0].Body)
	require.Len(t, body.Children, 5)

	loop := unit.Nodes.Get(body.Children[1])
	require.Equal(t, NodeFor, loop.Kind)
	require.Len(t, loop.Children, 4)
	assert.Equal(t, NodeLocal, unit.Nodes.Get(loop.Children[0]).Kind)
	assert.Equal(t, ir.TypeBool, unit.Nodes.Get(loop.Children[1]).Type)
	assert.Equal(t, NodeAssign, unit.Nodes.Get(loop.Children[2]).Kind)

	assert.Equal(t, NodeWhile, unit.Nodes.Get(body.Children[2]).Kind)

	ifNode := unit.Nodes.Get(body.Children[3])
	assert.Equal(t, NodeIf, ifNode.Kind)
	assert.Equal(t, NodeDiscard, unit.Nodes.Get(ifNode.Children[1]).Kind)
	assert.Equal(t, InvalidNode, ifNode.Children[2])

	assert.Equal(t, []ir.Type{ir.TypeFloat1, ir.TypeInt1}, unit.Functions[0].Locals)
}

func TestParseSwizzleAndIndex(t *testing.T) {
	src := `
input { float4x4 m : 1; float4 position : 0; }
output { float4 color : 0; }
void main() {
    float4 c = input.position.zyxw;
    c.rg = input.m[1].ba;
    float f = c[2] + input.m[0][3];
    output.color = c * f;
}
`
	unit := mustParse(t, src, ir.KindPixel)
	body := unit.Nodes.Get(unit.Functions[0].Body)

	c := unit.Nodes.Get(body.Children[0])
	sw := unit.Nodes.Get(c.Children[0])
	assert.Equal(t, NodeSwizzle, sw.Kind)
	assert.Equal(t, []uint8{2, 1, 0, 3}, sw.Swizzle)

	assign := unit.Nodes.Get(body.Children[1])
	target := unit.Nodes.Get(assign.Children[0])
	assert.Equal(t, []uint8{0, 1}, target.Swizzle)
	value := unit.Nodes.Get(assign.Children[1])
	assert.Equal(t, ir.TypeFloat2, value.Type)
	assert.Equal(t, NodeIndex, unit.Nodes.Get(value.Children[0]).Kind)
	assert.Equal(t, ir.TypeFloat4, unit.Nodes.Get(value.Children[0]).Type)
}

func TestParseIntrinsics(t *testing.T) {
	src := `
input { float3 normal : 1; float4 position : 0; }
output { float4 color : 0; }
cbuffer Light { float3 dir : 0; float4x4 xf : 1; }
void main() {
    float d = saturate(dot(normalize(input.normal), dir));
    float3 r = lerp(float3(0.0), float3(1.0), d);
    float4 p = mul(xf, float4(r, 1));
    output.color = clamp(p, 0.0 * p, float4(1.0)) + float4(max(1, 2));
}
`
	unit := mustParse(t, src, ir.KindPixel)
	body := unit.Nodes.Get(unit.Functions[0].Body)

	d := unit.Nodes.Get(unit.Nodes.Get(body.Children[0]).Children[0])
	assert.Equal(t, NodeIntrinsic, d.Kind)
	assert.Equal(t, int(ir.IntrinsicSaturate), d.Ref)
	assert.Equal(t, ir.TypeFloat1, d.Type)

	p := unit.Nodes.Get(unit.Nodes.Get(body.Children[2]).Children[0])
	assert.Equal(t, int(ir.IntrinsicMul), p.Ref)
	assert.Equal(t, ir.TypeFloat4, p.Type)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		vertex bool
		src    string
		want   ir.ErrorKind
	}{
		{
			name: "missing main",
			src:  `output { float4 color : 0; } void helper() {}`,
			want: ir.ErrUndeclaredIdentifier,
		},
		{
			name: "main with params",
			src:  `void main(float x) {}`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "interface after function",
			src:  `void f() {} input { float4 p : 0; } void main() {}`,
			want: ir.ErrUnexpectedToken,
		},
		{
			name: "duplicate input index",
			src:  `input { float4 position : 0; float2 uv : 0; } void main() {}`,
			want: ir.ErrRedeclaration,
		},
		{
			name: "duplicate global name",
			src:  `texture2d t : 0; cbuffer B { float t : 0; } void main() {}`,
			want: ir.ErrRedeclaration,
		},
		{
			name: "duplicate uniform index across buffers",
			src:  `cbuffer A { float a : 3; } cbuffer B { float b : 3; } void main() {}`,
			want: ir.ErrRedeclaration,
		},
		{
			name:   "vertex position not float4",
			vertex: true,
			src:    `output { float3 position : 0; } void main() {}`,
			want:   ir.ErrTypeMismatch,
		},
		{
			name: "pixel position not float4",
			src:  `input { float2 position : 0; } void main() {}`,
			want: ir.ErrTypeMismatch,
		},
		{
			name:   "discard in vertex shader",
			vertex: true,
			src:    `void main() { discard; }`,
			want:   ir.ErrUnexpectedToken,
		},
		{
			name: "break outside loop",
			src:  `void main() { break; }`,
			want: ir.ErrUnexpectedToken,
		},
		{
			name: "assign to input",
			src:  `input { float4 p : 0; } void main() { input.p = float4(0.0); }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "assign to uniform",
			src:  `cbuffer B { float k : 0; } void main() { k = 1.0; }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "float modulo",
			src:  `void main() { float x = 1.0 % 2.0; }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "float to int narrowing",
			src:  `void main() { int x = 1.5; }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "vector comparison",
			src:  `void main() { bool b = float2(1.0) < float2(2.0); }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "mixed swizzle sets",
			src:  `void main() { float4 v = float4(1.0); float2 w = v.xg; }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "repeated write swizzle",
			src:  `void main() { float4 v = float4(1.0); v.xx = float2(1.0); }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "swizzle out of range",
			src:  `void main() { float2 v = float2(1.0); float z = v.z; }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "non-bool condition",
			src:  `void main() { if (1) { } }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "recursion",
			src:  `float f(float x) { return f(x); } void main() {}`,
			want: ir.ErrUndeclaredIdentifier,
		},
		{
			name: "wrong constructor arity",
			src:  `void main() { float3 v = float3(1.0, 2.0); }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "local redeclared",
			src:  `void main() { float x = 1.0; float x = 2.0; }`,
			want: ir.ErrRedeclaration,
		},
		{
			name: "unterminated block",
			src:  `void main() { float x = 1.0;`,
			want: ir.ErrUnexpectedEOF,
		},
		{
			name: "texture used as value",
			src:  `texture2d t : 0; void main() { float4 c = t; }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "sample coordinate shape",
			src:  `texture3d t : 0; void main() { float4 c = sample(t, float2(0.0)); }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "return value from void",
			src:  `void main() { return 1; }`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "missing return",
			src:  `float f() { } void main() {}`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "if without else returns",
			src:  `float f(float x) { if (x > 0.0) { return x; } } void main() {}`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "return only inside loop",
			src:  `float f() { while (true) { return 1.0; } } void main() {}`,
			want: ir.ErrTypeMismatch,
		},
		{
			name: "missing semicolon",
			src:  `void main() { float x = 1.0 }`,
			want: ir.ErrUnexpectedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind := ir.KindPixel
			if tt.vertex {
				kind = ir.KindVertex
			}
			_, err := parseSource(t, tt.src, kind)
			require.Error(t, err)
			assert.Equal(t, tt.want, ir.KindOf(err), "error: %v", err)
		})
	}
}

func TestParseReturnPaths(t *testing.T) {
	accepted := []string{
		`float f() { return 1.0; }`,
		`float f(float x) { if (x > 0.0) { return x; } else { return 0.0; } }`,
		`float f(float x) { if (x > 0.0) return x; else if (x < 0.0) return -x; else return 0.0; }`,
		`float f(float x) { if (x > 0.0) { return x; } return 0.0; }`,
		`float f() { { return 1.0; } }`,
		`float f() { for (int i = 0; i < 2; i = i + 1) { return 2.0; } return 1.0; }`,
	}
	for _, src := range accepted {
		_, err := parseSource(t, src+` void main() {}`, ir.KindPixel)
		assert.NoError(t, err, src)
	}

	_, err := parseSource(t, "void main() {}\nint   count(int n) {\n    n = n + 1;\n}\n", ir.KindPixel)
	var e *ir.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ir.ErrTypeMismatch, e.Kind)
	assert.Equal(t, 2, e.Line)
	assert.Equal(t, 7, e.Column)
	assert.Equal(t, "count", e.Fragment)
}

func TestParseUndeclaredIdentifierPosition(t *testing.T) {
	src := "output { float4 color : 0; }\nvoid main() {\n    output.color = foo;\n}\n"
	_, err := parseSource(t, src, ir.KindPixel)
	require.Error(t, err)

	var e *ir.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ir.PhaseParse, e.Phase)
	assert.Equal(t, ir.ErrUndeclaredIdentifier, e.Kind)
	assert.Equal(t, 3, e.Line)
	assert.Equal(t, 20, e.Column)
	assert.Equal(t, "foo", e.Fragment)
	assert.Contains(t, e.Error(), "foo")
}

func TestParseNodeOverflow(t *testing.T) {
	tokens, err := Tokenize(`void main() { float x = 1.0 + 2.0 + 3.0; }`, 64)
	require.NoError(t, err)

	_, err = Parse(tokens, ir.KindPixel, 3)
	assert.Equal(t, ir.ErrNodeOverflow, ir.KindOf(err))
}

func TestParseInvalidArguments(t *testing.T) {
	_, err := Parse(nil, ir.KindPixel, 16)
	assert.Equal(t, ir.ErrInvalidArguments, ir.KindOf(err))

	tokens, err := Tokenize(`void main() {}`, 16)
	require.NoError(t, err)
	_, err = Parse(tokens, ir.KindPixel, 0)
	assert.Equal(t, ir.ErrInvalidArguments, ir.KindOf(err))
}
