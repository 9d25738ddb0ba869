package mslc

import (
	"runtime"
	"testing"

	"github.com/gogpu/mslc/glsl"
	"github.com/gogpu/mslc/hlsl"
	"github.com/gogpu/mslc/ir"
)

// ---------------------------------------------------------------------------
// Test shader sources at different complexity levels
// ---------------------------------------------------------------------------

// shaderSmallPixel is a minimal pixel shader.
const shaderSmallPixel = solidPixel

// shaderMediumPixel exercises helpers, control flow and sampling.
const shaderMediumPixel = `
input { float4 position : 0; float2 uv : 1; }
output { float4 color : 0; }
texture2d albedo : 0;
cbuffer Light { float3 dir : 0; float4 tint : 1; float steps : 2; }

float shade(float3 n, float3 l) {
    return saturate(dot(normalize(n), normalize(l)));
}

void main() {
    float4 base = sample(albedo, input.uv);
    float acc = 0.0;
    for (int i = 0; i < 4; i = i + 1) {
        acc = acc + shade(base.xyz, dir) / steps;
    }
    if (acc < 0.1) {
        discard;
    }
    output.color = lerp(base, tint, acc);
}
`

// ---------------------------------------------------------------------------
// Front end benchmarks
// ---------------------------------------------------------------------------

func BenchmarkCompile(b *testing.B) {
	shaders := []struct {
		name string
		src  string
	}{
		{"Small", shaderSmallPixel},
		{"Medium", shaderMediumPixel},
	}

	for _, s := range shaders {
		b.Run(s.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(s.src)))
			b.ResetTimer()

			var result *Result
			for i := 0; i < b.N; i++ {
				var err error
				result, err = Compile(s.src, ir.KindPixel)
				if err != nil {
					b.Fatalf("compile failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// BenchmarkCompileInto measures compilation into reused buffers.
func BenchmarkCompileInto(b *testing.B) {
	c := NewCompiler(DefaultOptions())
	bc := make([]byte, 1<<14)
	md := make([]byte, 1<<12)

	b.ReportAllocs()
	b.SetBytes(int64(len(shaderMediumPixel)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, err := c.CompileInto(shaderMediumPixel, ir.KindPixel, bc, md); err != nil {
			b.Fatalf("compile failed: %v", err)
		}
	}
}

// ---------------------------------------------------------------------------
// Cross-backend comparison: same bytecode assembled to both targets
// ---------------------------------------------------------------------------

func BenchmarkAssembleAllBackends(b *testing.B) {
	res, err := Compile(shaderMediumPixel, ir.KindPixel)
	if err != nil {
		b.Fatalf("compile failed: %v", err)
	}

	b.Run("GLSL", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(res.Bytecode)))
		b.ResetTimer()

		var result string
		for i := 0; i < b.N; i++ {
			result, err = res.GLSL(glsl.DefaultOptions())
			if err != nil {
				b.Fatalf("glsl assemble failed: %v", err)
			}
		}
		runtime.KeepAlive(result)
	})

	b.Run("HLSL", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(res.Bytecode)))
		b.ResetTimer()

		var result string
		for i := 0; i < b.N; i++ {
			result, err = res.HLSL(hlsl.DefaultOptions())
			if err != nil {
				b.Fatalf("hlsl assemble failed: %v", err)
			}
		}
		runtime.KeepAlive(result)
	})
}
