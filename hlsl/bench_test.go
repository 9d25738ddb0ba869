package hlsl

import (
	"runtime"
	"testing"

	"github.com/gogpu/mslc/ir"
)

// ---------------------------------------------------------------------------
// Test shader sources for HLSL backend benchmarks
// ---------------------------------------------------------------------------

const hlslBenchVertex = `
input { float3 pos : 0; float3 normal : 1; float2 uv : 2; }
output { float4 position : 0; float3 normal : 1; float2 uv : 2; }
cbuffer Camera { float4x4 view_proj : 0; float4x4 model : 1; }
void main() {
    float4 world = mul(model, float4(input.pos, 1.0));
    output.position = mul(view_proj, world);
    output.normal = normalize(mul(model, float4(input.normal, 0.0)).xyz);
    output.uv = input.uv;
}
`

var hlslBenchShaders = []struct {
	name   string
	source string
	kind   ir.ShaderKind
}{
	{"vertex", hlslBenchVertex, ir.KindVertex},
	{"pixel", texturedPixel, ir.KindPixel},
}

// BenchmarkHLSLAssemble benchmarks HLSL generation (bytecode to string).
func BenchmarkHLSLAssemble(b *testing.B) {
	for _, bc := range hlslBenchShaders {
		b.Run(bc.name, func(b *testing.B) {
			code, md := compileMSL(b, bc.source, bc.kind)
			opts := DefaultOptions()

			b.ReportAllocs()
			b.SetBytes(int64(len(code)))
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, err = Assemble(code, md, opts)
				if err != nil {
					b.Fatalf("hlsl assemble failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}
