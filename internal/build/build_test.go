package build

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mslc/internal/config"
	"github.com/gogpu/mslc/ir"
)

const solidPixel = `
output { float4 color : 0; }
void main() { output.color = float4(1.0, 0.5, 0.0, 1.0); }
`

const passVertex = `
input { float3 pos : 0; }
output { float4 position : 0; }
void main() { output.position = float4(input.pos, 1.0); }
`

func memFS(t *testing.T, files map[string]string) hackpadfs.FS {
	t.Helper()
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	for name, content := range files {
		if dir := filepath.ToSlash(filepath.Dir(name)); dir != "." {
			require.NoError(t, hackpadfs.MkdirAll(fsys, dir, 0o755))
		}
		require.NoError(t, hackpadfs.WriteFullFile(fsys, name, []byte(content), 0o644))
	}
	return fsys
}

func readFile(t *testing.T, fsys hackpadfs.FS, name string) []byte {
	t.Helper()
	data, err := fs.ReadFile(fsys, name)
	require.NoError(t, err)
	return data
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name string
		want ir.ShaderKind
		ok   bool
	}{
		{"quad.vs.msl", ir.KindVertex, true},
		{"dir/quad.vert.msl", ir.KindVertex, true},
		{"quad.ps.msl", ir.KindPixel, true},
		{"QUAD.FRAG.MSL", ir.KindPixel, true},
		{"quad.msl", 0, false},
		{"quad.vs", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InferKind(tt.name)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if got != tt.want {
				t.Errorf("InferKind(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"shaders/solid.ps.msl": solidPixel,
		"shaders/pass.vs.msl":  passVertex,
		"shaders/broken.ps.msl": `void main() { x = 1.0; }`,
		"shaders/plain.msl":    solidPixel,
	})
	b, err := New(fsys, Options{})
	require.NoError(t, err)

	reports, err := b.Build(context.Background(), []string{
		"shaders/solid.ps.msl",
		"shaders/pass.vs.msl",
		"shaders/broken.ps.msl",
		"shaders/plain.msl",
		"shaders/missing.ps.msl",
	})
	require.ErrorIs(t, err, ErrFailed)
	require.Len(t, reports, 5)
	assert.Equal(t, 2, b.Built())

	solid := reports[0]
	require.NoError(t, solid.Err)
	assert.Equal(t, ir.KindPixel, solid.Kind)
	var paths []string
	for _, a := range solid.Artifacts {
		paths = append(paths, a.Path)
		assert.Positive(t, a.Size)
	}
	assert.Equal(t, []string{
		"shaders/solid.ps.bc",
		"shaders/solid.ps.md",
		"shaders/solid.ps.glsl",
		"shaders/solid.ps.hlsl",
	}, paths)
	assert.True(t, bytes.HasPrefix(readFile(t, fsys, "shaders/solid.ps.bc"), []byte("MSBC")))
	assert.True(t, bytes.HasPrefix(readFile(t, fsys, "shaders/solid.ps.md"), []byte("MSMD")))
	assert.Contains(t, string(readFile(t, fsys, "shaders/solid.ps.glsl")), "out_color = vec4(1.0, 0.5, 0.0, 1.0);")
	assert.Contains(t, string(readFile(t, fsys, "shaders/solid.ps.hlsl")), "PixelOutput main()")

	assert.Equal(t, ir.KindVertex, reports[1].Kind)
	assert.NoError(t, reports[1].Err)

	assert.Equal(t, ir.ErrUndeclaredIdentifier, ir.KindOf(reports[2].Err))
	assert.Equal(t, `void main() { x = 1.0; }`, reports[2].Source)
	assert.Error(t, reports[3].Err)
	assert.ErrorIs(t, reports[4].Err, fs.ErrNotExist)

	_, err = fs.Stat(fsys, "shaders/broken.ps.bc")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestBuildOutDirAndTargets(t *testing.T) {
	fsys := memFS(t, map[string]string{"src/solid.ps.msl": solidPixel})
	cfg := config.Default()
	cfg.OutDir = "out/gl"
	cfg.Targets = []string{config.TargetGLSL}
	cfg.GLSLVersion = "300 es"

	b, err := New(fsys, Options{Config: cfg})
	require.NoError(t, err)

	rep := b.BuildFile("src/solid.ps.msl")
	require.NoError(t, rep.Err)
	require.Len(t, rep.Artifacts, 1)
	assert.Equal(t, "out/gl/solid.ps.glsl", rep.Artifacts[0].Path)
	assert.Contains(t, string(readFile(t, fsys, "out/gl/solid.ps.glsl")), "#version 300 es")

	_, err = fs.Stat(fsys, "out/gl/solid.ps.bc")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestBuildStageOverride(t *testing.T) {
	fsys := memFS(t, map[string]string{"plain.msl": passVertex})
	b, err := New(fsys, Options{Stage: "vertex"})
	require.NoError(t, err)

	rep := b.BuildFile("plain.msl")
	require.NoError(t, rep.Err)
	assert.Equal(t, ir.KindVertex, rep.Kind)
	assert.Contains(t, string(readFile(t, fsys, "plain.glsl")), "gl_Position")

	_, err = New(fsys, Options{Stage: "compute"})
	assert.Error(t, err)
}

func TestBuildBackendFailureWritesNothing(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"flag.ps.msl": `input { bool flag : 1; } output { float4 color : 0; } void main() { output.color = float4(1.0); }`,
	})
	b, err := New(fsys, Options{})
	require.NoError(t, err)

	rep := b.BuildFile("flag.ps.msl")
	assert.Equal(t, ir.ErrUnsupportedType, ir.KindOf(rep.Err))
	_, err = fs.Stat(fsys, "flag.ps.bc")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestBuildParallel(t *testing.T) {
	files := make(map[string]string)
	var paths []string
	for i := range 12 {
		name := fmt.Sprintf("s%02d.ps.msl", i)
		files[name] = solidPixel
		paths = append(paths, name)
	}
	fsys := memFS(t, files)
	cfg := config.Default()
	cfg.Jobs = 3
	cfg.Targets = []string{config.TargetBytecode}

	b, err := New(fsys, Options{Config: cfg})
	require.NoError(t, err)
	reports, err := b.Build(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, len(paths), b.Built())

	want := readFile(t, fsys, "s00.ps.bc")
	for i, rep := range reports {
		assert.Equal(t, paths[i], rep.Path)
		assert.Equal(t, want, readFile(t, fsys, rep.Artifacts[0].Path))
	}
}

func TestBuildCanceled(t *testing.T) {
	fsys := memFS(t, map[string]string{"solid.ps.msl": solidPixel})
	b, err := New(fsys, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports, err := b.Build(ctx, []string{"solid.ps.msl"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, reports[0].Err, context.Canceled)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "solid.ps.msl")
	require.NoError(t, os.WriteFile(src, []byte(solidPixel), 0o644))

	fsys, err := OSFS(dir)
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Targets = []string{config.TargetHLSL}
	b, err := New(fsys, Options{Config: cfg})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reports := make(chan Report, 16)
	done := make(chan error, 1)
	go func() {
		done <- b.Watch(ctx, dir, []string{"solid.ps.msl"}, func(r Report) {
			select {
			case reports <- r:
			default:
			}
		})
	}()

	// Rewrite until the watcher, which starts asynchronously, sees a change.
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	var rep Report
wait:
	for {
		select {
		case rep = <-reports:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(src, []byte(solidPixel), 0o644))
		case <-deadline:
			t.Fatal("no rebuild after writing the source")
		}
	}

	require.NoError(t, rep.Err)
	assert.Equal(t, "solid.ps.msl", rep.Path)
	hlslOut, err := os.ReadFile(filepath.Join(dir, "solid.ps.hlsl"))
	require.NoError(t, err)
	assert.Contains(t, string(hlslOut), "stage_output.color")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
