// Package build compiles MSL sources into artifact files.
//
// Sources are read from and artifacts written to a hackpadfs file system,
// so the same builder serves the host disk and in-memory trees.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/mslc"
	"github.com/gogpu/mslc/glsl"
	"github.com/gogpu/mslc/hlsl"
	"github.com/gogpu/mslc/internal/config"
	"github.com/gogpu/mslc/ir"
)

// SourceExt is the extension of MSL source files.
const SourceExt = ".msl"

// ErrFailed is returned by Build when at least one unit failed.
var ErrFailed = errors.New("build failed")

var stageSuffixes = []struct {
	suffix string
	kind   ir.ShaderKind
}{
	{".vs" + SourceExt, ir.KindVertex},
	{".vert" + SourceExt, ir.KindVertex},
	{".ps" + SourceExt, ir.KindPixel},
	{".frag" + SourceExt, ir.KindPixel},
}

// InferKind returns the shader kind named by the file suffix.
func InferKind(name string) (ir.ShaderKind, error) {
	lower := strings.ToLower(name)
	for _, s := range stageSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.kind, nil
		}
	}
	return 0, fmt.Errorf("%s: cannot infer stage, use .vs.msl or .ps.msl or pass a stage", name)
}

// OSFS returns the host file system rooted at dir.
func OSFS(dir string) (hackpadfs.FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	fsys := osfs.NewFS()
	root, err := fsys.FromOSPath(abs)
	if err != nil {
		return nil, err
	}
	return fsys.Sub(root)
}

// Artifact is one written output file.
type Artifact struct {
	Target string
	Path   string
	Size   int
}

// Report is the outcome of building one source.
type Report struct {
	Path      string
	Kind      ir.ShaderKind
	Source    string
	Artifacts []Artifact
	Err       error
}

// Options configures a Builder.
type Options struct {
	// Config supplies targets, output directory, limits and backend
	// options. Nil uses config.Default.
	Config *config.Config

	// Stage forces the shader kind of every source. Empty infers it from
	// the file name.
	Stage string

	// Logger receives per-unit progress.
	Logger *slog.Logger
}

// Builder compiles sources from a file system.
type Builder struct {
	fs       hackpadfs.FS
	cfg      *config.Config
	compiler *mslc.Compiler
	glsl     glsl.Options
	hlsl     hlsl.Options
	stage    *ir.ShaderKind
	log      *slog.Logger

	built atomic.Int64
}

// New returns a builder over fsys.
func New(fsys hackpadfs.FS, opts Options) (*Builder, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	b := &Builder{
		fs:       fsys,
		cfg:      cfg,
		compiler: mslc.NewCompiler(cfg.Compiler(log)),
		log:      log,
	}
	var err error
	if b.glsl, err = cfg.GLSL(); err != nil {
		return nil, err
	}
	if b.hlsl, err = cfg.HLSL(); err != nil {
		return nil, err
	}
	if opts.Stage != "" {
		kind, err := ir.ParseShaderKind(opts.Stage)
		if err != nil {
			return nil, err
		}
		b.stage = &kind
	}
	return b, nil
}

// Built returns the number of units compiled successfully so far.
func (b *Builder) Built() int {
	return int(b.built.Load())
}

// Build compiles every path concurrently, bounded by the configured job
// count. A failing unit does not stop the others; the reports keep input
// order and the error is ErrFailed if any unit failed.
func (b *Builder) Build(ctx context.Context, paths []string) ([]Report, error) {
	reports := make([]Report, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	jobs := b.cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(jobs)

	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				reports[i] = Report{Path: p, Err: err}
				return err
			}
			reports[i] = b.BuildFile(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return reports, fmt.Errorf("%w: %d of %d units", ErrFailed, failed, len(reports))
	}
	return reports, nil
}

// BuildFile compiles one source and writes its artifacts.
func (b *Builder) BuildFile(name string) Report {
	name = path.Clean(filepath.ToSlash(name))
	rep := Report{Path: name}
	log := b.log.With("file", name)

	if b.stage != nil {
		rep.Kind = *b.stage
	} else {
		kind, err := InferKind(name)
		if err != nil {
			rep.Err = err
			return rep
		}
		rep.Kind = kind
	}

	data, err := fs.ReadFile(b.fs, name)
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Source = string(data)

	res, err := b.compiler.Compile(rep.Source, rep.Kind)
	if err != nil {
		rep.Err = err
		log.Debug("compile failed", "error", err)
		return rep
	}

	outputs, err := b.assemble(res)
	if err != nil {
		rep.Err = err
		return rep
	}

	dir := b.cfg.OutDir
	if dir == "" {
		dir = path.Dir(name)
	}
	dir = path.Clean(filepath.ToSlash(dir))
	if dir != "." {
		if err := hackpadfs.MkdirAll(b.fs, dir, 0o755); err != nil {
			rep.Err = fmt.Errorf("create %s: %w", dir, err)
			return rep
		}
	}

	base := strings.TrimSuffix(path.Base(name), SourceExt)
	for _, out := range outputs {
		p := path.Join(dir, base+"."+out.target)
		if err := hackpadfs.WriteFullFile(b.fs, p, out.data, 0o644); err != nil {
			rep.Err = fmt.Errorf("write %s: %w", p, err)
			return rep
		}
		rep.Artifacts = append(rep.Artifacts, Artifact{Target: out.target, Path: p, Size: len(out.data)})
	}

	b.built.Add(1)
	log.Info("built", "kind", rep.Kind.String(), "artifacts", len(rep.Artifacts))
	return rep
}

type output struct {
	target string
	data   []byte
}

func (b *Builder) assemble(res *mslc.Result) ([]output, error) {
	var outs []output
	for _, target := range config.AllTargets {
		if !b.cfg.Wants(target) {
			continue
		}
		switch target {
		case config.TargetBytecode:
			outs = append(outs, output{target, res.Bytecode})
		case config.TargetMetadata:
			outs = append(outs, output{target, res.Metadata})
		case config.TargetGLSL:
			src, err := res.GLSL(b.glsl)
			if err != nil {
				return nil, err
			}
			outs = append(outs, output{target, []byte(src)})
		case config.TargetHLSL:
			src, err := res.HLSL(b.hlsl)
			if err != nil {
				return nil, err
			}
			outs = append(outs, output{target, []byte(src)})
		}
	}
	return outs, nil
}
