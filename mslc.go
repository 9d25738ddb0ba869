// Package mslc provides a Pure Go compiler for MSL, a small HLSL-flavoured
// shading language.
//
// mslc compiles MSL source to a compact stack bytecode plus an interface
// metadata block, and assembles that pair into target source:
//   - GLSL: OpenGL Shading Language for OpenGL 3.3+, ES 3.0+
//   - HLSL: High-Level Shading Language for Direct3D 11/12
//
// The package provides a simple, high-level API as well as access to the
// individual compilation stages.
//
// Example usage:
//
//	source := `
//	output { float4 color : 0; }
//	void main() { output.color = float4(1.0, 0.0, 0.0, 1.0); }
//	`
//	res, err := mslc.Compile(source, ir.KindPixel)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	glslCode, err := mslc.AssembleGLSL(res.Bytecode, res.Metadata)
//
// Every error returned by the pipeline is an *ir.Error; use KindOf to
// classify it.
package mslc

import (
	"log/slog"

	"github.com/gogpu/mslc/bytecode"
	"github.com/gogpu/mslc/glsl"
	"github.com/gogpu/mslc/hlsl"
	"github.com/gogpu/mslc/ir"
	"github.com/gogpu/mslc/msl"
)

// Default pipeline limits.
const (
	DefaultMaxTokens       = 1 << 16
	DefaultMaxNodes        = 1 << 16
	DefaultMaxBytecodeSize = 1 << 20
	DefaultMaxMetadataSize = 1 << 16
)

// Options configures compilation.
type Options struct {
	// MaxTokens is the token buffer capacity.
	MaxTokens int

	// MaxNodes is the AST arena capacity.
	MaxNodes int

	// MaxBytecodeSize and MaxMetadataSize size the output buffers
	// allocated by Compile. CompileInto uses the caller's buffers.
	MaxBytecodeSize int
	MaxMetadataSize int

	// Logger receives pipeline state transitions at debug level.
	// Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		MaxTokens:       DefaultMaxTokens,
		MaxNodes:        DefaultMaxNodes,
		MaxBytecodeSize: DefaultMaxBytecodeSize,
		MaxMetadataSize: DefaultMaxMetadataSize,
	}
}

// Result is a compiled shader.
type Result struct {
	Kind     ir.ShaderKind
	Bytecode []byte
	Metadata []byte
}

// GLSL assembles the result into GLSL source.
func (r *Result) GLSL(opts glsl.Options) (string, error) {
	return glsl.Assemble(r.Bytecode, r.Metadata, opts)
}

// HLSL assembles the result into HLSL source.
func (r *Result) HLSL(opts hlsl.Options) (string, error) {
	return hlsl.Assemble(r.Bytecode, r.Metadata, opts)
}

// Compiler holds compilation options. It keeps no per-compilation state,
// so one Compiler may serve concurrent compilations.
type Compiler struct {
	opts Options
	log  *slog.Logger
}

// NewCompiler returns a compiler. Zero limits take their defaults.
func NewCompiler(opts Options) *Compiler {
	def := DefaultOptions()
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = def.MaxNodes
	}
	if opts.MaxBytecodeSize <= 0 {
		opts.MaxBytecodeSize = def.MaxBytecodeSize
	}
	if opts.MaxMetadataSize <= 0 {
		opts.MaxMetadataSize = def.MaxMetadataSize
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Compiler{opts: opts, log: log}
}

// Options returns the effective options.
func (c *Compiler) Options() Options {
	return c.opts
}

// Compile compiles source into freshly allocated buffers sized by the
// compiler's limits.
func (c *Compiler) Compile(source string, kind ir.ShaderKind) (*Result, error) {
	bc := make([]byte, c.opts.MaxBytecodeSize)
	md := make([]byte, c.opts.MaxMetadataSize)
	n, m, err := c.CompileInto(source, kind, bc, md)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: kind, Bytecode: bc[:n:n], Metadata: md[:m:m]}, nil
}

// CompileInto compiles source into caller-provided buffers and returns
// the number of bytes written to each. On failure both counts are zero
// and the buffer contents are unspecified.
func (c *Compiler) CompileInto(source string, kind ir.ShaderKind, bc, md []byte) (int, int, error) {
	inv := c.begin(kind, len(source))

	inv.enter(StateLexing)
	tokens, err := msl.Tokenize(source, c.opts.MaxTokens)
	if err != nil {
		return 0, 0, inv.fail(err)
	}

	inv.enter(StateParsing, "tokens", len(tokens))
	unit, err := msl.Parse(tokens, kind, c.opts.MaxNodes)
	if err != nil {
		return 0, 0, inv.fail(err)
	}

	inv.enter(StateEmitting, "nodes", unit.Nodes.Len(), "functions", len(unit.Functions))
	n, m, err := bytecode.Emit(unit, bc, md)
	if err != nil {
		return 0, 0, inv.fail(err)
	}

	inv.enter(StateDone, "bytecode", n, "metadata", m)
	return n, m, nil
}

var defaultCompiler = NewCompiler(DefaultOptions())

// Compile compiles source with default options.
func Compile(source string, kind ir.ShaderKind) (*Result, error) {
	return defaultCompiler.Compile(source, kind)
}

// Tokenize runs the lexer with the default token capacity.
func Tokenize(source string) ([]msl.Token, error) {
	return msl.Tokenize(source, DefaultMaxTokens)
}

// Parse builds a shader unit from tokens with the default node capacity.
func Parse(tokens []msl.Token, kind ir.ShaderKind) (*msl.ShaderUnit, error) {
	return msl.Parse(tokens, kind, DefaultMaxNodes)
}

// Emit writes the bytecode and metadata of unit into bc and md.
func Emit(unit *msl.ShaderUnit, bc, md []byte) (int, int, error) {
	return bytecode.Emit(unit, bc, md)
}

// AssembleGLSL assembles bytecode and metadata into GLSL with default
// options.
func AssembleGLSL(bc, md []byte) (string, error) {
	return glsl.Assemble(bc, md, glsl.DefaultOptions())
}

// AssembleHLSL assembles bytecode and metadata into HLSL with default
// options.
func AssembleHLSL(bc, md []byte) (string, error) {
	return hlsl.Assemble(bc, md, hlsl.DefaultOptions())
}

// KindOf returns the error kind of err, or ir.ErrNone.
func KindOf(err error) ir.ErrorKind {
	return ir.KindOf(err)
}
