// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/mslc/bytecode"
	"github.com/gogpu/mslc/internal/backend"
	"github.com/gogpu/mslc/ir"
	"github.com/gogpu/mslc/metadata"
)

// nameKey identifies an interface variable for name lookup.
type nameKey struct {
	cat   ir.Category
	index uint16
}

// Writer generates GLSL source code from bytecode and metadata.
type Writer struct {
	md      *metadata.Metadata
	options *Options

	// Output buffer
	out backend.Writer

	// Name management
	names  *backend.Namer
	vars   map[nameKey]string
	blocks []string
}

// newWriter creates a new GLSL writer.
func newWriter(md *metadata.Metadata, options *Options) *Writer {
	return &Writer{
		md:      md,
		options: options,
		names:   backend.NewNamer(escapeKeyword, false),
		vars:    make(map[nameKey]string),
	}
}

// String returns the generated GLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates GLSL code for the whole shader.
func (w *Writer) writeModule(r *bytecode.Reader) error {
	// 1. Write version directive
	w.out.Line("#version %s", w.options.LangVersion.String())
	w.out.Line("")

	// 2. Write precision qualifiers (ES only)
	w.writePrecisionQualifiers()

	// 3. Register all names
	w.registerNames()

	// 4. Write interface declarations
	if err := w.writeInterface(); err != nil {
		return err
	}

	// 5. Write functions in definition order
	t := backend.NewTranslator(w, w.md, &w.out, w.names)
	return t.Translate(r)
}

// writePrecisionQualifiers writes precision qualifiers for ES.
func (w *Writer) writePrecisionQualifiers() {
	if !w.options.LangVersion.ES {
		return
	}
	precision := "mediump"
	if w.options.ForceHighPrecision {
		precision = "highp"
	}
	w.out.Line("precision %s float;", precision)
	w.out.Line("precision highp int;")
	w.out.Line("precision %s sampler2D;", precision)
	w.out.Line("precision %s sampler3D;", precision)
	w.out.Line("")
}

// registerNames assigns unique names to every interface variable.
func (w *Writer) registerNames() {
	w.names.Reserve("main")
	in := &w.md.Interface
	kind := w.md.Kind

	for _, v := range in.Inputs {
		key := nameKey{ir.CategoryInput, v.Index}
		switch {
		case ir.IsPosition(kind, ir.CategoryInput, v):
			w.vars[key] = "gl_FragCoord"
		case kind == ir.KindPixel:
			w.vars[key] = w.names.Call(varyingName(v))
		default:
			w.vars[key] = w.names.Call("in_" + v.Name)
		}
	}
	for _, v := range in.Outputs {
		key := nameKey{ir.CategoryOutput, v.Index}
		switch {
		case ir.IsPosition(kind, ir.CategoryOutput, v):
			w.vars[key] = "gl_Position"
		case kind == ir.KindVertex:
			w.vars[key] = w.names.Call(varyingName(v))
		default:
			w.vars[key] = w.names.Call("out_" + v.Name)
		}
	}
	for _, cb := range in.ConstantBuffers {
		w.blocks = append(w.blocks, w.names.Call(cb.Name))
		for _, v := range cb.Members {
			w.vars[nameKey{ir.CategoryUniform, v.Index}] = w.names.Call(v.Name)
		}
	}
	for _, v := range in.Textures {
		w.vars[nameKey{ir.CategoryTexture, v.Index}] = w.names.Call(v.Name)
	}
}

// varyingName links a vertex output to the pixel input with the same
// index, since GLSL matches stages by name.
func varyingName(v ir.Variable) string {
	return fmt.Sprintf("_vary%d", v.Index)
}

// writeInterface declares inputs, outputs, uniform blocks and samplers.
func (w *Writer) writeInterface() error {
	in := &w.md.Interface
	kind := w.md.Kind
	version := w.options.LangVersion

	for _, v := range in.Inputs {
		if ir.IsPosition(kind, ir.CategoryInput, v) {
			continue
		}
		typ, err := w.interfaceType(ir.CategoryInput, v)
		if err != nil {
			return err
		}
		name := w.vars[nameKey{ir.CategoryInput, v.Index}]
		if kind == ir.KindVertex || version.SupportsVaryingLocations() {
			w.out.Line("layout(location = %d) %sin %s %s;", v.Index, interpolation(kind, ir.CategoryInput, v), typ, name)
		} else {
			w.out.Line("%sin %s %s;", interpolation(kind, ir.CategoryInput, v), typ, name)
		}
	}

	for _, v := range in.Outputs {
		if ir.IsPosition(kind, ir.CategoryOutput, v) {
			continue
		}
		typ, err := w.interfaceType(ir.CategoryOutput, v)
		if err != nil {
			return err
		}
		name := w.vars[nameKey{ir.CategoryOutput, v.Index}]
		if kind == ir.KindPixel || version.SupportsVaryingLocations() {
			w.out.Line("layout(location = %d) %sout %s %s;", v.Index, interpolation(kind, ir.CategoryOutput, v), typ, name)
		} else {
			w.out.Line("%sout %s %s;", interpolation(kind, ir.CategoryOutput, v), typ, name)
		}
	}
	if len(in.Inputs)+len(in.Outputs) > 0 {
		w.out.Line("")
	}

	// std140 matches ir.ConstantBuffer.Layout.
	for i, cb := range in.ConstantBuffers {
		layout := "std140"
		if version.SupportsBindings() {
			layout = fmt.Sprintf("std140, binding = %d", w.options.UniformBindingBase+uint32(i))
		}
		w.out.Line("layout(%s) uniform %s {", layout, w.blocks[i])
		w.out.Push()
		for _, v := range cb.Members {
			typ, err := w.interfaceType(ir.CategoryUniform, v)
			if err != nil {
				return err
			}
			w.out.Line("%s %s;", typ, w.vars[nameKey{ir.CategoryUniform, v.Index}])
		}
		w.out.Pop()
		w.out.Line("};")
		w.out.Line("")
	}

	for _, v := range in.Textures {
		typ, err := w.TypeName(v.Type)
		if err != nil {
			return err
		}
		name := w.vars[nameKey{ir.CategoryTexture, v.Index}]
		if version.SupportsBindings() {
			w.out.Line("layout(binding = %d) uniform %s %s;", w.options.TextureBindingBase+uint32(v.Index), typ, name)
		} else {
			w.out.Line("uniform %s %s;", typ, name)
		}
	}
	if len(in.Textures) > 0 {
		w.out.Line("")
	}
	return nil
}

// interfaceType spells the type of an input, output or uniform. GLSL has
// no boolean or integer-matrix interface variables.
func (w *Writer) interfaceType(cat ir.Category, v ir.Variable) (string, error) {
	if v.Type == ir.TypeBool {
		return "", ir.Errorf(ir.PhaseBackend, ir.ErrUnsupportedType, "GLSL %s %q cannot be bool", cat, v.Name)
	}
	return w.TypeName(v.Type)
}

// interpolation returns the qualifier integer varyings need.
func interpolation(kind ir.ShaderKind, cat ir.Category, v ir.Variable) string {
	varying := (kind == ir.KindVertex && cat == ir.CategoryOutput) ||
		(kind == ir.KindPixel && cat == ir.CategoryInput)
	if varying && v.Type.IsInt() {
		return "flat "
	}
	return ""
}

// Variable implements backend.Dialect.
func (w *Writer) Variable(cat ir.Category, v ir.Variable) string {
	return w.vars[nameKey{cat, v.Index}]
}

// EntryName implements backend.Dialect.
func (w *Writer) EntryName() string {
	return "main"
}
