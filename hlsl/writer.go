// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

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

// Writer generates HLSL source code from bytecode and metadata.
type Writer struct {
	md      *metadata.Metadata
	options *Options

	// Output buffer
	out backend.Writer

	// Name management
	names    *backend.Namer
	vars     map[nameKey]string
	samplers map[uint16]string
	buffers  []string

	inputStruct  string
	outputStruct string
}

// newWriter creates a new HLSL writer.
func newWriter(md *metadata.Metadata, options *Options) *Writer {
	w := &Writer{
		md:       md,
		options:  options,
		names:    backend.NewNamer(Escape, true),
		vars:     make(map[nameKey]string),
		samplers: make(map[uint16]string),
	}
	if md != nil && md.Kind == ir.KindPixel {
		w.inputStruct, w.outputStruct = "PixelInput", "PixelOutput"
	} else {
		w.inputStruct, w.outputStruct = "VertexInput", "VertexOutput"
	}
	return w
}

// String returns the generated HLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates HLSL code for the whole shader.
func (w *Writer) writeModule(r *bytecode.Reader) error {
	// 1. Register all names
	w.registerNames()

	// 2. Stage structs and their static instances
	if err := w.writeStageStructs(); err != nil {
		return err
	}

	// 3. Constant buffers, textures and samplers
	if err := w.writeResources(); err != nil {
		return err
	}

	// 4. Functions in definition order, entry body last
	t := backend.NewTranslator(w, w.md, &w.out, w.names)
	if err := t.Translate(r); err != nil {
		return err
	}

	// 5. Entry point wrapper
	w.writeEntryPoint()
	return nil
}

// registerNames reserves the generated names and assigns unique names to
// every global. Stage variables live inside structs and only need
// escaping.
func (w *Writer) registerNames() {
	for _, name := range []string{
		w.options.EntryPoint, entryBodyName, stageInputVar, stageOutputVar,
		w.inputStruct, w.outputStruct,
	} {
		w.names.Reserve(name)
	}
	in := &w.md.Interface

	for _, v := range in.Inputs {
		w.vars[nameKey{ir.CategoryInput, v.Index}] = stageInputVar + "." + Escape(v.Name)
	}
	for _, v := range in.Outputs {
		w.vars[nameKey{ir.CategoryOutput, v.Index}] = stageOutputVar + "." + Escape(v.Name)
	}
	for _, cb := range in.ConstantBuffers {
		w.buffers = append(w.buffers, w.names.Call(cb.Name))
		for _, v := range cb.Members {
			w.vars[nameKey{ir.CategoryUniform, v.Index}] = w.names.Call(v.Name)
		}
	}
	for _, v := range in.Textures {
		w.vars[nameKey{ir.CategoryTexture, v.Index}] = w.names.Call(v.Name)
		w.samplers[v.Index] = w.names.Call(v.Name + samplerSuffix)
	}
}

// writeStageStructs declares the input and output structs. Empty structs
// are omitted.
func (w *Writer) writeStageStructs() error {
	in := &w.md.Interface
	if err := w.writeStageStruct(w.inputStruct, ir.CategoryInput, in.Inputs); err != nil {
		return err
	}
	if err := w.writeStageStruct(w.outputStruct, ir.CategoryOutput, in.Outputs); err != nil {
		return err
	}

	if len(in.Inputs) > 0 {
		w.out.Line("static %s %s;", w.inputStruct, stageInputVar)
	}
	if len(in.Outputs) > 0 {
		w.out.Line("static %s %s;", w.outputStruct, stageOutputVar)
	}
	if len(in.Inputs)+len(in.Outputs) > 0 {
		w.out.Line("")
	}
	return nil
}

func (w *Writer) writeStageStruct(name string, cat ir.Category, vars []ir.Variable) error {
	if len(vars) == 0 {
		return nil
	}
	kind := w.md.Kind
	w.out.Line("struct %s {", name)
	w.out.Push()
	for _, v := range vars {
		if v.Type == ir.TypeBool {
			return ir.Errorf(ir.PhaseBackend, ir.ErrUnsupportedType, "HLSL %s %q cannot be bool", cat, v.Name)
		}
		typ, err := w.TypeName(v.Type)
		if err != nil {
			return err
		}
		w.out.Line("%s%s %s : %s;", interpolation(kind, cat, v), typ, Escape(v.Name), semantic(kind, cat, v))
	}
	w.out.Pop()
	w.out.Line("};")
	w.out.Line("")
	return nil
}

// semantic returns the HLSL semantic of a stage variable. Varyings are
// linked between stages by TEXCOORD index.
func semantic(kind ir.ShaderKind, cat ir.Category, v ir.Variable) string {
	switch {
	case ir.IsPosition(kind, cat, v):
		return "SV_Position"
	case kind == ir.KindPixel && cat == ir.CategoryOutput:
		return fmt.Sprintf("SV_Target%d", v.Index)
	}
	return fmt.Sprintf("TEXCOORD%d", v.Index)
}

// interpolation returns the modifier integer varyings need.
func interpolation(kind ir.ShaderKind, cat ir.Category, v ir.Variable) string {
	varying := (kind == ir.KindVertex && cat == ir.CategoryOutput) ||
		(kind == ir.KindPixel && cat == ir.CategoryInput)
	if varying && v.Type.IsInt() {
		return "nointerpolation "
	}
	return ""
}

// writeResources declares constant buffers, then every texture with its
// sampler. Constant buffer members carry explicit packoffsets.
func (w *Writer) writeResources() error {
	in := &w.md.Interface
	sm := w.options.ShaderModel

	for i, cb := range in.ConstantBuffers {
		target := BindTarget{Space: w.options.RegisterSpace, Register: uint32(i)}
		w.out.Line("cbuffer %s : %s {", w.buffers[i], target.Annotation(RegisterTypeB, sm))
		w.out.Push()
		layout, _ := cb.Layout()
		for j, v := range cb.Members {
			if v.Type == ir.TypeBool {
				return ir.Errorf(ir.PhaseBackend, ir.ErrUnsupportedType, "HLSL %s %q cannot be bool", ir.CategoryUniform, v.Name)
			}
			typ, err := w.TypeName(v.Type)
			if err != nil {
				return err
			}
			// Matrices are stored the way MSL constructs them: one row
			// after another.
			major := ""
			if v.Type.IsMatrix() {
				major = "row_major "
			}
			w.out.Line("%s%s %s : %s;", major, typ, w.vars[nameKey{ir.CategoryUniform, v.Index}], packOffset(v.Type, layout[j]))
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
		target := BindTarget{Space: w.options.RegisterSpace, Register: uint32(v.Index)}
		w.out.Line("%s %s : %s;", typ, w.vars[nameKey{ir.CategoryTexture, v.Index}], target.Annotation(RegisterTypeT, sm))
		w.out.Line("SamplerState %s : %s;", w.samplers[v.Index], target.Annotation(RegisterTypeS, sm))
	}
	if len(in.Textures) > 0 {
		w.out.Line("")
	}
	return nil
}

// packOffset places a member at its std140 offset so both backends agree
// on the buffer layout.
func packOffset(t ir.Type, l ir.MemberLayout) string {
	if t.IsMatrix() {
		return fmt.Sprintf("packoffset(c%d)", l.Register())
	}
	return fmt.Sprintf("packoffset(c%d.%c)", l.Register(), "xyzw"[l.Component()])
}

// writeEntryPoint writes the function the pipeline calls. It copies the
// stage input into the static struct, runs the MSL entry function and
// returns the static output.
func (w *Writer) writeEntryPoint() {
	in := &w.md.Interface
	ret := "void"
	if len(in.Outputs) > 0 {
		ret = w.outputStruct
	}
	param := ""
	if len(in.Inputs) > 0 {
		param = w.inputStruct + " input"
	}

	w.out.Line("%s %s(%s) {", ret, w.options.EntryPoint, param)
	w.out.Push()
	if len(in.Inputs) > 0 {
		w.out.Line("%s = input;", stageInputVar)
	}
	if len(in.Outputs) > 0 {
		w.out.Line("%s = (%s)0;", stageOutputVar, w.outputStruct)
	}
	w.out.Line("%s();", entryBodyName)
	if len(in.Outputs) > 0 {
		w.out.Line("return %s;", stageOutputVar)
	}
	w.out.Pop()
	w.out.Line("}")
}

// Variable implements backend.Dialect.
func (w *Writer) Variable(cat ir.Category, v ir.Variable) string {
	return w.vars[nameKey{cat, v.Index}]
}

// EntryName implements backend.Dialect. The MSL entry function becomes
// a plain function called by the generated entry point.
func (w *Writer) EntryName() string {
	return entryBodyName
}
