// Package metadata encodes and decodes the interface description that
// travels next to MSL bytecode.
//
// The binary layout is big-endian:
//
//	"MSMD"  magic
//	u32     major version
//	u32     minor version
//	u8      shader kind
//	4 x     collection: inputs, outputs, textures, constant buffers
//
// The first three collections are a u32 count followed by variables of
// u16 index, [64]byte NUL-padded name and u8 type. The constant-buffer
// collection is a u32 count followed by buffers of [64]byte name, u32
// member count and the member variables.
package metadata

import (
	"github.com/gogpu/mslc/ir"
)

// Magic starts every metadata blob.
var Magic = [4]byte{'M', 'S', 'M', 'D'}

// Encoded sizes.
const (
	HeaderSize   = 4 + 4 + 4 + 1
	VariableSize = 2 + ir.MaxNameLength + 1
	BufferSize   = ir.MaxNameLength + 4
	countSize    = 4
)

// Metadata describes the interface of one compiled shader.
type Metadata struct {
	Kind      ir.ShaderKind
	Major     uint32
	Minor     uint32
	Interface ir.Interface
}

// New returns metadata for the current format version.
func New(kind ir.ShaderKind, iface ir.Interface) *Metadata {
	return &Metadata{
		Kind:      kind,
		Major:     ir.VersionMajor,
		Minor:     ir.VersionMinor,
		Interface: iface,
	}
}

// Size returns the encoded size of m in bytes.
func (m *Metadata) Size() int {
	in := &m.Interface
	n := HeaderSize + 4*countSize
	n += VariableSize * (len(in.Inputs) + len(in.Outputs) + len(in.Textures))
	for _, cb := range in.ConstantBuffers {
		n += BufferSize + VariableSize*len(cb.Members)
	}
	return n
}

// Lookup returns the interface variable with the given index.
func (m *Metadata) Lookup(cat ir.Category, index uint16) (ir.Variable, bool) {
	return m.Interface.Lookup(cat, index)
}
