package metadata

import (
	"bytes"
	"math"

	"github.com/gogpu/mslc/internal/wire"
	"github.com/gogpu/mslc/ir"
)

// Encode returns the binary encoding of m.
func Encode(m *Metadata) ([]byte, error) {
	buf := make([]byte, m.Size())
	n, err := EncodeInto(m, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// EncodeInto writes m into dst and returns the number of bytes written.
// When dst is too small nothing is written.
func EncodeInto(m *Metadata, dst []byte) (int, error) {
	if err := checkEncodable(m); err != nil {
		return 0, err
	}
	size := m.Size()
	if len(dst) < size {
		return 0, ir.Errorf(ir.PhaseCodec, ir.ErrBufferOverflow, "metadata needs %d bytes, buffer holds %d", size, len(dst))
	}

	w := wire.NewWriter(dst)
	w.Bytes(Magic[:])
	w.U32(m.Major)
	w.U32(m.Minor)
	w.U8(uint8(m.Kind))

	in := &m.Interface
	writeVars(w, in.Inputs)
	writeVars(w, in.Outputs)
	writeVars(w, in.Textures)
	w.U32(uint32(len(in.ConstantBuffers)))
	for _, cb := range in.ConstantBuffers {
		writeName(w, cb.Name)
		writeVars(w, cb.Members)
	}

	if w.Overflowed() {
		return 0, ir.Errorf(ir.PhaseCodec, ir.ErrBufferOverflow, "metadata does not fit in %d bytes", len(dst))
	}
	return w.Len(), nil
}

func writeVars(w *wire.Writer, vars []ir.Variable) {
	w.U32(uint32(len(vars)))
	for _, v := range vars {
		w.U16(v.Index)
		writeName(w, v.Name)
		w.U8(uint8(v.Type))
	}
}

func writeName(w *wire.Writer, name string) {
	var field [ir.MaxNameLength]byte
	copy(field[:], name)
	w.Bytes(field[:])
}

func checkEncodable(m *Metadata) error {
	if !m.Kind.IsValid() {
		return ir.Errorf(ir.PhaseCodec, ir.ErrInvalidData, "invalid shader kind %d", m.Kind)
	}
	check := func(name string) error {
		if len(name) > ir.MaxNameLength || bytes.IndexByte([]byte(name), 0) >= 0 {
			return ir.Errorf(ir.PhaseCodec, ir.ErrInvalidData, "name %q cannot be encoded", ir.Fragment(name))
		}
		return nil
	}
	in := &m.Interface
	for _, vars := range [][]ir.Variable{in.Inputs, in.Outputs, in.Textures} {
		for _, v := range vars {
			if err := check(v.Name); err != nil {
				return err
			}
		}
	}
	for _, cb := range in.ConstantBuffers {
		if err := check(cb.Name); err != nil {
			return err
		}
		for _, v := range cb.Members {
			if err := check(v.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode parses a metadata blob. Bytes after the last collection are
// ignored.
func Decode(data []byte) (*Metadata, error) {
	r := wire.NewReader(data)
	magic := r.Bytes(len(Magic))
	if r.Short() {
		return nil, ir.Errorf(ir.PhaseCodec, ir.ErrTruncated, "metadata shorter than its magic")
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, ir.Errorf(ir.PhaseCodec, ir.ErrBadMagic, "bad metadata magic %q", magic)
	}

	m := &Metadata{}
	m.Major = r.U32()
	m.Minor = r.U32()
	kind := r.U8()
	if r.Short() {
		return nil, ir.Errorf(ir.PhaseCodec, ir.ErrTruncated, "metadata header truncated")
	}
	if m.Major != ir.VersionMajor || m.Minor > ir.VersionMinor {
		return nil, ir.Errorf(ir.PhaseCodec, ir.ErrUnsupportedVersion, "metadata version %d.%d, supported %d.%d",
			m.Major, m.Minor, ir.VersionMajor, ir.VersionMinor)
	}
	m.Kind = ir.ShaderKind(kind)
	if !m.Kind.IsValid() {
		return nil, ir.Errorf(ir.PhaseCodec, ir.ErrInvalidData, "invalid shader kind %d", kind)
	}

	var err error
	in := &m.Interface
	if in.Inputs, err = readVars(r, "inputs"); err != nil {
		return nil, err
	}
	if in.Outputs, err = readVars(r, "outputs"); err != nil {
		return nil, err
	}
	if in.Textures, err = readVars(r, "textures"); err != nil {
		return nil, err
	}

	count, err := readCount(r, BufferSize, "constant buffers")
	if err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		cb := ir.ConstantBuffer{Name: readName(r)}
		if cb.Members, err = readVars(r, "constant buffer members"); err != nil {
			return nil, err
		}
		in.ConstantBuffers = append(in.ConstantBuffers, cb)
	}

	if errs := ir.ValidateInterface(m.Kind, in); len(errs) > 0 {
		return nil, ir.AsError(ir.PhaseCodec, errs)
	}
	return m, nil
}

// readCount reads a collection count and checks that the remaining bytes
// can hold that many entries of at least minSize bytes.
func readCount(r *wire.Reader, minSize int, what string) (int, error) {
	count := r.U32()
	if r.Short() {
		return 0, ir.Errorf(ir.PhaseCodec, ir.ErrTruncated, "%s count truncated", what)
	}
	if uint64(count)*uint64(minSize) > uint64(r.Remaining()) || count > math.MaxInt32 {
		return 0, ir.Errorf(ir.PhaseCodec, ir.ErrTruncated, "%d %s exceed the %d remaining bytes", count, what, r.Remaining())
	}
	return int(count), nil
}

func readVars(r *wire.Reader, what string) ([]ir.Variable, error) {
	count, err := readCount(r, VariableSize, what)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	vars := make([]ir.Variable, 0, count)
	for i := 0; i < count; i++ {
		v := ir.Variable{Index: r.U16()}
		v.Name = readName(r)
		t := ir.Type(r.U8())
		if !t.IsValid() {
			return nil, ir.Errorf(ir.PhaseCodec, ir.ErrInvalidData, "%s %q has invalid type %d", what, ir.Fragment(v.Name), t)
		}
		v.Type = t
		vars = append(vars, v)
	}
	return vars, nil
}

func readName(r *wire.Reader) string {
	field := r.Bytes(ir.MaxNameLength)
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
