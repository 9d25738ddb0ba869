// Package wire holds the big-endian primitives shared by the bytecode and
// metadata codecs.
package wire

import (
	"encoding/binary"
	"math"
)

// Writer appends big-endian values to a fixed buffer. Once a write does
// not fit, the writer stops and Overflowed reports true.
type Writer struct {
	buf      []byte
	n        int
	overflow bool
}

// NewWriter returns a writer over buf. It never grows buf.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

func (w *Writer) reserve(size int) []byte {
	if w.overflow || w.n+size > len(w.buf) {
		w.overflow = true
		return nil
	}
	b := w.buf[w.n : w.n+size]
	w.n += size
	return b
}

// U8 writes one byte.
func (w *Writer) U8(v uint8) {
	if b := w.reserve(1); b != nil {
		b[0] = v
	}
}

// U16 writes a big-endian uint16.
func (w *Writer) U16(v uint16) {
	if b := w.reserve(2); b != nil {
		binary.BigEndian.PutUint16(b, v)
	}
}

// U32 writes a big-endian uint32.
func (w *Writer) U32(v uint32) {
	if b := w.reserve(4); b != nil {
		binary.BigEndian.PutUint32(b, v)
	}
}

// I32 writes a big-endian two's complement int32.
func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

// F32 writes the IEEE-754 bits of v.
func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

// Bytes writes raw bytes.
func (w *Writer) Bytes(p []byte) {
	if b := w.reserve(len(p)); b != nil {
		copy(b, p)
	}
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.n
}

// Overflowed reports whether a write did not fit.
func (w *Writer) Overflowed() bool {
	return w.overflow
}
