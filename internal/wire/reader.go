package wire

import (
	"encoding/binary"
	"math"
)

// Reader consumes big-endian values from a buffer. Reads past the end
// return zero values and set Short.
type Reader struct {
	buf   []byte
	pos   int
	short bool
}

// NewReader returns a reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) take(size int) []byte {
	if r.short || size > len(r.buf)-r.pos {
		r.short = true
		return nil
	}
	b := r.buf[r.pos : r.pos+size]
	r.pos += size
	return b
}

// U8 reads one byte.
func (r *Reader) U8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

// I32 reads a big-endian int32.
func (r *Reader) I32() int32 {
	return int32(r.U32())
}

// F32 reads IEEE-754 float bits.
func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// Bytes reads n raw bytes. The result aliases the buffer.
func (r *Reader) Bytes(n int) []byte {
	return r.take(n)
}

// Pos returns the read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Short reports whether a read ran past the end of the buffer.
func (r *Reader) Short() bool {
	return r.short
}
