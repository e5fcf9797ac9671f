package binary

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// reader is a cursor over an in-memory byte slice, the Go counterpart of
// the reference implementation's ByteReader: every composite Read (a
// function's code, a chunk's body) materializes its bytes fully and reads
// them out of a sub-reader rather than streaming, since Sized sections need
// to know exactly how much was consumed to detect DataNotConsumed.
type reader struct {
	buf []byte
	pos int
}

func newReader(b []byte) *reader { return &reader{buf: b} }

func (r *reader) AtEOF() bool { return r.pos >= len(r.buf) }

func (r *reader) ReadData(n int) ([]byte, bool) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, false
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

func (r *reader) ReadU8() (byte, bool) {
	b, ok := r.ReadData(1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (r *reader) ReadU16() (uint16, bool) {
	b, ok := r.ReadData(2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

func (r *reader) ReadU32() (uint32, bool) {
	b, ok := r.ReadData(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (r *reader) ReadF64() (float64, bool) {
	b, ok := r.ReadData(8)
	if !ok {
		return 0, false
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), true
}

func (r *reader) ReadU64() (uint64, bool) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, false
	}
	r.pos += n
	return v, true
}

func (r *reader) ReadI64() (int64, bool) {
	v, n := binary.Varint(r.buf[r.pos:])
	if n <= 0 {
		return 0, false
	}
	r.pos += n
	return v, true
}

// ReadString reads a length-prefixed byte string. requireUTF8 is set for
// names (function/native/global names, source paths) and clear for Pulsar
// string values, which are raw, unvalidated bytes (see lang/value's string
// model) — matching the reference implementation's
// ReadString(reader, out, requireValidUTF8, settings) split.
func (r *reader) ReadString(requireUTF8 bool) (string, ReadResult) {
	length, ok := r.ReadU64()
	if !ok {
		return "", ReadUnexpectedEOF
	}
	b, ok := r.ReadData(int(length))
	if !ok {
		return "", ReadUnexpectedEOF
	}
	if requireUTF8 && !utf8.Valid(b) {
		return "", ReadInvalidUTF8Encoding
	}
	return string(b), ReadOK
}

// ReadSized reads a length-prefixed blob and hands a fresh reader over just
// those bytes to fn; if fn doesn't consume every byte, the section is
// malformed even though fn itself reported success.
func (r *reader) ReadSized(fn func(*reader) ReadResult) ReadResult {
	size, ok := r.ReadU64()
	if !ok {
		return ReadUnexpectedEOF
	}
	data, ok := r.ReadData(int(size))
	if !ok {
		return ReadUnexpectedEOF
	}
	sub := newReader(data)
	if rr := fn(sub); rr != ReadOK {
		return rr
	}
	if !sub.AtEOF() {
		return ReadDataNotConsumed
	}
	return ReadOK
}
