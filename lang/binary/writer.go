package binary

import (
	"encoding/binary"
	"math"
)

// writer accumulates bytes for one chunk/sub-chunk at a time. Every
// composite writer (WriteSized, the chunk loop in writeModule) builds into
// its own writer and then splices the result into its parent, mirroring the
// reference implementation's ByteWriter used inside WriteSized.
type writer struct {
	buf []byte
}

func (w *writer) Bytes() []byte { return w.buf }

func (w *writer) WriteData(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) WriteU8(b byte) { w.buf = append(w.buf, b) }

// WriteU16/WriteU32 are fixed-width little-endian, used only for the token
// kind tag and the format version — values with a known, small, fixed size
// where a variable-length encoding would only add overhead.
func (w *writer) WriteU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.WriteData(tmp[:])
}

func (w *writer) WriteU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.WriteData(tmp[:])
}

// WriteF64 is fixed-width little-endian, matching the reference
// implementation's choice not to vary the width of floating point values.
func (w *writer) WriteF64(v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	w.WriteData(tmp[:])
}

// WriteU64/WriteI64 use standard LEB128 varints (unsigned and zigzag-signed
// respectively) via encoding/binary, in place of the reference
// implementation's own hand-rolled ULEB/SLEB bit-twiddling: every size,
// count and Arg0 in this format is overwhelmingly small, so the variable
// width pays for itself, and encoding/binary's Uvarint/Varint is the same
// mechanism the teacher's own disassembler (lang/compiler/asm.go) already
// reaches for when it needs a packed variable-length integer.
func (w *writer) WriteU64(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.WriteData(tmp[:n])
}

func (w *writer) WriteI64(v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	w.WriteData(tmp[:n])
}

func (w *writer) WriteString(s string) {
	w.WriteU64(uint64(len(s)))
	w.WriteData([]byte(s))
}

// WriteSized writes fn's output into its own sub-writer, then splices it
// into w prefixed by its byte length — the same "length-prefixed opaque
// blob" wrapper the reference implementation applies around a function's
// code, a function/global's debug symbols, and every top-level chunk, so
// that a reader that doesn't understand a chunk's contents can still skip
// over it.
func (w *writer) WriteSized(fn func(*writer)) {
	sub := &writer{}
	fn(sub)
	w.WriteU64(uint64(len(sub.buf)))
	w.WriteData(sub.buf)
}
