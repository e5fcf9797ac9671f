// Package binary implements the Neutron format: Pulsar's binary encoding
// for a compiled Module (spec §4.5/§6.2). A Neutron file is a 4-byte
// signature, a format version, then a length-prefixed, chunked body —
// functions, native bindings, globals, constants and (optionally) debug
// symbols each in their own chunk, terminated by an end-of-module chunk.
package binary

// Signature is the fixed 4-byte prefix of every Neutron file: a leading NUL
// followed by "NTR", so a misidentified text file reads as binary garbage
// immediately rather than partially parsing.
var Signature = [4]byte{0x00, 'N', 'T', 'R'}

// FormatVersion is the only version this codec reads or writes.
const FormatVersion uint32 = 0

// Chunk type tags. Mandatory chunks (those below 0x80) that an older/newer
// reader doesn't recognize are a hard error; chunks at or above 0x80 are
// optional and silently skipped by a reader that doesn't know them, which
// is how SourceDebugSymbols coexists with future additions without breaking
// older readers.
const (
	ChunkEndOfModule        byte = 0x00
	ChunkFunctions          byte = 0x01
	ChunkNativeBindings     byte = 0x02
	ChunkGlobals            byte = 0x03
	ChunkConstants          byte = 0x04
	ChunkSourceDebugSymbols byte = 0x80
)

// IsOptionalChunk reports whether a reader encountering an unrecognized
// chunk of this type should skip it instead of failing.
func IsOptionalChunk(chunkType byte) bool { return chunkType >= 0x80 }

// globalFlagConstant is the GlobalDefinition.IsConstant bit within a
// global's single flags byte.
const globalFlagConstant byte = 1

// ReadResult is the closed error taxonomy a Read can fail with, mirroring
// the reference implementation's Binary::ReadResult.
type ReadResult uint8

//nolint:revive
const (
	ReadOK ReadResult = iota
	ReadUnexpectedEOF
	ReadDataNotConsumed
	ReadInvalidSignature
	ReadUnsupportedVersion
	ReadUnsupportedChunkType
	ReadUnsupportedCustomDataType
	ReadUnsupportedValueType
	ReadInvalidUTF8Encoding
)

func (r ReadResult) String() string {
	switch r {
	case ReadOK:
		return "OK"
	case ReadUnexpectedEOF:
		return "UnexpectedEOF"
	case ReadDataNotConsumed:
		return "DataNotConsumed"
	case ReadInvalidSignature:
		return "InvalidSignature"
	case ReadUnsupportedVersion:
		return "UnsupportedVersion"
	case ReadUnsupportedChunkType:
		return "UnsupportedChunkType"
	case ReadUnsupportedCustomDataType:
		return "UnsupportedCustomDataType"
	case ReadUnsupportedValueType:
		return "UnsupportedValueType"
	case ReadInvalidUTF8Encoding:
		return "InvalidUTF8Encoding"
	default:
		return "unknown ReadResult"
	}
}

// Error implements error so a ReadResult can be returned/wrapped directly.
func (r ReadResult) Error() string { return r.String() }

// IsOK reports whether r is ReadOK.
func (r ReadResult) IsOK() bool { return r == ReadOK }

// ReadSettings controls optional behavior of Read.
type ReadSettings struct {
	// LoadDebugSymbols, when false, discards the debug-symbol sections of
	// the file instead of populating the Module's debug-symbol fields.
	LoadDebugSymbols bool
}

// DefaultReadSettings matches the reference implementation's
// ReadSettings_Default (load debug symbols when present).
var DefaultReadSettings = ReadSettings{LoadDebugSymbols: true}

// WriteSettings controls optional behavior of Write.
type WriteSettings struct {
	// StoreDebugSymbols, when false, omits every debug-symbol section from
	// the written file even if the Module carries them.
	StoreDebugSymbols bool
}

// DefaultWriteSettings matches the reference implementation's
// WriteSettings_Default (store debug symbols when present).
var DefaultWriteSettings = WriteSettings{StoreDebugSymbols: true}
