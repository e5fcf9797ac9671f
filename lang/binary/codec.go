package binary

import (
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/token"
	"github.com/pulsar-lang/pulsar/lang/value"
)

// Write encodes mod as a Neutron file.
func Write(mod *module.Module, settings WriteSettings) []byte {
	w := &writer{}
	writeHeader(w)
	writeModule(w, mod, settings)
	return w.Bytes()
}

// Read decodes a Neutron file into a fresh Module. On any result other than
// ReadOK the returned Module is nil.
func Read(data []byte, settings ReadSettings) (*module.Module, ReadResult) {
	r := newReader(data)
	if rr := readHeader(r); rr != ReadOK {
		return nil, rr
	}
	mod := module.New()
	if rr := readModule(r, mod, settings); rr != ReadOK {
		return nil, rr
	}
	return mod, ReadOK
}

func writeHeader(w *writer) {
	w.WriteData(Signature[:])
	w.WriteU32(FormatVersion)
}

func readHeader(r *reader) ReadResult {
	sig, ok := r.ReadData(len(Signature))
	if !ok {
		return ReadUnexpectedEOF
	}
	for i, b := range Signature {
		if sig[i] != b {
			return ReadInvalidSignature
		}
	}
	version, ok := r.ReadU32()
	if !ok {
		return ReadUnexpectedEOF
	}
	if version != FormatVersion {
		return ReadUnsupportedVersion
	}
	return ReadOK
}

// writeModule writes every non-empty chunk, in chunk-type order, terminated
// by the mandatory end-of-module chunk, matching the reference
// implementation's WriteModule (a module with no globals, say, simply omits
// the Globals chunk rather than writing an empty one).
func writeModule(w *writer, mod *module.Module, settings WriteSettings) {
	w.WriteSized(func(body *writer) {
		if len(mod.Functions) > 0 {
			body.WriteU8(ChunkFunctions)
			body.WriteSized(func(sub *writer) { writeFunctions(sub, mod.Functions, settings) })
		}
		if len(mod.NativeBindings) > 0 {
			body.WriteU8(ChunkNativeBindings)
			body.WriteSized(func(sub *writer) { writeNativeBindings(sub, mod.NativeBindings) })
		}
		if len(mod.Globals) > 0 {
			body.WriteU8(ChunkGlobals)
			body.WriteSized(func(sub *writer) { writeGlobals(sub, mod.Globals, settings) })
		}
		if len(mod.Constants) > 0 {
			body.WriteU8(ChunkConstants)
			body.WriteSized(func(sub *writer) { writeValues(sub, mod.Constants) })
		}
		if settings.StoreDebugSymbols && len(mod.SourceDebugSymbols) > 0 {
			body.WriteU8(ChunkSourceDebugSymbols)
			body.WriteSized(func(sub *writer) { writeSourceDebugSymbols(sub, mod.SourceDebugSymbols) })
		}
		body.WriteU8(ChunkEndOfModule)
		body.WriteU64(0)
	})
}

func readModule(r *reader, mod *module.Module, settings ReadSettings) ReadResult {
	return r.ReadSized(func(body *reader) ReadResult {
		for {
			chunkType, ok := body.ReadU8()
			if !ok {
				return ReadUnexpectedEOF
			}
			rr := body.ReadSized(func(sub *reader) ReadResult {
				switch chunkType {
				case ChunkEndOfModule:
					return ReadOK
				case ChunkFunctions:
					return readFunctions(sub, &mod.Functions, settings)
				case ChunkNativeBindings:
					return readNativeBindings(sub, mod)
				case ChunkGlobals:
					return readGlobals(sub, mod, settings)
				case ChunkConstants:
					return readValues(sub, &mod.Constants)
				case ChunkSourceDebugSymbols:
					if !settings.LoadDebugSymbols {
						sub.pos = len(sub.buf)
						return ReadOK
					}
					return readSourceDebugSymbols(sub, &mod.SourceDebugSymbols)
				default:
					if IsOptionalChunk(chunkType) {
						sub.pos = len(sub.buf)
						return ReadOK
					}
					return ReadUnsupportedChunkType
				}
			})
			if rr != ReadOK {
				return rr
			}
			if chunkType == ChunkEndOfModule {
				break
			}
		}
		mod.NativeFunctions = make([]module.NativeFunction, len(mod.NativeBindings))
		mod.RebuildNameIndex()
		return ReadOK
	})
}

// --- Instruction ---

func writeInstruction(w *writer, insn module.Instruction) {
	w.WriteU8(byte(insn.Opcode))
	w.WriteI64(insn.Arg0)
}

func readInstruction(r *reader) (module.Instruction, ReadResult) {
	op, ok := r.ReadU8()
	if !ok {
		return module.Instruction{}, ReadUnexpectedEOF
	}
	arg0, ok := r.ReadI64()
	if !ok {
		return module.Instruction{}, ReadUnexpectedEOF
	}
	return module.Instruction{Opcode: module.Opcode(op), Arg0: arg0}, ReadOK
}

func writeCode(w *writer, code []module.Instruction) {
	w.WriteU64(uint64(len(code)))
	for _, insn := range code {
		writeInstruction(w, insn)
	}
}

func readCode(r *reader, out *[]module.Instruction) ReadResult {
	n, ok := r.ReadU64()
	if !ok {
		return ReadUnexpectedEOF
	}
	code := make([]module.Instruction, 0, n)
	for i := uint64(0); i < n; i++ {
		insn, rr := readInstruction(r)
		if rr != ReadOK {
			return rr
		}
		code = append(code, insn)
	}
	*out = code
	return ReadOK
}

// --- SourcePosition / Token ---

func writeSourcePosition(w *writer, pos token.SourcePosition) {
	w.WriteU64(uint64(pos.Line))
	w.WriteU64(uint64(pos.Char))
	w.WriteU64(uint64(pos.ByteIndex))
	w.WriteU64(uint64(pos.CharSpan))
}

func readSourcePosition(r *reader) (token.SourcePosition, ReadResult) {
	var pos token.SourcePosition
	line, ok := r.ReadU64()
	if !ok {
		return pos, ReadUnexpectedEOF
	}
	char, ok := r.ReadU64()
	if !ok {
		return pos, ReadUnexpectedEOF
	}
	idx, ok := r.ReadU64()
	if !ok {
		return pos, ReadUnexpectedEOF
	}
	span, ok := r.ReadU64()
	if !ok {
		return pos, ReadUnexpectedEOF
	}
	pos.Line, pos.Char, pos.ByteIndex, pos.CharSpan = int(line), int(char), int(idx), int(span)
	return pos, ReadOK
}

// writeToken stores only the token's kind and position: a debug symbol only
// ever needs to point back at where a name or instruction came from, never
// to reproduce the token's literal text, so StringVal/IntVal/DoubleVal are
// not part of the wire format.
func writeToken(w *writer, tok token.Token) {
	w.WriteU16(uint16(tok.Kind))
	writeSourcePosition(w, tok.Pos)
}

func readToken(r *reader) (token.Token, ReadResult) {
	kind, ok := r.ReadU16()
	if !ok {
		return token.Token{}, ReadUnexpectedEOF
	}
	pos, rr := readSourcePosition(r)
	if rr != ReadOK {
		return token.Token{}, rr
	}
	return token.Token{Kind: token.Kind(kind), Pos: pos}, ReadOK
}

// --- Debug symbols ---

func writeFunctionDebugSymbol(w *writer, ds *module.FunctionDebugSymbol) {
	writeToken(w, ds.NameToken)
	w.WriteU64(uint64(ds.SourceIdx))
}

func readFunctionDebugSymbol(r *reader) (*module.FunctionDebugSymbol, ReadResult) {
	tok, rr := readToken(r)
	if rr != ReadOK {
		return nil, rr
	}
	idx, ok := r.ReadU64()
	if !ok {
		return nil, ReadUnexpectedEOF
	}
	return &module.FunctionDebugSymbol{NameToken: tok, SourceIdx: int(idx)}, ReadOK
}

func writeCodeDebugSymbol(w *writer, ds module.CodeDebugSymbol) {
	writeToken(w, ds.Tok)
	w.WriteU64(uint64(ds.CodeStartIndex))
}

func readCodeDebugSymbol(r *reader) (module.CodeDebugSymbol, ReadResult) {
	tok, rr := readToken(r)
	if rr != ReadOK {
		return module.CodeDebugSymbol{}, rr
	}
	idx, ok := r.ReadU64()
	if !ok {
		return module.CodeDebugSymbol{}, ReadUnexpectedEOF
	}
	return module.CodeDebugSymbol{Tok: tok, CodeStartIndex: int(idx)}, ReadOK
}

func writeGlobalDebugSymbol(w *writer, ds *module.GlobalDebugSymbol) {
	writeToken(w, ds.NameToken)
	w.WriteU64(uint64(ds.SourceIdx))
}

func readGlobalDebugSymbol(r *reader) (*module.GlobalDebugSymbol, ReadResult) {
	tok, rr := readToken(r)
	if rr != ReadOK {
		return nil, rr
	}
	idx, ok := r.ReadU64()
	if !ok {
		return nil, ReadUnexpectedEOF
	}
	return &module.GlobalDebugSymbol{NameToken: tok, SourceIdx: int(idx)}, ReadOK
}

func writeSourceDebugSymbols(w *writer, syms []module.SourceDebugSymbol) {
	w.WriteU64(uint64(len(syms)))
	for _, s := range syms {
		w.WriteString(s.Path)
		w.WriteString(s.SourceText)
	}
}

func readSourceDebugSymbols(r *reader, out *[]module.SourceDebugSymbol) ReadResult {
	n, ok := r.ReadU64()
	if !ok {
		return ReadUnexpectedEOF
	}
	syms := make([]module.SourceDebugSymbol, 0, n)
	for i := uint64(0); i < n; i++ {
		path, rr := r.ReadString(true)
		if rr != ReadOK {
			return rr
		}
		src, rr := r.ReadString(false)
		if rr != ReadOK {
			return rr
		}
		syms = append(syms, module.SourceDebugSymbol{Path: path, SourceText: src})
	}
	*out = syms
	return ReadOK
}

// --- FunctionDefinition ---

func writeFunctions(w *writer, fns []*module.FunctionDefinition, settings WriteSettings) {
	w.WriteU64(uint64(len(fns)))
	for _, fn := range fns {
		writeFunctionDefinition(w, fn, settings)
	}
}

func readFunctions(r *reader, out *[]*module.FunctionDefinition, settings ReadSettings) ReadResult {
	n, ok := r.ReadU64()
	if !ok {
		return ReadUnexpectedEOF
	}
	fns := make([]*module.FunctionDefinition, 0, n)
	for i := uint64(0); i < n; i++ {
		fn, rr := readFunctionDefinition(r, settings)
		if rr != ReadOK {
			return rr
		}
		fns = append(fns, fn)
	}
	*out = fns
	return ReadOK
}

func writeFunctionDefinition(w *writer, fn *module.FunctionDefinition, settings WriteSettings) {
	w.WriteString(fn.Name)
	w.WriteU64(uint64(fn.Arity))
	w.WriteU64(uint64(fn.Returns))
	w.WriteU64(uint64(fn.StackArity))
	w.WriteU64(uint64(fn.LocalsCount))
	w.WriteSized(func(sub *writer) { writeCode(sub, fn.Code) })
	w.WriteSized(func(sub *writer) {
		hasDebugSymbols := settings.StoreDebugSymbols && fn.DebugSymbol != nil
		if !hasDebugSymbols {
			return
		}
		writeFunctionDebugSymbol(sub, fn.DebugSymbol)
		sub.WriteU64(uint64(len(fn.CodeDebugSymbol)))
		for _, cs := range fn.CodeDebugSymbol {
			writeCodeDebugSymbol(sub, cs)
		}
	})
}

func readFunctionDefinition(r *reader, settings ReadSettings) (*module.FunctionDefinition, ReadResult) {
	fn := &module.FunctionDefinition{}
	name, rr := r.ReadString(true)
	if rr != ReadOK {
		return nil, rr
	}
	fn.Name = name
	for _, field := range []*int{&fn.Arity, &fn.Returns, &fn.StackArity, &fn.LocalsCount} {
		v, ok := r.ReadU64()
		if !ok {
			return nil, ReadUnexpectedEOF
		}
		*field = int(v)
	}

	if rr := r.ReadSized(func(sub *reader) ReadResult { return readCode(sub, &fn.Code) }); rr != ReadOK {
		return nil, rr
	}

	rr = r.ReadSized(func(sub *reader) ReadResult {
		if !settings.LoadDebugSymbols {
			sub.pos = len(sub.buf)
			return ReadOK
		}
		if sub.AtEOF() {
			return ReadOK
		}
		ds, rr := readFunctionDebugSymbol(sub)
		if rr != ReadOK {
			return rr
		}
		fn.DebugSymbol = ds
		n, ok := sub.ReadU64()
		if !ok {
			return ReadUnexpectedEOF
		}
		syms := make([]module.CodeDebugSymbol, 0, n)
		for i := uint64(0); i < n; i++ {
			cs, rr := readCodeDebugSymbol(sub)
			if rr != ReadOK {
				return rr
			}
			syms = append(syms, cs)
		}
		fn.CodeDebugSymbol = syms
		return ReadOK
	})
	if rr != ReadOK {
		return nil, rr
	}
	return fn, ReadOK
}

// --- NativeBinding ---

func writeNativeBindings(w *writer, nbs []*module.NativeBinding) {
	w.WriteU64(uint64(len(nbs)))
	for _, nb := range nbs {
		w.WriteString(nb.Name)
		w.WriteU64(uint64(nb.Arity))
		w.WriteU64(uint64(nb.Returns))
		w.WriteU64(uint64(nb.StackArity))
	}
}

func readNativeBindings(r *reader, mod *module.Module) ReadResult {
	n, ok := r.ReadU64()
	if !ok {
		return ReadUnexpectedEOF
	}
	nbs := make([]*module.NativeBinding, 0, n)
	for i := uint64(0); i < n; i++ {
		name, rr := r.ReadString(true)
		if rr != ReadOK {
			return rr
		}
		nb := &module.NativeBinding{Name: name}
		for _, field := range []*int{&nb.Arity, &nb.Returns, &nb.StackArity} {
			v, ok := r.ReadU64()
			if !ok {
				return ReadUnexpectedEOF
			}
			*field = int(v)
		}
		nbs = append(nbs, nb)
	}
	mod.NativeBindings = nbs
	return ReadOK
}

// --- GlobalDefinition ---

func writeGlobals(w *writer, globals []*module.GlobalDefinition, settings WriteSettings) {
	w.WriteU64(uint64(len(globals)))
	for _, g := range globals {
		writeGlobalDefinition(w, g, settings)
	}
}

func readGlobals(r *reader, mod *module.Module, settings ReadSettings) ReadResult {
	n, ok := r.ReadU64()
	if !ok {
		return ReadUnexpectedEOF
	}
	globals := make([]*module.GlobalDefinition, 0, n)
	for i := uint64(0); i < n; i++ {
		g, rr := readGlobalDefinition(r, settings)
		if rr != ReadOK {
			return rr
		}
		globals = append(globals, g)
	}
	mod.Globals = globals
	return ReadOK
}

func writeGlobalDefinition(w *writer, g *module.GlobalDefinition, settings WriteSettings) {
	w.WriteString(g.Name)
	var flags byte
	if g.IsConstant {
		flags = globalFlagConstant
	}
	w.WriteU8(flags)
	writeValue(w, g.InitialValue)
	w.WriteSized(func(sub *writer) {
		if !(settings.StoreDebugSymbols && g.DebugSymbol != nil) {
			return
		}
		writeGlobalDebugSymbol(sub, g.DebugSymbol)
	})
}

func readGlobalDefinition(r *reader, settings ReadSettings) (*module.GlobalDefinition, ReadResult) {
	name, rr := r.ReadString(true)
	if rr != ReadOK {
		return nil, rr
	}
	flags, ok := r.ReadU8()
	if !ok {
		return nil, ReadUnexpectedEOF
	}
	g := &module.GlobalDefinition{Name: name, IsConstant: flags&globalFlagConstant != 0}

	v, rr := readValue(r)
	if rr != ReadOK {
		return nil, rr
	}
	g.InitialValue = v

	rr = r.ReadSized(func(sub *reader) ReadResult {
		if !settings.LoadDebugSymbols {
			sub.pos = len(sub.buf)
			return ReadOK
		}
		if sub.AtEOF() {
			return ReadOK
		}
		ds, rr := readGlobalDebugSymbol(sub)
		if rr != ReadOK {
			return rr
		}
		g.DebugSymbol = ds
		return ReadOK
	})
	if rr != ReadOK {
		return nil, rr
	}
	return g, ReadOK
}

// --- Value ---

// valueType tags mirror the reference implementation's Pulsar::ValueType
// ordinal (Custom is representable only at runtime: it can never appear in
// a Constants chunk or a global's initial value, since nothing parses a
// custom literal and the optimizer never folds one into a constant).
const (
	valueTypeVoid byte = iota
	valueTypeInteger
	valueTypeDouble
	valueTypeFunctionReference
	valueTypeNativeFunctionReference
	valueTypeList
	valueTypeString
	valueTypeCustom
)

func writeValues(w *writer, values []value.Value) {
	w.WriteU64(uint64(len(values)))
	for _, v := range values {
		writeValue(w, v)
	}
}

func readValues(r *reader, out *[]value.Value) ReadResult {
	n, ok := r.ReadU64()
	if !ok {
		return ReadUnexpectedEOF
	}
	values := make([]value.Value, 0, n)
	for i := uint64(0); i < n; i++ {
		v, rr := readValue(r)
		if rr != ReadOK {
			return rr
		}
		values = append(values, v)
	}
	*out = values
	return ReadOK
}

func writeValue(w *writer, v value.Value) {
	w.WriteU8(valueTypeTag(v.Kind()))
	w.WriteSized(func(sub *writer) {
		switch v.Kind() {
		case value.Void:
		case value.Integer, value.FunctionReference, value.NativeFunctionReference:
			sub.WriteI64(v.AsInt())
		case value.Double:
			sub.WriteF64(v.AsDouble())
		case value.List:
			writeValueList(sub, v.AsList())
		case value.String:
			sub.WriteU64(uint64(len(v.AsBytes())))
			sub.WriteData(v.AsBytes())
		}
	})
}

func readValue(r *reader) (value.Value, ReadResult) {
	typeTag, ok := r.ReadU8()
	if !ok {
		return value.Value{}, ReadUnexpectedEOF
	}
	var out value.Value
	rr := r.ReadSized(func(sub *reader) ReadResult {
		switch typeTag {
		case valueTypeVoid:
			out = value.VoidValue()
		case valueTypeInteger:
			n, ok := sub.ReadI64()
			if !ok {
				return ReadUnexpectedEOF
			}
			out = value.Int(n)
		case valueTypeDouble:
			d, ok := sub.ReadF64()
			if !ok {
				return ReadUnexpectedEOF
			}
			out = value.Dbl(d)
		case valueTypeFunctionReference:
			n, ok := sub.ReadI64()
			if !ok {
				return ReadUnexpectedEOF
			}
			out = value.FnRef(n)
		case valueTypeNativeFunctionReference:
			n, ok := sub.ReadI64()
			if !ok {
				return ReadUnexpectedEOF
			}
			out = value.NativeRef(n)
		case valueTypeList:
			lst, rr := readValueList(sub)
			if rr != ReadOK {
				return rr
			}
			out = value.Lst(lst)
		case valueTypeString:
			length, ok := sub.ReadU64()
			if !ok {
				return ReadUnexpectedEOF
			}
			b, ok := sub.ReadData(int(length))
			if !ok {
				return ReadUnexpectedEOF
			}
			out = value.StrBytes(append([]byte(nil), b...))
		case valueTypeCustom:
			return ReadUnsupportedCustomDataType
		default:
			return ReadUnsupportedValueType
		}
		return ReadOK
	})
	return out, rr
}

func valueTypeTag(k value.Kind) byte {
	switch k {
	case value.Void:
		return valueTypeVoid
	case value.Integer:
		return valueTypeInteger
	case value.Double:
		return valueTypeDouble
	case value.FunctionReference:
		return valueTypeFunctionReference
	case value.NativeFunctionReference:
		return valueTypeNativeFunctionReference
	case value.List:
		return valueTypeList
	case value.String:
		return valueTypeString
	default:
		return valueTypeCustom
	}
}

// writeValueList stores a List the same way as any other sequence: a
// length followed by each element, matching the reference implementation's
// choice to serialize its LinkedList<Value> exactly like a flat List<Value>.
func writeValueList(w *writer, l *value.ValueList) {
	if l == nil {
		w.WriteU64(0)
		return
	}
	w.WriteU64(uint64(l.Len()))
	l.Iterate(func(v value.Value) bool {
		writeValue(w, v)
		return true
	})
}

func readValueList(r *reader) (*value.ValueList, ReadResult) {
	n, ok := r.ReadU64()
	if !ok {
		return nil, ReadUnexpectedEOF
	}
	lst := value.NewValueList()
	for i := uint64(0); i < n; i++ {
		v, rr := readValue(r)
		if rr != ReadOK {
			return nil, rr
		}
		lst.Append(v)
	}
	return lst, ReadOK
}
