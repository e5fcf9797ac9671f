// Package module defines Pulsar's compiled-program data model: functions,
// native declarations, globals, constants, the custom-type registry, and the
// optional debug symbol tables, plus the lookup surface every other core
// layer (parser, optimizer, binary codec, interpreter) builds on.
package module

import (
	"github.com/dolthub/swiss"

	"github.com/pulsar-lang/pulsar/lang/value"
)

// InvalidIndex is the sentinel returned by every by-name lookup when no
// matching definition exists.
const InvalidIndex = -1

// Module is the compiled Pulsar program: a fresh Module is empty, and
// functions/globals/constants are appended by the parser while native
// bindings are added by the host (or by the parser itself for native
// declarations, left unbound until BindNativeFunction or
// BindNativeFunctionBySignature is called).
type Module struct {
	Functions       []*FunctionDefinition
	NativeBindings  []*NativeBinding
	NativeFunctions []NativeFunction // same indexing as NativeBindings; nil entry = unbound
	Globals         []*GlobalDefinition
	Constants       []value.Value
	CustomTypes     map[uint64]*CustomType

	SourceDebugSymbols []SourceDebugSymbol

	functionsByName *nameIndex
	nativesByName   *nameIndex
	globalsByName   *nameIndex
	nextCustomType  uint64
}

// New returns an empty Module, ready to be populated.
func New() *Module {
	return &Module{
		CustomTypes:     make(map[uint64]*CustomType),
		functionsByName: newNameIndex(0),
		nativesByName:   newNameIndex(0),
		globalsByName:   newNameIndex(0),
		nextCustomType:  1,
	}
}

// nameIndex is a small name->index lookup table backed by a swiss hash map,
// used for the three by-name lookups the Module surface exposes. A Go
// built-in map would do as well, but the runtime is expected to perform
// these lookups in hot paths (identifier resolution during parsing, name
// resolution for exported-symbol predicates during optimization), and swiss
// is the hash map this corpus already reaches for (see
// github.com/mna/nenuphar's lang/machine.Map).
type nameIndex struct {
	m *swiss.Map[string, int]
}

func newNameIndex(capacity int) *nameIndex {
	return &nameIndex{m: swiss.NewMap[string, int](uint32(capacity))}
}

func (n *nameIndex) put(name string, idx int) { n.m.Put(name, idx) }
func (n *nameIndex) get(name string) (int, bool) {
	return n.m.Get(name)
}

// AppendFunction appends fn to Functions and returns its index.
func (m *Module) AppendFunction(fn *FunctionDefinition) int {
	idx := len(m.Functions)
	m.Functions = append(m.Functions, fn)
	m.functionsByName.put(fn.Name, idx)
	return idx
}

// AppendNativeBinding appends a native declaration (without a bound
// callable) and returns its index. NativeFunctions is kept the same length
// (with a nil/unbound entry) to preserve the §3.7 invariant that the two
// slices have equal length once an interpreter runs.
func (m *Module) AppendNativeBinding(nb *NativeBinding) int {
	idx := len(m.NativeBindings)
	m.NativeBindings = append(m.NativeBindings, nb)
	m.NativeFunctions = append(m.NativeFunctions, nil)
	m.nativesByName.put(nb.Name, idx)
	return idx
}

// AppendGlobal appends a global definition and returns its index.
func (m *Module) AppendGlobal(g *GlobalDefinition) int {
	idx := len(m.Globals)
	m.Globals = append(m.Globals, g)
	m.globalsByName.put(g.Name, idx)
	return idx
}

// AppendConstant appends v to Constants and returns its index. Callers
// wanting deduplication (as the parser does for string literals and constant
// list prefixes) should check FindConstant first.
func (m *Module) AppendConstant(v value.Value) int {
	idx := len(m.Constants)
	m.Constants = append(m.Constants, v)
	return idx
}

// FindConstant returns the index of the first constant equal to v, or
// InvalidIndex.
func (m *Module) FindConstant(v value.Value) int {
	for i, c := range m.Constants {
		if c.Equals(v) {
			return i
		}
	}
	return InvalidIndex
}

// DeclareAndBindNative appends a new native binding for the given signature
// and binds fn to it in one step, returning the new index.
func (m *Module) DeclareAndBindNative(name string, arity, returns, stackArity int, fn NativeFunction) int {
	idx := m.AppendNativeBinding(&NativeBinding{Name: name, Arity: arity, Returns: returns, StackArity: stackArity})
	m.NativeFunctions[idx] = fn
	return idx
}

// BindNativeFunction binds fn to every declared native binding whose
// signature exactly matches (name, arity, returns, stackArity), returning how
// many bindings were matched (and therefore bound).
func (m *Module) BindNativeFunction(name string, arity, returns, stackArity int, fn NativeFunction) int {
	matched := 0
	for i, nb := range m.NativeBindings {
		if nb.Matches(name, arity, returns, stackArity) {
			m.NativeFunctions[i] = fn
			matched++
		}
	}
	return matched
}

// BindNativeFunctionBySignature is an alias of BindNativeFunction kept for
// parity with the spec's wording ("by signature"); both describe the same
// matching rule.
func (m *Module) BindNativeFunctionBySignature(name string, arity, returns, stackArity int, fn NativeFunction) int {
	return m.BindNativeFunction(name, arity, returns, stackArity, fn)
}

// RegisterCustomType assigns a fresh id to ct (overwriting whatever ID it
// carried) and registers it, returning the assigned id.
func (m *Module) RegisterCustomType(ct *CustomType) uint64 {
	id := m.nextCustomType
	m.nextCustomType++
	ct.ID = id
	m.CustomTypes[id] = ct
	return id
}

// FindFunctionByName returns the index of the function named name, or
// InvalidIndex.
func (m *Module) FindFunctionByName(name string) int {
	if idx, ok := m.functionsByName.get(name); ok {
		return idx
	}
	return InvalidIndex
}

// FindFunctionBySignature returns the index of the function matching
// (name, arity, returns, stackArity), or InvalidIndex.
func (m *Module) FindFunctionBySignature(name string, arity, returns, stackArity int) int {
	for i, fn := range m.Functions {
		if fn.Name == name && fn.Arity == arity && fn.Returns == returns && fn.StackArity == stackArity {
			return i
		}
	}
	return InvalidIndex
}

// FindNativeByName returns the index of the native binding named name, or
// InvalidIndex.
func (m *Module) FindNativeByName(name string) int {
	if idx, ok := m.nativesByName.get(name); ok {
		return idx
	}
	return InvalidIndex
}

// FindGlobalByName returns the index of the global named name, or
// InvalidIndex.
func (m *Module) FindGlobalByName(name string) int {
	if idx, ok := m.globalsByName.get(name); ok {
		return idx
	}
	return InvalidIndex
}

// RebuildNameIndex recomputes the by-name lookup maps from the current
// contents of Functions/NativeBindings/Globals. It must be called after
// construction by decoding a Module from the binary codec, or after any
// direct (non-Append*) mutation of those slices, such as the optimizer's
// compaction phase.
func (m *Module) RebuildNameIndex() {
	m.functionsByName = newNameIndex(len(m.Functions))
	for i, fn := range m.Functions {
		m.functionsByName.put(fn.Name, i)
	}
	m.nativesByName = newNameIndex(len(m.NativeBindings))
	for i, nb := range m.NativeBindings {
		m.nativesByName.put(nb.Name, i)
	}
	m.globalsByName = newNameIndex(len(m.Globals))
	for i, g := range m.Globals {
		m.globalsByName.put(g.Name, i)
	}
}

// Validate re-checks the §3.7 invariants: that every cross-reference in
// every function's code indexes a valid target. It is used by tests, by the
// optimizer and by pulsarc's check command to catch internal bugs early,
// never as part of normal control flow.
func (m *Module) Validate() error {
	if len(m.NativeFunctions) != len(m.NativeBindings) {
		return errInvariant("native_functions.len() != native_bindings.len()")
	}
	for _, fn := range m.Functions {
		for _, insn := range fn.Code {
			if err := m.validateInstruction(insn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Module) validateInstruction(insn Instruction) error {
	switch {
	case insn.Opcode.ReferencesFunction():
		if insn.Arg0 < 0 || int(insn.Arg0) >= len(m.Functions) {
			return errInvariant("function reference out of bounds")
		}
	case insn.Opcode.ReferencesNative():
		if insn.Arg0 < 0 || int(insn.Arg0) >= len(m.NativeBindings) {
			return errInvariant("native reference out of bounds")
		}
	case insn.Opcode.ReferencesGlobal():
		if insn.Arg0 < 0 || int(insn.Arg0) >= len(m.Globals) {
			return errInvariant("global reference out of bounds")
		}
	case insn.Opcode.ReferencesConstant():
		if insn.Arg0 < 0 || int(insn.Arg0) >= len(m.Constants) {
			return errInvariant("constant reference out of bounds")
		}
	}
	return nil
}

type invariantError string

func (e invariantError) Error() string { return string(e) }

func errInvariant(msg string) error { return invariantError(msg) }
