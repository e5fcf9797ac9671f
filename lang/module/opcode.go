package module

import "fmt"

// Opcode enumerates every bytecode instruction the interpreter understands.
// The set is closed; see §4.4 of the language specification for the full
// operand/stack-effect table.
type Opcode uint8

//nolint:revive
const (
	PushInt Opcode = iota
	PushDbl
	PushConst
	PushLocal
	MoveLocal
	PopIntoLocal
	CopyIntoLocal
	PushGlobal
	MoveGlobal
	PopIntoGlobal
	CopyIntoGlobal
	PushEmptyList
	PushFunctionReference
	PushNativeFunctionReference
	Call
	CallNative
	ICall
	Return
	DynSum
	DynSub
	DynMul
	DynDiv
	Mod
	BitAnd
	BitOr
	BitXor
	BitNot
	BitShiftLeft
	BitShiftRight
	Floor
	Ceil
	Compare
	Jump
	JumpIfZero
	JumpIfNotZero
	JumpIfGreaterThanZero
	JumpIfGreaterThanOrEqualToZero
	JumpIfLessThanZero
	JumpIfLessThanOrEqualToZero
	Length
	IsEmpty
	Prepend
	Append
	Concat
	Head
	Tail
	Index
	Prefix
	Suffix
	Substr

	opcodeMax
)

var opcodeNames = [...]string{
	PushInt:                        "PushInt",
	PushDbl:                        "PushDbl",
	PushConst:                      "PushConst",
	PushLocal:                      "PushLocal",
	MoveLocal:                      "MoveLocal",
	PopIntoLocal:                   "PopIntoLocal",
	CopyIntoLocal:                  "CopyIntoLocal",
	PushGlobal:                     "PushGlobal",
	MoveGlobal:                     "MoveGlobal",
	PopIntoGlobal:                  "PopIntoGlobal",
	CopyIntoGlobal:                 "CopyIntoGlobal",
	PushEmptyList:                  "PushEmptyList",
	PushFunctionReference:          "PushFunctionReference",
	PushNativeFunctionReference:    "PushNativeFunctionReference",
	Call:                           "Call",
	CallNative:                     "CallNative",
	ICall:                          "ICall",
	Return:                         "Return",
	DynSum:                         "DynSum",
	DynSub:                         "DynSub",
	DynMul:                         "DynMul",
	DynDiv:                         "DynDiv",
	Mod:                            "Mod",
	BitAnd:                         "BitAnd",
	BitOr:                          "BitOr",
	BitXor:                         "BitXor",
	BitNot:                         "BitNot",
	BitShiftLeft:                   "BitShiftLeft",
	BitShiftRight:                  "BitShiftRight",
	Floor:                          "Floor",
	Ceil:                           "Ceil",
	Compare:                        "Compare",
	Jump:                           "Jump",
	JumpIfZero:                     "JumpIfZero",
	JumpIfNotZero:                  "JumpIfNotZero",
	JumpIfGreaterThanZero:          "JumpIfGreaterThanZero",
	JumpIfGreaterThanOrEqualToZero: "JumpIfGreaterThanOrEqualToZero",
	JumpIfLessThanZero:             "JumpIfLessThanZero",
	JumpIfLessThanOrEqualToZero:    "JumpIfLessThanOrEqualToZero",
	Length:                         "Length",
	IsEmpty:                        "IsEmpty",
	Prepend:                        "Prepend",
	Append:                         "Append",
	Concat:                         "Concat",
	Head:                           "Head",
	Tail:                           "Tail",
	Index:                          "Index",
	Prefix:                         "Prefix",
	Suffix:                         "Suffix",
	Substr:                         "Substr",
}

var reverseLookupOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		if name != "" {
			m[name] = Opcode(op)
		}
	}
	return m
}()

// LookupOpcode resolves a mnemonic (as used by `(!opcode arg?)` direct
// instruction syntax) to its Opcode, reporting whether it is known.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	op, ok := reverseLookupOpcode[mnemonic]
	return op, ok
}

func (op Opcode) String() string {
	if op < opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", uint8(op))
}

// IsJump reports whether op is one of the Jump/JumpIf* family.
func (op Opcode) IsJump() bool {
	return op >= Jump && op <= JumpIfLessThanOrEqualToZero
}

// HasArg reports whether op carries an arg0 operand at all. Every Pulsar
// opcode happens to declare an Arg0 field (see Instruction), but only some
// are interpreted; this lists those. The binary codec writes Arg0 for every
// instruction regardless.
func (op Opcode) HasArg() bool {
	switch op {
	case PushInt, PushDbl, PushConst, PushLocal, MoveLocal, PopIntoLocal, CopyIntoLocal,
		PushGlobal, MoveGlobal, PopIntoGlobal, CopyIntoGlobal,
		PushFunctionReference, PushNativeFunctionReference,
		Call, CallNative:
		return true
	default:
		return op.IsJump()
	}
}

// ReferencesFunction reports whether Arg0 of an instruction with this opcode
// indexes into Module.Functions.
func (op Opcode) ReferencesFunction() bool {
	return op == Call || op == PushFunctionReference
}

// ReferencesNative reports whether Arg0 of an instruction with this opcode
// indexes into Module.NativeBindings.
func (op Opcode) ReferencesNative() bool {
	return op == CallNative || op == PushNativeFunctionReference
}

// ReferencesGlobal reports whether Arg0 of an instruction with this opcode
// indexes into Module.Globals.
func (op Opcode) ReferencesGlobal() bool {
	switch op {
	case PushGlobal, MoveGlobal, PopIntoGlobal, CopyIntoGlobal:
		return true
	}
	return false
}

// ReferencesConstant reports whether Arg0 of an instruction with this opcode
// indexes into Module.Constants.
func (op Opcode) ReferencesConstant() bool {
	return op == PushConst
}
