package module

// RuntimeState is the closed error taxonomy produced by running the
// interpreter (§4.4) and by native functions. It lives in this package,
// rather than in lang/interp, purely so NativeFunction (declared here) does
// not force every native implementation to import the interpreter package —
// the two are otherwise the same concept, and lang/interp re-exports this
// type under its own name for ergonomic use at call sites.
type RuntimeState uint8

//nolint:revive
const (
	OK RuntimeState = iota
	Error
	TypeError
	StackOverflow // produced only when a maximum call-stack depth is set (interp.WithMaxCallStackDepth)
	StackUnderflow
	OutOfBoundsConstantIndex
	OutOfBoundsLocalIndex
	OutOfBoundsGlobalIndex
	WritingOnConstantGlobal
	OutOfBoundsFunctionIndex
	CallStackUnderflow
	NativeFunctionBindingsMismatch
	UnboundNativeFunction
	FunctionNotFound
	ListIndexOutOfBounds
	StringIndexOutOfBounds
	NoCustomTypeGlobalData
	InvalidCustomTypeHandle
	InvalidCustomTypeReference
)

var runtimeStateNames = [...]string{
	OK:                             "OK",
	Error:                          "Error",
	TypeError:                      "TypeError",
	StackOverflow:                  "StackOverflow",
	StackUnderflow:                 "StackUnderflow",
	OutOfBoundsConstantIndex:       "OutOfBoundsConstantIndex",
	OutOfBoundsLocalIndex:          "OutOfBoundsLocalIndex",
	OutOfBoundsGlobalIndex:         "OutOfBoundsGlobalIndex",
	WritingOnConstantGlobal:        "WritingOnConstantGlobal",
	OutOfBoundsFunctionIndex:       "OutOfBoundsFunctionIndex",
	CallStackUnderflow:             "CallStackUnderflow",
	NativeFunctionBindingsMismatch: "NativeFunctionBindingsMismatch",
	UnboundNativeFunction:          "UnboundNativeFunction",
	FunctionNotFound:               "FunctionNotFound",
	ListIndexOutOfBounds:           "ListIndexOutOfBounds",
	StringIndexOutOfBounds:         "StringIndexOutOfBounds",
	NoCustomTypeGlobalData:         "NoCustomTypeGlobalData",
	InvalidCustomTypeHandle:        "InvalidCustomTypeHandle",
	InvalidCustomTypeReference:     "InvalidCustomTypeReference",
}

func (s RuntimeState) String() string {
	if int(s) < len(runtimeStateNames) {
		return runtimeStateNames[s]
	}
	return "unknown RuntimeState"
}

// IsOK reports whether s represents successful execution.
func (s RuntimeState) IsOK() bool { return s == OK }

// Error implements the error interface so RuntimeState can be returned
// through ordinary Go error-handling paths when convenient.
func (s RuntimeState) Error() string { return s.String() }
