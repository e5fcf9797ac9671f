package module

import "github.com/pulsar-lang/pulsar/lang/value"

// FunctionDefinition is a compiled Pulsar function.
type FunctionDefinition struct {
	Name        string
	Arity       int // values consumed from the caller stack
	Returns     int // values produced on the caller stack
	StackArity  int // extra stack values visible to the callee beyond Arity
	LocalsCount int // total local slots, >= Arity
	Code        []Instruction

	DebugSymbol     *FunctionDebugSymbol
	CodeDebugSymbol []CodeDebugSymbol // sorted by CodeStartIndex
}

// Matches reports whether two definitions share the same call signature:
// name, arity, returns, stack arity and locals count.
func (f *FunctionDefinition) Matches(o *FunctionDefinition) bool {
	return f.Name == o.Name &&
		f.Arity == o.Arity &&
		f.Returns == o.Returns &&
		f.StackArity == o.StackArity &&
		f.LocalsCount == o.LocalsCount
}

// NativeBinding is a native function declaration: its call signature without
// any code, as parsed from a `* (* name args*) [-> N] .` declaration.
type NativeBinding struct {
	Name       string
	Arity      int
	Returns    int
	StackArity int
}

// Matches reports whether a binding's signature matches the given one.
func (b *NativeBinding) Matches(name string, arity, returns, stackArity int) bool {
	return b.Name == name && b.Arity == arity && b.Returns == returns && b.StackArity == stackArity
}

// NativeContext is the surface a NativeFunction needs from the running
// ExecutionContext: enough to read/write the caller's operand stack,
// globals and custom-type data directly, as specified by §5 ("native
// callables ... receive the full ExecutionContext by reference, and may
// manipulate the stack and globals directly"). lang/interp.ExecutionContext
// implements this interface; it is declared here, rather than there, so that
// Module (which stores bound NativeFunctions) never has to import the
// interpreter package.
type NativeContext interface {
	// Mod returns the Module the running context was instantiated from.
	Mod() *Module
	// StackLen returns the number of values on the current frame's operand
	// stack.
	StackLen() int
	// Push pushes v onto the current frame's operand stack.
	Push(v value.Value)
	// Pop pops and returns the top of the current frame's operand stack.
	// RuntimeState is StackUnderflow if the stack is empty.
	Pop() (value.Value, RuntimeState)
	// Global reads a global instance's value by index.
	Global(idx int) (value.Value, RuntimeState)
	// SetGlobal writes a global instance's value by index; fails with
	// WritingOnConstantGlobal if the global is constant.
	SetGlobal(idx int, v value.Value) RuntimeState
	// CustomData returns the ExecutionContext's instance data for a custom
	// type id, instantiated when the context was built from the Module's
	// registered CustomType factories.
	CustomData(typeID uint64) (any, bool)
}

// NativeFunction is a host-bound callable, invoked by CallNative/ICall. It
// must return OK or one of the other RuntimeState codes; on anything but OK,
// the interpreter halts exactly as it would for a fault in bytecode.
type NativeFunction func(ctx NativeContext) RuntimeState
