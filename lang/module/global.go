package module

import "github.com/pulsar-lang/pulsar/lang/value"

// GlobalDefinition is a compiled global: its name, the compile-time value it
// was initialized to, and whether it is write-protected.
type GlobalDefinition struct {
	Name         string
	InitialValue value.Value
	IsConstant   bool
	DebugSymbol  *GlobalDebugSymbol
}

// GlobalInstance is the per-ExecutionContext runtime counterpart of a
// GlobalDefinition, produced by deep-copying InitialValue when the context is
// built.
type GlobalInstance struct {
	Value      value.Value
	IsConstant bool
}
