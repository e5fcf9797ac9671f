package module

import "github.com/pulsar-lang/pulsar/lang/value"

// CustomType is a host-registered custom value type: a stable id, a display
// name, and the factory the ExecutionContext uses to create the type's
// per-context instance data (see ExecutionContext construction, §3.8).
type CustomType struct {
	ID   uint64
	Name string
	// NewInstanceData, if non-nil, produces the per-ExecutionContext data for
	// this type (e.g. a registry of live handles); most custom types have no
	// such global state and leave this nil.
	NewInstanceData func() any
	// Fork, if non-nil, is attached to every value.CustomValue created for
	// this type, see value.CustomHolder.Fork.
	Fork func(any) any
}

// NewCustomValue wraps data as a Value of this custom type.
func (ct *CustomType) NewCustomValue(data any) value.Value {
	return value.Cust(value.NewCustomValue(ct.ID, data, ct.Fork))
}
