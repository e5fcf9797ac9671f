package interp

import (
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/value"
)

// frame is a single activation record, either for a bytecode function (fn
// non-nil) or a native callable (native non-nil); never both.
type frame struct {
	fn     *module.FunctionDefinition
	native *module.NativeBinding

	locals []value.Value
	stack  []value.Value
	pc     int
}

func newBytecodeFrame(fn *module.FunctionDefinition, args []value.Value) *frame {
	locals := make([]value.Value, fn.LocalsCount)
	copy(locals, args)
	return &frame{
		fn:     fn,
		locals: locals,
		stack:  make([]value.Value, 0, fn.StackArity+4),
	}
}

func newNativeFrame(nb *module.NativeBinding, args []value.Value) *frame {
	stack := make([]value.Value, len(args), nb.StackArity+len(args)+4)
	copy(stack, args)
	return &frame{
		native: nb,
		stack:  stack,
	}
}

func (f *frame) push(v value.Value) {
	f.stack = append(f.stack, v)
}

func (f *frame) pop() (value.Value, bool) {
	if len(f.stack) == 0 {
		return value.Value{}, false
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, true
}

func (f *frame) top() (value.Value, bool) {
	if len(f.stack) == 0 {
		return value.Value{}, false
	}
	return f.stack[len(f.stack)-1], true
}

// name returns the display name of the frame's callable, for stack traces.
func (f *frame) name() string {
	if f.fn != nil {
		return f.fn.Name
	}
	if f.native != nil {
		return f.native.Name
	}
	return "<unknown>"
}
