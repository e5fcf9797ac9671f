// Package hostnative illustrates binding host-provided natives onto a
// Module through the runtime's generic native-function hook (spec §1): the
// core never binds anything itself, leaving real FFI surfaces (time,
// filesystem, threads, a plug-in loader) as the host's problem. This package
// binds only print!/println!, grounded on the reference implementation's
// PulsarTools::Bindings::Print, to give cmd/pulsarc something to call and to
// show the shape a real binding package would take.
package hostnative

import (
	"fmt"
	"io"

	"github.com/pulsar-lang/pulsar/lang/module"
)

// Bind binds print!/println! (each arity 1, returns 0) to whichever native
// declarations in mod already match that signature, writing their argument's
// display form to w. It binds by signature (module.BindNativeFunction)
// rather than declaring anything itself: a source file that never declares
// `* (* print! v) .` simply gets nothing bound, the same as any other
// undeclared native — the host populates the hook, it does not create it.
func Bind(mod *module.Module, w io.Writer) {
	mod.BindNativeFunction("print!", 1, 0, 0, printNative(w, false))
	mod.BindNativeFunction("println!", 1, 0, 0, printNative(w, true))
}

func printNative(w io.Writer, newline bool) module.NativeFunction {
	return func(ctx module.NativeContext) module.RuntimeState {
		v, rs := ctx.Pop()
		if !rs.IsOK() {
			return rs
		}
		if newline {
			fmt.Fprintln(w, v.String())
		} else {
			fmt.Fprint(w, v.String())
		}
		return module.OK
	}
}
