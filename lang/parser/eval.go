package parser

import (
	"github.com/pulsar-lang/pulsar/lang/interp"
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/value"
)

// evalCompileTime runs def (a synthetic, zero-arity, one-return function
// already fully coded) against a fresh ExecutionContext seeded from mod's
// current globals, and returns the single value left on the result stack.
// Used by parseGlobalDefinition to turn a global's lvalue expression into a
// concrete initial value.
func evalCompileTime(mod *module.Module, def *module.FunctionDefinition) (value.Value, bool) {
	ctx := interp.New(mod)
	v, rs := ctx.RunFunction(def, nil)
	if !rs.IsOK() || v.Kind() == value.Void {
		return v, false
	}
	return v, true
}
