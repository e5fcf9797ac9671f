package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/optimizer"
	"github.com/pulsar-lang/pulsar/lang/value"
)

func op(o module.Opcode) module.Instruction            { return module.Instruction{Opcode: o} }
func opA(o module.Opcode, arg int64) module.Instruction { return module.Instruction{Opcode: o, Arg0: arg} }

// buildModule wires up: main (exported) -> helper -> leaf, plus an
// unreachable dead function, an unreachable dead native, and an
// unreachable dead global, so a single run exercises mark+compact+remap
// across every axis at once.
func buildModule() *module.Module {
	mod := module.New()

	mod.AppendFunction(&module.FunctionDefinition{
		Name: "leaf", Returns: 1,
		Code: []module.Instruction{opA(module.PushInt, 42), op(module.Return)},
	})
	mod.AppendFunction(&module.FunctionDefinition{
		Name: "dead", Returns: 1,
		Code: []module.Instruction{opA(module.PushInt, 0), op(module.Return)},
	})
	mod.AppendFunction(&module.FunctionDefinition{
		Name: "helper", Returns: 1,
		Code: []module.Instruction{
			opA(module.Call, 0), // leaf
			opA(module.CallNative, 1),
			opA(module.PushGlobal, 1),
			op(module.Return),
		},
	})
	mod.AppendFunction(&module.FunctionDefinition{
		Name: "main", Returns: 1,
		Code: []module.Instruction{
			opA(module.Call, 2), // helper
			op(module.Return),
		},
	})

	mod.AppendNativeBinding(&module.NativeBinding{Name: "dead_native", Returns: 1})
	mod.AppendNativeBinding(&module.NativeBinding{Name: "used_native", Returns: 1})
	mod.NativeFunctions[0] = func(module.NativeContext) module.RuntimeState { return module.OK }
	mod.NativeFunctions[1] = func(module.NativeContext) module.RuntimeState { return module.OK }

	mod.AppendGlobal(&module.GlobalDefinition{Name: "dead_global", InitialValue: value.Int(1)})
	mod.AppendGlobal(&module.GlobalDefinition{Name: "used_global", InitialValue: value.Int(2)})

	return mod
}

func TestOptimizeKeepsOnlyReachableDefinitions(t *testing.T) {
	mod := buildModule()

	err := optimizer.Optimize(mod, optimizer.Settings{
		IsExportedFunction: optimizer.ExportedFunctionNames(mod, []string{"main"}),
	})
	require.NoError(t, err)

	require.Len(t, mod.Functions, 3)
	names := []string{mod.Functions[0].Name, mod.Functions[1].Name, mod.Functions[2].Name}
	assert.ElementsMatch(t, []string{"leaf", "helper", "main"}, names)

	require.Len(t, mod.NativeBindings, 1)
	assert.Equal(t, "used_native", mod.NativeBindings[0].Name)
	require.Len(t, mod.NativeFunctions, 1)
	assert.NotNil(t, mod.NativeFunctions[0])

	require.Len(t, mod.Globals, 1)
	assert.Equal(t, "used_global", mod.Globals[0].Name)

	// Every surviving reference must still point at a valid index after
	// the remap, which Validate would catch otherwise.
	require.NoError(t, mod.Validate())

	// Name lookups must reflect the compacted module, not the pre-optimize
	// one, confirming RebuildNameIndex ran.
	assert.NotEqual(t, module.InvalidIndex, mod.FindFunctionByName("main"))
	assert.Equal(t, module.InvalidIndex, mod.FindFunctionByName("dead"))
	assert.Equal(t, module.InvalidIndex, mod.FindNativeByName("dead_native"))
	assert.Equal(t, module.InvalidIndex, mod.FindGlobalByName("dead_global"))
}

func TestOptimizeWithNilExportedFunctionKeepsNothing(t *testing.T) {
	mod := buildModule()

	err := optimizer.Optimize(mod, optimizer.Settings{})
	require.NoError(t, err)

	assert.Empty(t, mod.Functions)
	assert.Empty(t, mod.NativeBindings)
	assert.Empty(t, mod.Globals)
}

func TestOptimizeCanExportNativesAndGlobalsIndependently(t *testing.T) {
	mod := buildModule()

	err := optimizer.Optimize(mod, optimizer.Settings{
		IsExportedNative: optimizer.ExportedNativeNames(mod, []string{"dead_native"}),
		IsExportedGlobal: optimizer.ExportedGlobalNames(mod, []string{"dead_global"}),
	})
	require.NoError(t, err)

	assert.Empty(t, mod.Functions)
	require.Len(t, mod.NativeBindings, 1)
	assert.Equal(t, "dead_native", mod.NativeBindings[0].Name)
	require.Len(t, mod.Globals, 1)
	assert.Equal(t, "dead_global", mod.Globals[0].Name)
}

func TestOptimizeRejectsModuleWithBadReference(t *testing.T) {
	mod := module.New()
	mod.AppendFunction(&module.FunctionDefinition{
		Name: "main", Returns: 1,
		Code: []module.Instruction{opA(module.Call, 99), op(module.Return)},
	})

	err := optimizer.Optimize(mod, optimizer.Settings{
		IsExportedFunction: optimizer.ExportedFunctionNames(mod, []string{"main"}),
	})
	assert.Error(t, err)
	// mod is left untouched: Validate runs before any mutation.
	assert.Len(t, mod.Functions, 1)
}
