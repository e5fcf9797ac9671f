package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsar-lang/pulsar/lang/interp"
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/value"
)

func mustCode(ops ...module.Instruction) []module.Instruction { return ops }

func op(o module.Opcode) module.Instruction            { return module.Instruction{Opcode: o} }
func opA(o module.Opcode, arg int64) module.Instruction { return module.Instruction{Opcode: o, Arg0: arg} }

// TestInterpAddsTwoIntegers covers spec §8's "1 2 + ." scenario: arity-2,
// returns-1 function computing an integer sum.
func TestInterpAddsTwoIntegers(t *testing.T) {
	mod := module.New()
	fn := &module.FunctionDefinition{
		Name:       "add",
		Arity:      2,
		Returns:    1,
		StackArity: 1,
		Code: mustCode(
			opA(module.PushLocal, 0),
			opA(module.PushLocal, 1),
			op(module.DynSum),
			op(module.Return),
		),
		LocalsCount: 2,
	}
	mod.AppendFunction(fn)

	ctx := interp.New(mod)
	ctx.Push(value.Int(1))
	ctx.Push(value.Int(2))
	require.True(t, ctx.CallFunction(0).IsOK())
	require.True(t, ctx.Run().IsOK())

	stack := ctx.RootStack()
	require.Len(t, stack, 1)
	assert.Equal(t, int64(3), stack[0].AsInt())
}

// TestInterpRecursiveFactorial covers a recursive bytecode function calling
// itself through Call, matching spec §8's factorial scenario.
func TestInterpRecursiveFactorial(t *testing.T) {
	mod := module.New()
	fact := &module.FunctionDefinition{
		Name:        "fact",
		Arity:       1,
		Returns:     1,
		StackArity:  2,
		LocalsCount: 1,
	}
	idx := mod.AppendFunction(fact)

	// fact(n): if n <= 0: push 1; return
	//          else: push n; push n-1; call fact; *; return
	//
	// JumpIfGreaterThanZero's target is (instruction index 1) + arg0; arg0=3
	// lands on instruction index 4, the "else" branch.
	fact.Code = mustCode(
		opA(module.PushLocal, 0),
		opA(module.JumpIfGreaterThanZero, 3),
		opA(module.PushInt, 1),
		op(module.Return),
		opA(module.PushLocal, 0),
		opA(module.PushLocal, 0),
		opA(module.PushInt, 1),
		op(module.DynSub),
		opA(module.Call, int64(idx)),
		op(module.DynMul),
		op(module.Return),
	)

	ctx := interp.New(mod)
	ctx.Push(value.Int(5))
	require.True(t, ctx.CallFunction(idx).IsOK())
	require.True(t, ctx.Run().IsOK())

	stack := ctx.RootStack()
	require.Len(t, stack, 1)
	assert.Equal(t, int64(120), stack[0].AsInt())
}

// TestInterpGlobalReadWrite covers PushGlobal/CopyIntoGlobal and the
// WritingOnConstantGlobal fault for writes to a constant global.
func TestInterpGlobalReadWrite(t *testing.T) {
	mod := module.New()
	gIdx := mod.AppendGlobal(&module.GlobalDefinition{Name: "counter", InitialValue: value.Int(41)})
	cIdx := mod.AppendGlobal(&module.GlobalDefinition{Name: "pi", InitialValue: value.Int(3), IsConstant: true})

	incr := &module.FunctionDefinition{
		Name:       "incr",
		Returns:    1,
		StackArity: 1,
		Code: mustCode(
			opA(module.PushGlobal, int64(gIdx)),
			opA(module.PushInt, 1),
			op(module.DynSum),
			opA(module.CopyIntoGlobal, int64(gIdx)),
			op(module.Return),
		),
	}
	mod.AppendFunction(incr)

	ctx := interp.New(mod)
	require.True(t, ctx.CallFunction(0).IsOK())
	require.True(t, ctx.Run().IsOK())
	stack := ctx.RootStack()
	require.Len(t, stack, 1)
	assert.Equal(t, int64(42), stack[0].AsInt())

	g, rs := ctx.Global(gIdx)
	require.True(t, rs.IsOK())
	assert.Equal(t, int64(42), g.AsInt())

	rs = ctx.SetGlobal(cIdx, value.Int(4))
	assert.Equal(t, module.WritingOnConstantGlobal, rs)
}

// TestInterpUnboundNativeFaults covers CallNative against a declared-but-
// unbound native binding.
func TestInterpUnboundNativeFaults(t *testing.T) {
	mod := module.New()
	mod.AppendNativeBinding(&module.NativeBinding{Name: "log", Arity: 1, Returns: 0})
	caller := &module.FunctionDefinition{
		Name:    "callsLog",
		Returns: 0,
		Code: mustCode(
			op(module.PushEmptyList),
			opA(module.CallNative, 0),
			op(module.Return),
		),
	}
	mod.AppendFunction(caller)

	ctx := interp.New(mod)
	require.True(t, ctx.CallFunction(0).IsOK())
	assert.Equal(t, module.UnboundNativeFunction, ctx.Run())
}

// TestInterpNativeFunctionManipulatesStack covers a bound native reading an
// argument off its frame's stack via NativeContext and pushing a result.
func TestInterpNativeFunctionManipulatesStack(t *testing.T) {
	mod := module.New()
	mod.DeclareAndBindNative("double", 1, 1, 0, func(ctx module.NativeContext) module.RuntimeState {
		v, rs := ctx.Pop()
		if !rs.IsOK() {
			return rs
		}
		ctx.Push(value.Int(v.AsInt() * 2))
		return module.OK
	})
	caller := &module.FunctionDefinition{
		Name:       "caller",
		Returns:    1,
		StackArity: 1,
		Code: mustCode(
			opA(module.PushInt, 21),
			opA(module.CallNative, 0),
			op(module.Return),
		),
	}
	idx := mod.AppendFunction(caller)

	ctx := interp.New(mod)
	require.True(t, ctx.CallFunction(idx).IsOK())
	require.True(t, ctx.Run().IsOK())
	stack := ctx.RootStack()
	require.Len(t, stack, 1)
	assert.Equal(t, int64(42), stack[0].AsInt())
}

// TestInterpListOps covers PushEmptyList/Append/Head/Length.
func TestInterpListOps(t *testing.T) {
	mod := module.New()
	// Build the list [1, 2], stash it in a local, then push its Length, its
	// Head, and finally the list itself via PushLocal, exercising
	// PushEmptyList/Append/Length/Head together.
	fn := &module.FunctionDefinition{
		Name:        "build",
		Returns:     3,
		StackArity:  3,
		LocalsCount: 3, // 0: the list, 1: its length, 2: its head
		Code: mustCode(
			op(module.PushEmptyList),
			opA(module.PushInt, 1),
			op(module.Append),
			opA(module.PushInt, 2),
			op(module.Append),
			opA(module.PopIntoLocal, 0),
			opA(module.PushLocal, 0),
			op(module.Length),
			opA(module.PopIntoLocal, 1),
			op(module.Head), // leaves the (now fronted) list copy under the popped head; Return's arity drops it
			opA(module.PopIntoLocal, 2),
			opA(module.PushLocal, 1),
			opA(module.PushLocal, 2),
			opA(module.PushLocal, 0),
			op(module.Return),
		),
	}
	mod.AppendFunction(fn)

	ctx := interp.New(mod)
	require.True(t, ctx.CallFunction(0).IsOK())
	require.True(t, ctx.Run().IsOK())

	stack := ctx.RootStack()
	require.Len(t, stack, 3)
	assert.Equal(t, int64(2), stack[0].AsInt())   // Length
	assert.Equal(t, int64(1), stack[1].AsInt())   // Head
	assert.Equal(t, value.List, stack[2].Kind())  // the list itself
	assert.Equal(t, 2, stack[2].AsList().Len())
}
