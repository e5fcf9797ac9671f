package hostnative_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsar-lang/pulsar/internal/hostnative"
	"github.com/pulsar-lang/pulsar/lang/interp"
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/value"
)

func op(o module.Opcode) module.Instruction            { return module.Instruction{Opcode: o} }
func opA(o module.Opcode, arg int64) module.Instruction { return module.Instruction{Opcode: o, Arg0: arg} }

func TestBindWritesDisplayFormOfArgument(t *testing.T) {
	mod := module.New()
	nativeIdx := mod.AppendNativeBinding(&module.NativeBinding{Name: "println!", Arity: 1, Returns: 0})

	var buf bytes.Buffer
	hostnative.Bind(mod, &buf)
	require.NotNil(t, mod.NativeFunctions[nativeIdx])

	constIdx := mod.AppendConstant(value.Str("hello"))
	fn := &module.FunctionDefinition{
		Name: "greet",
		Code: []module.Instruction{
			opA(module.PushConst, int64(constIdx)),
			opA(module.CallNative, int64(nativeIdx)),
			op(module.Return),
		},
	}
	mod.AppendFunction(fn)

	ctx := interp.New(mod)
	require.True(t, ctx.CallFunction(0).IsOK())
	require.True(t, ctx.Run().IsOK())

	assert.Equal(t, "hello\n", buf.String())
}

func TestBindLeavesUnmatchedSignaturesUnbound(t *testing.T) {
	mod := module.New()
	// Declared with a different arity: the signature doesn't match, so Bind
	// must not touch it.
	idx := mod.AppendNativeBinding(&module.NativeBinding{Name: "println!", Arity: 2, Returns: 0})

	var buf bytes.Buffer
	hostnative.Bind(mod, &buf)

	assert.Nil(t, mod.NativeFunctions[idx])
}
