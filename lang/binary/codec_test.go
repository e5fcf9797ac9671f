package binary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsar-lang/pulsar/lang/binary"
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/token"
	"github.com/pulsar-lang/pulsar/lang/value"
)

func buildModule(t *testing.T) *module.Module {
	t.Helper()
	mod := module.New()

	list := value.NewValueList()
	list.Append(value.Int(1))
	list.Append(value.Str("two"))

	mod.AppendConstant(value.Str("hello"))
	mod.AppendConstant(value.Lst(list))
	mod.AppendConstant(value.Dbl(3.5))

	mod.AppendFunction(&module.FunctionDefinition{
		Name: "leaf", Returns: 1,
		Code: []module.Instruction{
			{Opcode: module.PushInt, Arg0: -7},
			{Opcode: module.Return},
		},
		DebugSymbol: &module.FunctionDebugSymbol{
			NameToken: token.Token{Kind: token.IDENT, Pos: token.SourcePosition{Line: 1, Char: 3}},
			SourceIdx: 0,
		},
		CodeDebugSymbol: []module.CodeDebugSymbol{
			{Tok: token.Token{Kind: token.INT, Pos: token.SourcePosition{Line: 1, Char: 5}}, CodeStartIndex: 0},
		},
	})
	mod.AppendFunction(&module.FunctionDefinition{
		Name: "main", Arity: 0, Returns: 1, StackArity: 2, LocalsCount: 1,
		Code: []module.Instruction{
			{Opcode: module.Call, Arg0: 0},
			{Opcode: module.CallNative, Arg0: 0},
			{Opcode: module.PushGlobal, Arg0: 0},
			{Opcode: module.PushConst, Arg0: 1},
			{Opcode: module.Return},
		},
	})

	mod.AppendNativeBinding(&module.NativeBinding{Name: "print", Arity: 1, Returns: 0})

	mod.AppendGlobal(&module.GlobalDefinition{
		Name: "counter", InitialValue: value.Int(42),
		DebugSymbol: &module.GlobalDebugSymbol{
			NameToken: token.Token{Kind: token.IDENT, Pos: token.SourcePosition{Line: 2, Char: 1}},
		},
	})
	mod.AppendGlobal(&module.GlobalDefinition{Name: "pi", InitialValue: value.Dbl(3.14), IsConstant: true})

	mod.SourceDebugSymbols = []module.SourceDebugSymbol{
		{Path: "main.pr", SourceText: "* (main) -> 1 : 1 . ."},
	}

	return mod
}

func TestWriteReadRoundTrip(t *testing.T) {
	mod := buildModule(t)

	data := binary.Write(mod, binary.DefaultWriteSettings)
	require.NotEmpty(t, data)
	assert.Equal(t, binary.Signature[:], data[:4])

	got, rr := binary.Read(data, binary.DefaultReadSettings)
	require.True(t, rr.IsOK(), "read failed: %v", rr)
	require.NotNil(t, got)

	require.Len(t, got.Functions, 2)
	assert.Equal(t, "leaf", got.Functions[0].Name)
	assert.Equal(t, mod.Functions[0].Code, got.Functions[0].Code)
	require.NotNil(t, got.Functions[0].DebugSymbol)
	assert.Equal(t, token.IDENT, got.Functions[0].DebugSymbol.NameToken.Kind)
	require.Len(t, got.Functions[0].CodeDebugSymbol, 1)

	assert.Equal(t, "main", got.Functions[1].Name)
	assert.Equal(t, 2, got.Functions[1].StackArity)
	assert.Equal(t, 1, got.Functions[1].LocalsCount)

	require.Len(t, got.NativeBindings, 1)
	assert.Equal(t, "print", got.NativeBindings[0].Name)
	require.Len(t, got.NativeFunctions, 1)
	assert.Nil(t, got.NativeFunctions[0])

	require.Len(t, got.Globals, 2)
	assert.Equal(t, "counter", got.Globals[0].Name)
	assert.False(t, got.Globals[0].IsConstant)
	assert.True(t, got.Globals[0].InitialValue.Equals(value.Int(42)))
	require.NotNil(t, got.Globals[0].DebugSymbol)
	assert.Equal(t, "pi", got.Globals[1].Name)
	assert.True(t, got.Globals[1].IsConstant)
	assert.True(t, got.Globals[1].InitialValue.Equals(value.Dbl(3.14)))

	require.Len(t, got.Constants, 3)
	assert.True(t, got.Constants[0].Equals(value.Str("hello")))
	assert.Equal(t, value.List, got.Constants[1].Kind())
	assert.Equal(t, 2, got.Constants[1].AsList().Len())
	assert.True(t, got.Constants[2].Equals(value.Dbl(3.5)))

	require.Len(t, got.SourceDebugSymbols, 1)
	assert.Equal(t, "main.pr", got.SourceDebugSymbols[0].Path)

	// Name lookups must work post-decode: readModule rebuilds the index.
	assert.Equal(t, 1, got.FindFunctionByName("main"))
	assert.Equal(t, 0, got.FindNativeByName("print"))
	assert.Equal(t, 1, got.FindGlobalByName("pi"))

	require.NoError(t, got.Validate())
}

func TestWriteReadOmitsDebugSymbolsWhenDisabled(t *testing.T) {
	mod := buildModule(t)

	data := binary.Write(mod, binary.WriteSettings{StoreDebugSymbols: false})
	got, rr := binary.Read(data, binary.DefaultReadSettings)
	require.True(t, rr.IsOK())

	assert.Nil(t, got.Functions[0].DebugSymbol)
	assert.Empty(t, got.Functions[0].CodeDebugSymbol)
	assert.Nil(t, got.Globals[0].DebugSymbol)
	assert.Empty(t, got.SourceDebugSymbols)
}

func TestReadRejectsBadSignature(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0, 0, 0, 0}
	_, rr := binary.Read(data, binary.DefaultReadSettings)
	assert.Equal(t, binary.ReadInvalidSignature, rr)
}

func TestReadRejectsTruncatedData(t *testing.T) {
	mod := buildModule(t)
	data := binary.Write(mod, binary.DefaultWriteSettings)

	_, rr := binary.Read(data[:len(data)-3], binary.DefaultReadSettings)
	assert.False(t, rr.IsOK())
}

func TestReadRejectsUnsupportedVersion(t *testing.T) {
	mod := module.New()
	data := binary.Write(mod, binary.DefaultWriteSettings)
	// Format version is the 4 bytes right after the signature.
	data[4] = 0xFF
	_, rr := binary.Read(data, binary.DefaultReadSettings)
	assert.Equal(t, binary.ReadUnsupportedVersion, rr)
}

func TestEmptyModuleRoundTrips(t *testing.T) {
	mod := module.New()
	data := binary.Write(mod, binary.DefaultWriteSettings)
	got, rr := binary.Read(data, binary.DefaultReadSettings)
	require.True(t, rr.IsOK())
	assert.Empty(t, got.Functions)
	assert.Empty(t, got.NativeBindings)
	assert.Empty(t, got.Globals)
	assert.Empty(t, got.Constants)
}
