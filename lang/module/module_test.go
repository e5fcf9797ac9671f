package module

import (
	"testing"

	"github.com/pulsar-lang/pulsar/lang/value"
)

func TestModuleAppendAndFindByName(t *testing.T) {
	m := New()

	fnIdx := m.AppendFunction(&FunctionDefinition{Name: "double", Arity: 1, Returns: 1, LocalsCount: 1})
	if got := m.FindFunctionByName("double"); got != fnIdx {
		t.Fatalf("FindFunctionByName(double) = %d, want %d", got, fnIdx)
	}
	if got := m.FindFunctionByName("missing"); got != InvalidIndex {
		t.Fatalf("FindFunctionByName(missing) = %d, want InvalidIndex", got)
	}

	nativeIdx := m.AppendNativeBinding(&NativeBinding{Name: "print", Arity: 1, Returns: 0})
	if got := m.FindNativeByName("print"); got != nativeIdx {
		t.Fatalf("FindNativeByName(print) = %d, want %d", got, nativeIdx)
	}
	if len(m.NativeFunctions) != len(m.NativeBindings) {
		t.Fatalf("NativeFunctions/NativeBindings length mismatch: %d != %d", len(m.NativeFunctions), len(m.NativeBindings))
	}
	if m.NativeFunctions[nativeIdx] != nil {
		t.Fatalf("freshly declared native binding should be unbound")
	}

	globalIdx := m.AppendGlobal(&GlobalDefinition{Name: "counter", InitialValue: value.Int(0)})
	if got := m.FindGlobalByName("counter"); got != globalIdx {
		t.Fatalf("FindGlobalByName(counter) = %d, want %d", got, globalIdx)
	}
}

func TestModuleBindNativeFunction(t *testing.T) {
	m := New()
	m.AppendNativeBinding(&NativeBinding{Name: "log", Arity: 1, Returns: 0})
	m.AppendNativeBinding(&NativeBinding{Name: "log", Arity: 2, Returns: 0})

	called := 0
	fn := NativeFunction(func(ctx NativeContext) RuntimeState {
		called++
		return OK
	})

	matched := m.BindNativeFunction("log", 1, 0, 0, fn)
	if matched != 1 {
		t.Fatalf("BindNativeFunction matched = %d, want 1", matched)
	}
	if m.NativeFunctions[0] == nil {
		t.Fatalf("expected binding 0 to be bound")
	}
	if m.NativeFunctions[1] != nil {
		t.Fatalf("expected binding 1 to remain unbound")
	}
}

func TestModuleAppendConstantAndFindConstant(t *testing.T) {
	m := New()
	idx := m.AppendConstant(value.Str("hello"))
	if got := m.FindConstant(value.Str("hello")); got != idx {
		t.Fatalf("FindConstant(hello) = %d, want %d", got, idx)
	}
	if got := m.FindConstant(value.Str("nope")); got != InvalidIndex {
		t.Fatalf("FindConstant(nope) = %d, want InvalidIndex", got)
	}
}

func TestModuleRegisterCustomType(t *testing.T) {
	m := New()
	ct := &CustomType{Name: "handle"}
	id := m.RegisterCustomType(ct)
	if id == 0 {
		t.Fatalf("RegisterCustomType assigned the reserved zero id")
	}
	if ct.ID != id {
		t.Fatalf("RegisterCustomType did not stamp ct.ID")
	}
	if m.CustomTypes[id] != ct {
		t.Fatalf("RegisterCustomType did not register ct under its id")
	}
}

func TestModuleRebuildNameIndex(t *testing.T) {
	m := New()
	m.Functions = append(m.Functions, &FunctionDefinition{Name: "f"})
	m.NativeBindings = append(m.NativeBindings, &NativeBinding{Name: "n"})
	m.NativeFunctions = append(m.NativeFunctions, nil)
	m.Globals = append(m.Globals, &GlobalDefinition{Name: "g"})

	m.RebuildNameIndex()

	if got := m.FindFunctionByName("f"); got != 0 {
		t.Fatalf("FindFunctionByName(f) = %d, want 0", got)
	}
	if got := m.FindNativeByName("n"); got != 0 {
		t.Fatalf("FindNativeByName(n) = %d, want 0", got)
	}
	if got := m.FindGlobalByName("g"); got != 0 {
		t.Fatalf("FindGlobalByName(g) = %d, want 0", got)
	}
}

func TestModuleValidateCatchesOutOfBoundsReferences(t *testing.T) {
	m := New()
	m.AppendFunction(&FunctionDefinition{
		Name: "bad",
		Code: []Instruction{{Opcode: PushConst, Arg0: 0}},
	})
	if err := m.Validate(); err == nil {
		t.Fatalf("expected Validate to reject a constant reference with no constants")
	}

	m.AppendConstant(value.Int(1))
	m.Functions[0].Code[0].Arg0 = 0
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
