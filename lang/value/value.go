// Package value implements Pulsar's runtime value model: a closed tagged sum
// type plus the owned linked list used for the List variant.
package value

import (
	"fmt"
	"math"
)

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	Void Kind = iota
	Integer
	Double
	FunctionReference
	NativeFunctionReference
	List
	String
	Custom
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Integer:
		return "int"
	case Double:
		return "double"
	case FunctionReference:
		return "function-reference"
	case NativeFunctionReference:
		return "native-function-reference"
	case List:
		return "list"
	case String:
		return "string"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the tagged sum type every Pulsar runtime value is built from. It
// is a value type: copying a Value that holds a List or String deep-copies
// the payload, and copying one holding Custom shares the underlying holder
// by reference count (see CustomValue).
//
// Integer arithmetic wraps on overflow (native 64-bit wraparound), matching
// the reference implementation's observable behavior.
type Value struct {
	kind   Kind
	i      int64
	d      float64
	s      []byte
	lst    *ValueList
	custom *CustomValue
}

// VoidValue returns the default-constructed value.
func VoidValue() Value { return Value{kind: Void} }

func Int(i int64) Value    { return Value{kind: Integer, i: i} }
func Dbl(d float64) Value  { return Value{kind: Double, d: d} }
func FnRef(i int64) Value  { return Value{kind: FunctionReference, i: i} }
func NativeRef(i int64) Value {
	return Value{kind: NativeFunctionReference, i: i}
}

// Str returns a String value that owns a copy of s.
func Str(s string) Value {
	b := make([]byte, len(s))
	copy(b, s)
	return Value{kind: String, s: b}
}

// StrBytes returns a String value that takes ownership of b without copying;
// callers must not mutate b afterwards.
func StrBytes(b []byte) Value { return Value{kind: String, s: b} }

// Lst returns a List value wrapping l. l becomes owned by the returned Value.
func Lst(l *ValueList) Value {
	if l == nil {
		l = NewValueList()
	}
	return Value{kind: List, lst: l}
}

// Cust returns a Custom value referencing cv (shared by reference count).
func Cust(cv *CustomValue) Value { return Value{kind: Custom, custom: cv} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsVoid() bool { return v.kind == Void }

func (v Value) AsInt() int64     { return v.i }
func (v Value) AsDouble() float64 { return v.d }
func (v Value) AsBytes() []byte  { return v.s }
func (v Value) AsString() string { return string(v.s) }
func (v Value) AsList() *ValueList { return v.lst }
func (v Value) AsCustom() *CustomValue { return v.custom }

// TypeID returns the custom type id for a Custom value, or 0 otherwise.
func (v Value) TypeID() uint64 {
	if v.kind == Custom && v.custom != nil {
		return v.custom.TypeID
	}
	return 0
}

// Copy deep-copies the payload of a List or String value; other kinds are
// already value types and Custom shares its holder by reference count.
func (v Value) Copy() Value {
	switch v.kind {
	case List:
		return Lst(v.lst.Clone())
	case String:
		b := make([]byte, len(v.s))
		copy(b, v.s)
		return Value{kind: String, s: b}
	default:
		return v
	}
}

// Equals implements Pulsar's structural equality: numeric values compare by
// payload, lists compare element-wise, custom values compare equal iff both
// TypeID and the held reference identity match.
func (v Value) Equals(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Void:
		return true
	case Integer, FunctionReference, NativeFunctionReference:
		return v.i == o.i
	case Double:
		return v.d == o.d
	case String:
		return string(v.s) == string(o.s)
	case List:
		return v.lst.Equals(o.lst)
	case Custom:
		return v.custom.TypeID == o.custom.TypeID && v.custom.Identity() == o.custom.Identity()
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case Void:
		return "void"
	case Integer:
		return fmt.Sprintf("%d", v.i)
	case Double:
		return formatDouble(v.d)
	case FunctionReference:
		return fmt.Sprintf("<&%d>", v.i)
	case NativeFunctionReference:
		return fmt.Sprintf("<&*%d>", v.i)
	case String:
		return string(v.s)
	case List:
		return v.lst.String()
	case Custom:
		return fmt.Sprintf("custom(%d, %p)", v.custom.TypeID, v.custom.Identity())
	default:
		return "?"
	}
}

func formatDouble(d float64) string {
	if math.IsInf(d, 1) {
		return "inf"
	}
	if math.IsInf(d, -1) {
		return "-inf"
	}
	if math.IsNaN(d) {
		return "nan"
	}
	return fmt.Sprintf("%g", d)
}
