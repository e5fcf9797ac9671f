package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pulsar-lang/pulsar/lang/value"
)

func TestValueEquals(t *testing.T) {
	cases := []struct {
		name     string
		a, b     value.Value
		wantSame bool
	}{
		{"void", value.VoidValue(), value.VoidValue(), true},
		{"int-eq", value.Int(1), value.Int(1), true},
		{"int-neq", value.Int(1), value.Int(2), false},
		{"int-vs-double", value.Int(1), value.Dbl(1), false},
		{"string-eq", value.Str("abc"), value.Str("abc"), true},
		{"string-neq", value.Str("abc"), value.Str("abd"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.wantSame, tc.a.Equals(tc.b))
		})
	}
}

func TestValueCopyIsDeep(t *testing.T) {
	l := value.NewValueList()
	l.Append(value.Str("x"))
	v := value.Lst(l)

	cp := v.Copy()
	cp.AsList().Append(value.Str("y"))

	require.Equal(t, 1, v.AsList().Len())
	require.Equal(t, 2, cp.AsList().Len())
}

func TestCustomValueIdentityEquality(t *testing.T) {
	cv1 := value.NewCustomValue(7, "payload", nil)
	v1 := value.Cust(cv1)
	v2 := value.Cust(cv1.Share())
	require.True(t, v1.Equals(v2))

	cv3 := value.NewCustomValue(7, "payload", nil)
	v3 := value.Cust(cv3)
	require.False(t, v1.Equals(v3))

	cv4 := value.NewCustomValue(8, "payload", nil)
	v4 := value.Cust(cv4.Share())
	require.False(t, v1.Equals(v4))
}

func TestValueListPrependAppendRemoveConcat(t *testing.T) {
	l := value.NewValueList()
	l.Append(value.Int(2))
	l.Prepend(value.Int(1))
	l.Append(value.Int(3))
	require.Equal(t, "[1, 2, 3]", l.String())

	l.RemoveFront(1)
	require.Equal(t, "[2, 3]", l.String())

	other := value.NewValueList()
	other.Append(value.Int(4))
	other.Append(value.Int(5))
	l.Concat(other)
	require.Equal(t, "[2, 3, 4, 5]", l.String())
	require.True(t, other.Empty())
}

func TestCustomValueFork(t *testing.T) {
	cv := value.NewCustomValue(1, []int{1, 2, 3}, func(d any) any {
		src := d.([]int)
		cp := make([]int, len(src))
		copy(cp, src)
		return cp
	})
	forked := cv.Fork()
	require.NotSame(t, cv.Identity(), forked.Identity())

	shared := value.NewCustomValue(2, "x", nil)
	forkedShared := shared.Fork()
	require.Same(t, shared.Identity(), forkedShared.Identity())
}
