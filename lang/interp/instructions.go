package interp

import (
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/value"
)

// dispatch executes exactly one instruction of fr, advancing its pc (or, for
// Call/CallNative/ICall, pushing a new frame onto the call stack). It
// follows the "in-flight error breaks the switch" shape: every case either
// falls through having pushed/popped what it needs, or returns a non-OK
// RuntimeState immediately.
func (ctx *ExecutionContext) dispatch(fr *frame) RuntimeState {
	pc := fr.pc
	insn := fr.fn.Code[pc]
	fr.pc++
	arg := int(insn.Arg0)

	switch insn.Opcode {
	case module.PushInt:
		fr.push(value.Int(insn.Arg0))

	case module.PushDbl:
		fr.push(value.Dbl(doubleFromBits(insn.Arg0)))

	case module.PushConst:
		if arg < 0 || arg >= len(ctx.mod.Constants) {
			return module.OutOfBoundsConstantIndex
		}
		fr.push(ctx.mod.Constants[arg].Copy())

	case module.PushLocal:
		v, rs := localAt(fr, arg)
		if !rs.IsOK() {
			return rs
		}
		fr.push(v.Copy())

	case module.MoveLocal:
		v, rs := localAt(fr, arg)
		if !rs.IsOK() {
			return rs
		}
		fr.locals[arg] = value.VoidValue()
		fr.push(v)

	case module.PopIntoLocal:
		v, ok := fr.pop()
		if !ok {
			return module.StackUnderflow
		}
		if arg < 0 || arg >= len(fr.locals) {
			return module.OutOfBoundsLocalIndex
		}
		fr.locals[arg] = v

	case module.CopyIntoLocal:
		v, ok := fr.top()
		if !ok {
			return module.StackUnderflow
		}
		if arg < 0 || arg >= len(fr.locals) {
			return module.OutOfBoundsLocalIndex
		}
		fr.locals[arg] = v.Copy()

	case module.PushGlobal:
		v, rs := ctx.Global(arg)
		if !rs.IsOK() {
			return rs
		}
		fr.push(v.Copy())

	case module.MoveGlobal:
		v, rs := ctx.Global(arg)
		if !rs.IsOK() {
			return rs
		}
		if rs := ctx.SetGlobal(arg, value.VoidValue()); !rs.IsOK() {
			return rs
		}
		fr.push(v)

	case module.PopIntoGlobal:
		v, ok := fr.pop()
		if !ok {
			return module.StackUnderflow
		}
		return ctx.SetGlobal(arg, v)

	case module.CopyIntoGlobal:
		v, ok := fr.top()
		if !ok {
			return module.StackUnderflow
		}
		return ctx.SetGlobal(arg, v.Copy())

	case module.PushEmptyList:
		fr.push(value.Lst(value.NewValueList()))

	case module.PushFunctionReference:
		if arg < 0 || arg >= len(ctx.mod.Functions) {
			return module.OutOfBoundsFunctionIndex
		}
		fr.push(value.FnRef(insn.Arg0))

	case module.PushNativeFunctionReference:
		if arg < 0 || arg >= len(ctx.mod.NativeBindings) {
			return module.OutOfBoundsFunctionIndex
		}
		fr.push(value.NativeRef(insn.Arg0))

	case module.Call:
		return ctx.enterFunction(ctx.mod.Functions[arg])

	case module.CallNative:
		return ctx.enterNative(arg)

	case module.ICall:
		ref, ok := fr.pop()
		if !ok {
			return module.StackUnderflow
		}
		switch ref.Kind() {
		case value.FunctionReference:
			idx := int(ref.AsInt())
			if idx < 0 || idx >= len(ctx.mod.Functions) {
				return module.OutOfBoundsFunctionIndex
			}
			return ctx.enterFunction(ctx.mod.Functions[idx])
		case value.NativeFunctionReference:
			idx := int(ref.AsInt())
			if idx < 0 || idx >= len(ctx.mod.NativeBindings) {
				return module.OutOfBoundsFunctionIndex
			}
			return ctx.enterNative(idx)
		default:
			return module.TypeError
		}

	case module.Return:
		fr.pc = len(fr.fn.Code)

	case module.DynSum:
		return binaryNumeric(fr, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	case module.DynSub:
		return binaryNumeric(fr, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	case module.DynMul:
		return binaryNumeric(fr, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	case module.DynDiv:
		return binaryNumericDiv(fr)

	case module.Mod:
		return binaryIntOp(fr, func(a, b int64) (int64, RuntimeState) {
			if b == 0 {
				return 0, module.Error
			}
			return a % b, module.OK
		})
	case module.BitAnd:
		return binaryIntOp(fr, func(a, b int64) (int64, RuntimeState) { return a & b, module.OK })
	case module.BitOr:
		return binaryIntOp(fr, func(a, b int64) (int64, RuntimeState) { return a | b, module.OK })
	case module.BitXor:
		return binaryIntOp(fr, func(a, b int64) (int64, RuntimeState) { return a ^ b, module.OK })
	case module.BitShiftLeft:
		return binaryIntOp(fr, func(a, b int64) (int64, RuntimeState) { return a << uint64(b), module.OK })
	case module.BitShiftRight:
		return binaryIntOp(fr, func(a, b int64) (int64, RuntimeState) { return a >> uint64(b), module.OK })

	case module.BitNot:
		v, ok := fr.pop()
		if !ok {
			return module.StackUnderflow
		}
		if v.Kind() != value.Integer {
			return module.TypeError
		}
		fr.push(value.Int(^v.AsInt()))

	case module.Floor:
		return unaryRound(fr, func(f float64) int64 { return int64(floorFloat(f)) })
	case module.Ceil:
		return unaryRound(fr, func(f float64) int64 { return int64(ceilFloat(f)) })

	case module.Compare:
		return opCompare(fr)

	case module.Jump, module.JumpIfZero, module.JumpIfNotZero,
		module.JumpIfGreaterThanZero, module.JumpIfGreaterThanOrEqualToZero,
		module.JumpIfLessThanZero, module.JumpIfLessThanOrEqualToZero:
		return opJump(fr, pc, insn.Opcode, insn.Arg0)

	case module.Length:
		v, ok := fr.top()
		if !ok {
			return module.StackUnderflow
		}
		n, rs := lengthOf(v)
		if !rs.IsOK() {
			return rs
		}
		fr.push(value.Int(n))

	case module.IsEmpty:
		v, ok := fr.top()
		if !ok {
			return module.StackUnderflow
		}
		n, rs := lengthOf(v)
		if !rs.IsOK() {
			return rs
		}
		if n == 0 {
			fr.push(value.Int(1))
		} else {
			fr.push(value.Int(0))
		}

	case module.Prepend:
		return opPrependAppend(fr, true)
	case module.Append:
		return opPrependAppend(fr, false)

	case module.Concat:
		b, ok := fr.pop()
		if !ok {
			return module.StackUnderflow
		}
		a, ok := fr.pop()
		if !ok {
			return module.StackUnderflow
		}
		if a.Kind() != value.List || b.Kind() != value.List {
			return module.TypeError
		}
		a.AsList().Concat(b.AsList())
		fr.push(a)

	case module.Head:
		v, ok := fr.pop()
		if !ok {
			return module.StackUnderflow
		}
		if v.Kind() != value.List {
			return module.TypeError
		}
		front, ok := v.AsList().Front()
		if !ok {
			return module.ListIndexOutOfBounds
		}
		v.AsList().RemoveFront(1)
		fr.push(v)
		fr.push(front)

	case module.Tail:
		v, ok := fr.pop()
		if !ok {
			return module.StackUnderflow
		}
		if v.Kind() != value.List {
			return module.TypeError
		}
		if v.AsList().Empty() {
			return module.ListIndexOutOfBounds
		}
		v.AsList().RemoveFront(1)
		fr.push(v)

	case module.Index:
		return opIndex(fr)

	case module.Prefix:
		return opPrefixSuffix(fr, true)
	case module.Suffix:
		return opPrefixSuffix(fr, false)

	case module.Substr:
		return opSubstr(fr)

	default:
		return module.Error
	}
	return module.OK
}

func localAt(fr *frame, idx int) (value.Value, RuntimeState) {
	if idx < 0 || idx >= len(fr.locals) {
		return value.Value{}, module.OutOfBoundsLocalIndex
	}
	return fr.locals[idx], module.OK
}

func popTwo(fr *frame) (a, b value.Value, ok bool) {
	b, ok = fr.pop()
	if !ok {
		return
	}
	a, ok = fr.pop()
	return
}

func binaryNumeric(fr *frame, intOp func(a, b int64) int64, fltOp func(a, b float64) float64) RuntimeState {
	a, b, ok := popTwo(fr)
	if !ok {
		return module.StackUnderflow
	}
	switch {
	case a.Kind() == value.Integer && b.Kind() == value.Integer:
		fr.push(value.Int(intOp(a.AsInt(), b.AsInt())))
	case isNumeric(a) && isNumeric(b):
		fr.push(value.Dbl(fltOp(asDouble(a), asDouble(b))))
	default:
		return module.TypeError
	}
	return module.OK
}

func binaryNumericDiv(fr *frame) RuntimeState {
	a, b, ok := popTwo(fr)
	if !ok {
		return module.StackUnderflow
	}
	if !isNumeric(a) || !isNumeric(b) {
		return module.TypeError
	}
	if a.Kind() == value.Integer && b.Kind() == value.Integer {
		if b.AsInt() == 0 {
			return module.Error
		}
		fr.push(value.Int(a.AsInt() / b.AsInt()))
		return module.OK
	}
	fr.push(value.Dbl(asDouble(a) / asDouble(b)))
	return module.OK
}

func binaryIntOp(fr *frame, op func(a, b int64) (int64, RuntimeState)) RuntimeState {
	a, b, ok := popTwo(fr)
	if !ok {
		return module.StackUnderflow
	}
	if a.Kind() != value.Integer || b.Kind() != value.Integer {
		return module.TypeError
	}
	r, rs := op(a.AsInt(), b.AsInt())
	if !rs.IsOK() {
		return rs
	}
	fr.push(value.Int(r))
	return module.OK
}

func unaryRound(fr *frame, round func(float64) int64) RuntimeState {
	v, ok := fr.pop()
	if !ok {
		return module.StackUnderflow
	}
	switch v.Kind() {
	case value.Integer:
		fr.push(v)
	case value.Double:
		fr.push(value.Int(round(v.AsDouble())))
	default:
		return module.TypeError
	}
	return module.OK
}

func opCompare(fr *frame) RuntimeState {
	a, b, ok := popTwo(fr)
	if !ok {
		return module.StackUnderflow
	}
	switch {
	case isNumeric(a) && isNumeric(b):
		// Compare on two numbers is DynSub: push the arithmetic difference
		// (Integer diff for two ints, Double diff if either is Double), not a
		// normalized sign. Sign is still preserved, so JumpIf* is unaffected.
		switch {
		case a.Kind() == value.Integer && b.Kind() == value.Integer:
			fr.push(value.Int(a.AsInt() - b.AsInt()))
		default:
			fr.push(value.Dbl(asDouble(a) - asDouble(b)))
		}
	case a.Kind() == value.String && b.Kind() == value.String:
		switch {
		case a.AsString() < b.AsString():
			fr.push(value.Int(-1))
		case a.AsString() > b.AsString():
			fr.push(value.Int(1))
		default:
			fr.push(value.Int(0))
		}
	default:
		return module.TypeError
	}
	return module.OK
}

// opJump implements the §4.4 jump family: for the unconditional Jump there
// is no operand to pop; every JumpIf* pops one Integer operand and compares
// it to zero. The target is (instruction index) + arg0, i.e. relative to the
// jump instruction itself, matching "(current_instruction - 1) + arg0 after
// the conditional pops its operand".
func opJump(fr *frame, instrIdx int, op module.Opcode, arg0 int64) RuntimeState {
	taken := true
	if op != module.Jump {
		v, ok := fr.pop()
		if !ok {
			return module.StackUnderflow
		}
		if v.Kind() != value.Integer {
			return module.TypeError
		}
		n := v.AsInt()
		switch op {
		case module.JumpIfZero:
			taken = n == 0
		case module.JumpIfNotZero:
			taken = n != 0
		case module.JumpIfGreaterThanZero:
			taken = n > 0
		case module.JumpIfGreaterThanOrEqualToZero:
			taken = n >= 0
		case module.JumpIfLessThanZero:
			taken = n < 0
		case module.JumpIfLessThanOrEqualToZero:
			taken = n <= 0
		}
	}
	if taken {
		fr.pc = instrIdx + int(arg0)
	}
	return module.OK
}

func lengthOf(v value.Value) (int64, RuntimeState) {
	switch v.Kind() {
	case value.List:
		return int64(v.AsList().Len()), module.OK
	case value.String:
		return int64(len(v.AsBytes())), module.OK
	default:
		return 0, module.TypeError
	}
}

func opPrependAppend(fr *frame, prepend bool) RuntimeState {
	a, b, ok := popTwo(fr)
	if !ok {
		return module.StackUnderflow
	}
	switch a.Kind() {
	case value.List:
		l := a.AsList().Clone()
		if prepend {
			l.Prepend(b)
		} else {
			l.Append(b)
		}
		fr.push(value.Lst(l))
	case value.String:
		var by byte
		switch b.Kind() {
		case value.String:
			s := b.AsBytes()
			if len(s) == 0 {
				fr.push(a)
				return module.OK
			}
			by = s[0]
		case value.Integer:
			by = byte(b.AsInt())
		default:
			return module.TypeError
		}
		s := a.AsBytes()
		out := make([]byte, 0, len(s)+1)
		if prepend {
			out = append(out, by)
			out = append(out, s...)
		} else {
			out = append(out, s...)
			out = append(out, by)
		}
		fr.push(value.StrBytes(out))
	default:
		return module.TypeError
	}
	return module.OK
}

func opIndex(fr *frame) RuntimeState {
	a, b, ok := popTwo(fr)
	if !ok {
		return module.StackUnderflow
	}
	if b.Kind() != value.Integer {
		return module.TypeError
	}
	idx := int(b.AsInt())
	switch a.Kind() {
	case value.List:
		elem, ok := a.AsList().Index(idx)
		if !ok {
			return module.ListIndexOutOfBounds
		}
		fr.push(elem)
	case value.String:
		s := a.AsBytes()
		if idx < 0 || idx >= len(s) {
			return module.StringIndexOutOfBounds
		}
		fr.push(value.Int(int64(s[idx])))
	default:
		return module.TypeError
	}
	return module.OK
}

func opPrefixSuffix(fr *frame, prefix bool) RuntimeState {
	a, b, ok := popTwo(fr)
	if !ok {
		return module.StackUnderflow
	}
	if a.Kind() != value.String || b.Kind() != value.Integer {
		return module.TypeError
	}
	n := int(b.AsInt())
	s := a.AsBytes()
	if n < 0 || n > len(s) {
		return module.StringIndexOutOfBounds
	}
	var removed, remainder []byte
	if prefix {
		removed, remainder = s[:n], s[n:]
	} else {
		remainder, removed = s[:len(s)-n], s[len(s)-n:]
	}
	fr.push(value.Str(string(remainder)))
	fr.push(value.Str(string(removed)))
	return module.OK
}

func opSubstr(fr *frame) RuntimeState {
	endV, ok := fr.pop()
	if !ok {
		return module.StackUnderflow
	}
	startV, ok := fr.pop()
	if !ok {
		return module.StackUnderflow
	}
	strV, ok := fr.pop()
	if !ok {
		return module.StackUnderflow
	}
	if strV.Kind() != value.String || startV.Kind() != value.Integer || endV.Kind() != value.Integer {
		return module.TypeError
	}
	s := strV.AsBytes()
	start, end := int(startV.AsInt()), int(endV.AsInt())
	if start < 0 || end > len(s) || start > end {
		return module.StringIndexOutOfBounds
	}
	fr.push(value.Str(string(s[start:end])))
	return module.OK
}

func isNumeric(v value.Value) bool { return v.Kind() == value.Integer || v.Kind() == value.Double }

func asDouble(v value.Value) float64 {
	if v.Kind() == value.Integer {
		return float64(v.AsInt())
	}
	return v.AsDouble()
}
