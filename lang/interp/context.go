// Package interp implements the Pulsar bytecode interpreter: the
// ExecutionContext that drives a Module's functions to completion, one
// instruction at a time, on the calling goroutine.
package interp

import (
	"fmt"
	"strings"

	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/value"
)

// RuntimeState is an alias of module.RuntimeState, re-exported here so
// callers driving an ExecutionContext do not need to import lang/module
// directly for the result of Run/Step/CallFunction.
type RuntimeState = module.RuntimeState

// Option configures an ExecutionContext at construction time.
type Option func(*ExecutionContext)

// WithMaxCallStackDepth bounds the call stack: exceeding it produces
// StackOverflow instead of growing without limit (spec §9's open question —
// StackOverflow is reserved and unproduced unless a host opts in).
func WithMaxCallStackDepth(depth int) Option {
	return func(ctx *ExecutionContext) { ctx.maxCallStackDepth = depth }
}

// ExecutionContext runs one Module. It owns a root stack (the operand stack
// visible below the outermost frame), the call stack, per-instance global
// values, and per-custom-type instance data.
type ExecutionContext struct {
	mod *module.Module

	globals    []module.GlobalInstance
	customData map[uint64]any

	rootStack []value.Value
	callStack []*frame

	maxCallStackDepth int

	// faultFrame retains the frame that was executing when Run/Step last
	// returned a non-OK RuntimeState, so a caller can inspect it (spec §4.4:
	// "the context retains the frame that faulted").
	faultFrame *frame
}

// New builds an ExecutionContext from mod: global initializers are deep
// copied into fresh instances and every registered CustomType's
// NewInstanceData factory (if any) is invoked once to seed per-context
// instance data.
func New(mod *module.Module, opts ...Option) *ExecutionContext {
	ctx := &ExecutionContext{
		mod:        mod,
		globals:    make([]module.GlobalInstance, len(mod.Globals)),
		customData: make(map[uint64]any, len(mod.CustomTypes)),
	}
	for i, g := range mod.Globals {
		ctx.globals[i] = module.GlobalInstance{Value: g.InitialValue.Copy(), IsConstant: g.IsConstant}
	}
	for id, ct := range mod.CustomTypes {
		if ct.NewInstanceData != nil {
			ctx.customData[id] = ct.NewInstanceData()
		}
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

// Mod returns the Module this context was built from.
func (ctx *ExecutionContext) Mod() *module.Module { return ctx.mod }

// Push pushes v onto the root stack (or the current frame's stack if a call
// is in progress).
func (ctx *ExecutionContext) Push(v value.Value) {
	if len(ctx.callStack) == 0 {
		ctx.rootStack = append(ctx.rootStack, v)
		return
	}
	ctx.currentFrame().push(v)
}

// StackLen reports the length of the current frame's operand stack (or the
// root stack, if no call is in progress).
func (ctx *ExecutionContext) StackLen() int {
	if len(ctx.callStack) == 0 {
		return len(ctx.rootStack)
	}
	return len(ctx.currentFrame().stack)
}

// Pop pops the top of the current frame's operand stack.
func (ctx *ExecutionContext) Pop() (value.Value, RuntimeState) {
	if len(ctx.callStack) == 0 {
		if len(ctx.rootStack) == 0 {
			return value.Value{}, module.StackUnderflow
		}
		v := ctx.rootStack[len(ctx.rootStack)-1]
		ctx.rootStack = ctx.rootStack[:len(ctx.rootStack)-1]
		return v, module.OK
	}
	v, ok := ctx.currentFrame().pop()
	if !ok {
		return value.Value{}, module.StackUnderflow
	}
	return v, module.OK
}

// Global reads global idx's current value.
func (ctx *ExecutionContext) Global(idx int) (value.Value, RuntimeState) {
	if idx < 0 || idx >= len(ctx.globals) {
		return value.Value{}, module.OutOfBoundsGlobalIndex
	}
	return ctx.globals[idx].Value, module.OK
}

// SetGlobal writes global idx's value, rejecting writes to constant globals.
func (ctx *ExecutionContext) SetGlobal(idx int, v value.Value) RuntimeState {
	if idx < 0 || idx >= len(ctx.globals) {
		return module.OutOfBoundsGlobalIndex
	}
	if ctx.globals[idx].IsConstant {
		return module.WritingOnConstantGlobal
	}
	ctx.globals[idx].Value = v
	return module.OK
}

// CustomData returns the context's instance data for a registered custom
// type id.
func (ctx *ExecutionContext) CustomData(typeID uint64) (any, bool) {
	d, ok := ctx.customData[typeID]
	return d, ok
}

// RootStack returns a copy of the current root stack (the return values of
// a completed call, or the pending arguments of one not yet started).
func (ctx *ExecutionContext) RootStack() []value.Value {
	out := make([]value.Value, len(ctx.rootStack))
	copy(out, ctx.rootStack)
	return out
}

// FaultFrame returns the name of the frame active when the last Run/Step
// call returned a non-OK RuntimeState, or "" if none faulted.
func (ctx *ExecutionContext) FaultFrame() string {
	if ctx.faultFrame == nil {
		return ""
	}
	return ctx.faultFrame.name()
}

func (ctx *ExecutionContext) currentFrame() *frame {
	return ctx.callStack[len(ctx.callStack)-1]
}

// callerStack returns the operand stack args should be drawn from / return
// values pushed to for the frame about to be entered: the stack of the
// frame below the one about to be pushed, or the root stack if none.
func (ctx *ExecutionContext) callerStack() []value.Value {
	if len(ctx.callStack) == 0 {
		return ctx.rootStack
	}
	return ctx.currentFrame().stack
}

func (ctx *ExecutionContext) setCallerStack(s []value.Value) {
	if len(ctx.callStack) == 0 {
		ctx.rootStack = s
		return
	}
	ctx.currentFrame().stack = s
}

// CallFunctionByName looks up a function by name and calls it, per spec
// §6.4.
func (ctx *ExecutionContext) CallFunctionByName(name string) RuntimeState {
	idx := ctx.mod.FindFunctionByName(name)
	if idx == module.InvalidIndex {
		return module.FunctionNotFound
	}
	return ctx.CallFunction(idx)
}

// CallFunction sets up the root frame for function idx, consuming its
// arguments from the root stack (or the current frame's stack, if called
// from within a native function).
func (ctx *ExecutionContext) CallFunction(idx int) RuntimeState {
	if idx < 0 || idx >= len(ctx.mod.Functions) {
		return module.OutOfBoundsFunctionIndex
	}
	return ctx.enterFunction(ctx.mod.Functions[idx])
}

// CallNativeFunction sets up a frame for native binding idx, invoking its
// bound callable immediately.
func (ctx *ExecutionContext) CallNativeFunction(idx int) RuntimeState {
	if idx < 0 || idx >= len(ctx.mod.NativeBindings) {
		return module.OutOfBoundsFunctionIndex
	}
	return ctx.enterNative(idx)
}

func (ctx *ExecutionContext) enterFunction(fn *module.FunctionDefinition) RuntimeState {
	if ctx.maxCallStackDepth > 0 && len(ctx.callStack) >= ctx.maxCallStackDepth {
		return module.StackOverflow
	}
	s := ctx.callerStack()
	if len(s) < fn.Arity {
		return module.StackUnderflow
	}
	args := s[len(s)-fn.Arity:]
	ctx.setCallerStack(s[:len(s)-fn.Arity])
	ctx.callStack = append(ctx.callStack, newBytecodeFrame(fn, args))
	return module.OK
}

func (ctx *ExecutionContext) enterNative(idx int) RuntimeState {
	nb := ctx.mod.NativeBindings[idx]
	if ctx.maxCallStackDepth > 0 && len(ctx.callStack) >= ctx.maxCallStackDepth {
		return module.StackOverflow
	}
	s := ctx.callerStack()
	if len(s) < nb.Arity {
		return module.StackUnderflow
	}
	args := append([]value.Value(nil), s[len(s)-nb.Arity:]...)
	ctx.setCallerStack(s[:len(s)-nb.Arity])

	fn := ctx.mod.NativeFunctions[idx]
	if fn == nil {
		return module.UnboundNativeFunction
	}

	nf := newNativeFrame(nb, args)
	ctx.callStack = append(ctx.callStack, nf)
	rs := fn(ctx)
	ctx.returnFromFrame(nb.Returns)
	if !rs.IsOK() {
		ctx.faultFrame = nf
	}
	return rs
}

// returnFromFrame pops the top frame, propagating up to n values from its
// stack to the caller's stack.
func (ctx *ExecutionContext) returnFromFrame(n int) {
	top := ctx.callStack[len(ctx.callStack)-1]
	ctx.callStack = ctx.callStack[:len(ctx.callStack)-1]

	if n > len(top.stack) {
		n = len(top.stack)
	}
	ret := top.stack[len(top.stack)-n:]

	caller := ctx.callerStack()
	caller = append(caller, ret...)
	ctx.setCallerStack(caller)
}

// Run drives the run loop to completion, returning the first non-OK
// RuntimeState encountered, or OK once the call stack empties.
func (ctx *ExecutionContext) Run() RuntimeState {
	for len(ctx.callStack) > 0 {
		if rs := ctx.Step(); !rs.IsOK() {
			return rs
		}
	}
	return module.OK
}

// Step advances exactly one instruction of the current (topmost) frame,
// returning the first non-OK RuntimeState or OK. Stepping a native frame
// runs it to completion (natives are atomic from the interpreter's point of
// view). Returns OK with an unchanged call stack if there is nothing to
// step.
func (ctx *ExecutionContext) Step() RuntimeState {
	if len(ctx.callStack) == 0 {
		return module.OK
	}

	fr := ctx.currentFrame()
	if fr.fn == nil {
		// a native frame on top of the stack has already run to completion in
		// enterNative; Step should never observe one mid-flight.
		ctx.callStack = ctx.callStack[:len(ctx.callStack)-1]
		return module.OK
	}

	if fr.pc >= len(fr.fn.Code) {
		ctx.returnFromFrame(fr.fn.Returns)
		return module.OK
	}

	rs := ctx.dispatch(fr)
	if !rs.IsOK() {
		ctx.faultFrame = fr
	}
	return rs
}

// GetStackTrace produces a formatted multi-line stack trace, most recent
// frame first, per spec §6.4.
func (ctx *ExecutionContext) GetStackTrace(maxDepth int) string {
	var sb strings.Builder
	depth := 0
	for i := len(ctx.callStack) - 1; i >= 0; i-- {
		if maxDepth > 0 && depth >= maxDepth {
			break
		}
		fr := ctx.callStack[i]
		sym := frameDebugSymbol(fr)
		if sym != "" {
			fmt.Fprintf(&sb, "at %s '%s'\n", fr.name(), sym)
		} else {
			fmt.Fprintf(&sb, "at %s\n", fr.name())
		}
		depth++
	}
	return sb.String()
}

func frameDebugSymbol(fr *frame) string {
	if fr.fn == nil || fr.fn.CodeDebugSymbol == nil {
		return ""
	}
	var sym *module.CodeDebugSymbol
	for i := range fr.fn.CodeDebugSymbol {
		if fr.fn.CodeDebugSymbol[i].CodeStartIndex > fr.pc {
			break
		}
		sym = &fr.fn.CodeDebugSymbol[i]
	}
	if sym == nil {
		return ""
	}
	return fmt.Sprintf("<path>:%d:%d", sym.Tok.Pos.Line, sym.Tok.Pos.Char)
}

// RunFunction evaluates def with args on a scratch ExecutionContext sharing
// this context's globals/custom data, used by the parser's compile-time
// evaluator (spec §4.2, §9: "reuses the full interpreter"). It returns the
// top of the resulting stack.
func (ctx *ExecutionContext) RunFunction(def *module.FunctionDefinition, args []value.Value) (value.Value, RuntimeState) {
	sub := &ExecutionContext{
		mod:               ctx.mod,
		globals:           ctx.globals,
		customData:        ctx.customData,
		maxCallStackDepth: ctx.maxCallStackDepth,
	}
	sub.rootStack = append(sub.rootStack, args...)
	if rs := sub.enterFunction(def); !rs.IsOK() {
		return value.Value{}, rs
	}
	if rs := sub.Run(); !rs.IsOK() {
		return value.Value{}, rs
	}
	if len(sub.rootStack) == 0 {
		return value.VoidValue(), module.OK
	}
	return sub.rootStack[len(sub.rootStack)-1], module.OK
}

var _ module.NativeContext = (*ExecutionContext)(nil)
