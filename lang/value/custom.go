package value

import "sync/atomic"

// CustomHolder is the reference-counted payload shared by all copies of a
// CustomValue that refer to the same underlying data.
type CustomHolder struct {
	refs atomic.Int64
	Data any
	// Fork produces a sandboxed copy of Data for a forked ExecutionContext. A
	// nil Fork, or one that returns nil, means "inherently shared, no
	// isolation" and the same holder is reused.
	Fork func(any) any
}

func NewCustomHolder(data any, fork func(any) any) *CustomHolder {
	h := &CustomHolder{Data: data, Fork: fork}
	h.refs.Store(1)
	return h
}

func (h *CustomHolder) retain() *CustomHolder {
	h.refs.Add(1)
	return h
}

// release decrements the reference count; the holder carries no finalizer
// because Go's GC reclaims Data once unreachable; the counter exists purely
// to mirror the documented sharing semantics for correctness of Identity.
func (h *CustomHolder) release() {
	h.refs.Add(-1)
}

// CustomValue is a Custom Value's payload: a type id plus a shared reference
// to an opaque holder.
type CustomValue struct {
	TypeID uint64
	holder *CustomHolder
}

// NewCustomValue wraps data behind a freshly-allocated holder.
func NewCustomValue(typeID uint64, data any, fork func(any) any) *CustomValue {
	return &CustomValue{TypeID: typeID, holder: NewCustomHolder(data, fork)}
}

// Share returns a CustomValue pointing at the same holder, incrementing its
// reference count; this is what a copy of a Custom Value does.
func (cv *CustomValue) Share() *CustomValue {
	return &CustomValue{TypeID: cv.TypeID, holder: cv.holder.retain()}
}

// Release drops this value's reference to its holder.
func (cv *CustomValue) Release() { cv.holder.release() }

// Data returns the held opaque data.
func (cv *CustomValue) Data() any { return cv.holder.Data }

// Identity returns a value that uniquely identifies the holder, used to
// implement Custom value equality (same TypeID and same holder identity).
func (cv *CustomValue) Identity() *CustomHolder { return cv.holder }

// Fork produces an isolated copy of this value for a forked execution
// context, per the holder's Fork hook. A nil result means the holder is
// shared as-is (no isolation possible or needed).
func (cv *CustomValue) Fork() *CustomValue {
	if cv.holder.Fork == nil {
		return cv.Share()
	}
	forked := cv.holder.Fork(cv.holder.Data)
	if forked == nil {
		return cv.Share()
	}
	return NewCustomValue(cv.TypeID, forked, cv.holder.Fork)
}
