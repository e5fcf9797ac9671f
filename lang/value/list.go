package value

import "strings"

// valueNode is one node of the doubly-linked list backing ValueList. Nodes
// are not exposed outside the package: the contract required by the
// bytecode semantics (O(1) front/back access, prepend, append, remove-front,
// splice) is satisfied by any equivalent structure, this is simply the most
// direct one.
type valueNode struct {
	v          Value
	next, prev *valueNode
}

// ValueList is an ordered, owned sequence of Values. The zero value is not
// ready to use; construct with NewValueList.
type ValueList struct {
	head, tail *valueNode
	count      int
}

func NewValueList() *ValueList { return &ValueList{} }

// Len returns the number of elements in the list.
func (l *ValueList) Len() int { return l.count }

func (l *ValueList) Empty() bool { return l.count == 0 }

// Front returns the first element and whether the list is non-empty.
func (l *ValueList) Front() (Value, bool) {
	if l.head == nil {
		return Value{}, false
	}
	return l.head.v, true
}

// Back returns the last element and whether the list is non-empty.
func (l *ValueList) Back() (Value, bool) {
	if l.tail == nil {
		return Value{}, false
	}
	return l.tail.v, true
}

// Prepend adds v to the front of the list in O(1).
func (l *ValueList) Prepend(v Value) {
	n := &valueNode{v: v, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.count++
}

// Append adds v to the back of the list in O(1).
func (l *ValueList) Append(v Value) {
	n := &valueNode{v: v, prev: l.tail}
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.count++
}

// RemoveFront removes up to n elements from the front in O(n).
func (l *ValueList) RemoveFront(n int) {
	for i := 0; i < n && l.head != nil; i++ {
		l.head = l.head.next
		l.count--
		if l.head != nil {
			l.head.prev = nil
		} else {
			l.tail = nil
		}
	}
}

// Concat appends all elements of other to l, emptying other in the process
// (splice semantics).
func (l *ValueList) Concat(other *ValueList) {
	if other.head == nil {
		return
	}
	if l.tail == nil {
		l.head = other.head
		l.tail = other.tail
	} else {
		l.tail.next = other.head
		other.head.prev = l.tail
		l.tail = other.tail
	}
	l.count += other.count
	other.head, other.tail, other.count = nil, nil, 0
}

// Index returns the element at position i (0-based) and whether i was in
// bounds. Runs in O(i).
func (l *ValueList) Index(i int) (Value, bool) {
	if i < 0 || i >= l.count {
		return Value{}, false
	}
	n := l.head
	for ; i > 0; i-- {
		n = n.next
	}
	return n.v, true
}

// Iterate calls fn for every element in order, stopping early if fn returns
// false.
func (l *ValueList) Iterate(fn func(Value) bool) {
	for n := l.head; n != nil; n = n.next {
		if !fn(n.v) {
			return
		}
	}
}

// Clone deep-copies the list and every element it holds.
func (l *ValueList) Clone() *ValueList {
	out := NewValueList()
	for n := l.head; n != nil; n = n.next {
		out.Append(n.v.Copy())
	}
	return out
}

// Equals reports whether l and o hold the same elements in the same order.
func (l *ValueList) Equals(o *ValueList) bool {
	if l.count != o.count {
		return false
	}
	a, b := l.head, o.head
	for a != nil {
		if !a.v.Equals(b.v) {
			return false
		}
		a, b = a.next, b.next
	}
	return true
}

func (l *ValueList) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	for n := l.head; n != nil; n = n.next {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(n.v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
