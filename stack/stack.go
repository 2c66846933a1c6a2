// Package stack implements a Treiber-style lock-free stack plus an
// elimination-backed variant that offloads contended pushes and pops onto
// package elimination instead of retrying the central CAS. The plain
// Stack is the idiomatic Go shape of the pack's tagged-pointer intrusive
// stack (daihainidewo-go-comment's runtime/lfstack.go) adapted to
// GC-managed *node pointers instead of a packed uint64 tag, since Go's
// collector can't tolerate stolen pointer bits the way the runtime's own
// internal stack can. EliminationStack is grounded on amino-cbbs' EBStack.
package stack

import (
	"sync/atomic"

	"lockfree/internal/arch"
)

type node[T any] struct {
	val  T
	next *node[T]
}

// Stack is a lock-free LIFO stack.
type Stack[T any] struct {
	top atomic.Pointer[node[T]]
	// size is a portable width-agnostic counter the same way
	// internal/arena's position field is: the count itself has no
	// fixed-width semantics to preserve, so it rides the build-tag
	// selected width instead of pinning one.
	size arch.AtomicInt
}

// New returns an empty stack.
func New[T any]() *Stack[T] {
	return &Stack[T]{}
}

// Push adds v to the top of the stack.
func (s *Stack[T]) Push(v T) {
	n := &node[T]{val: v}
	for {
		old := s.top.Load()
		n.next = old
		if s.top.CompareAndSwap(old, n) {
			s.size.Add(arch.IntToArchSize(1))
			return
		}
	}
}

// Pop removes and returns the top of the stack, or (zero, false) if empty.
func (s *Stack[T]) Pop() (T, bool) {
	for {
		old := s.top.Load()
		if old == nil {
			var zero T
			return zero, false
		}
		if s.top.CompareAndSwap(old, old.next) {
			s.size.Add(arch.IntToArchSize(-1))
			return old.val, true
		}
	}
}

// Len returns a weakly-consistent snapshot of the element count.
func (s *Stack[T]) Len() int {
	return int(s.size.Load())
}
