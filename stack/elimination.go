package stack

import (
	"context"
	"time"

	"lockfree/elimination"
	"lockfree/internal/arch"
	"lockfree/internal/backoff"
)

// EliminationStack is a Stack whose pushes and pops fall back to an
// elimination array when the central top CAS is contended, so a pusher
// and a popper arriving at the same moment can hand off directly instead
// of serialising on top.
type EliminationStack[T any] struct {
	stack *Stack[T]
	elim  elimination.Backend[T]
	wait  time.Duration
}

// NewElimination returns an elimination-backed stack: the same
// elimination-array knobs the deque exposes. size <= 0 selects adaptive
// sizing (elimination.NewAuto) instead of a fixed array; lookahead <= 0
// selects the elimination package's default; wait <= 0 selects the
// backoff package's base duration.
func NewElimination[T any](size, lookahead int, wait time.Duration) *EliminationStack[T] {
	if wait <= 0 {
		wait = backoff.Base
	}
	return &EliminationStack[T]{
		stack: New[T](),
		elim:  elimination.NewAuto[T](size, lookahead),
		wait:  wait,
	}
}

// Len returns a weakly-consistent element count of the central stack (the
// elimination array never holds an element at rest: a matched push/pop
// pair hands off directly and never touches the central count, so nothing
// there is uncounted).
func (s *EliminationStack[T]) Len() int { return s.stack.Len() }

// Push adds v, detouring through the elimination array on contention.
func (s *EliminationStack[T]) Push(ctx context.Context, v T) {
	n := &node[T]{val: v}
	for {
		old := s.stack.top.Load()
		n.next = old
		if s.stack.top.CompareAndSwap(old, n) {
			s.stack.size.Add(arch.IntToArchSize(1))
			return
		}
		if s.elim.TryAdd(ctx, v, s.wait) {
			return
		}
	}
}

// Pop removes and returns the top value, or (zero, false) if empty and no
// concurrent push matched via elimination within the wait budget.
func (s *EliminationStack[T]) Pop(ctx context.Context) (T, bool) {
	for {
		old := s.stack.top.Load()
		if old != nil && s.stack.top.CompareAndSwap(old, old.next) {
			s.stack.size.Add(arch.IntToArchSize(-1))
			return old.val, true
		}
		if v, ok := s.elim.TryRemove(ctx, s.wait); ok {
			return v, true
		}
		if old == nil {
			var zero T
			return zero, false
		}
	}
}
