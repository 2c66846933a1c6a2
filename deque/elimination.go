package deque

import (
	"context"
	"time"

	"lockfree/elimination"
	"lockfree/internal/backoff"
)

// EBDeque is a Deque whose pushes and pops fall back to one of two
// elimination arrays (one per end) when the central anchor CAS is
// contended. Grounded on amino-cbbs' EBDeque.java.
type EBDeque[T any] struct {
	deque *Deque[T]
	head  elimination.Backend[T]
	tail  elimination.Backend[T]
	wait  time.Duration
}

// NewEB returns an elimination-backed deque. size <= 0 selects adaptive
// sizing (elimination.NewAuto): each end gets its own
// AdaptiveEliminationArray that grows or shrinks independently with the
// contention it actually sees, rather than sharing one fixed size across
// both ends.
func NewEB[T any](size, lookahead int, wait time.Duration) *EBDeque[T] {
	if wait <= 0 {
		wait = backoff.Base
	}
	return &EBDeque[T]{
		deque: New[T](),
		head:  elimination.NewAuto[T](size, lookahead),
		tail:  elimination.NewAuto[T](size, lookahead),
		wait:  wait,
	}
}

// Len returns a weakly-consistent element count of the central chain (the
// elimination arrays never hold an element at rest, so nothing there is
// uncounted).
func (d *EBDeque[T]) Len() int { return d.deque.Len() }

func (d *EBDeque[T]) PushLeft(ctx context.Context, v T) {
	for {
		a := d.deque.a.Load()
		if tryPushLeft(d.deque, a, v) {
			return
		}
		if d.head.TryAdd(ctx, v, d.wait) {
			return
		}
	}
}

func (d *EBDeque[T]) PushRight(ctx context.Context, v T) {
	for {
		a := d.deque.a.Load()
		if tryPushRight(d.deque, a, v) {
			return
		}
		if d.tail.TryAdd(ctx, v, d.wait) {
			return
		}
	}
}

func (d *EBDeque[T]) PopLeft(ctx context.Context) (T, bool) {
	for {
		a := d.deque.a.Load()
		if a.left == nil {
			if v, ok := d.head.TryRemove(ctx, d.wait); ok {
				return v, true
			}
			var zero T
			return zero, false
		}
		if v, ok := tryPopLeft(d.deque, a); ok {
			return v, true
		}
		if v, ok := d.head.TryRemove(ctx, d.wait); ok {
			return v, true
		}
	}
}

func (d *EBDeque[T]) PopRight(ctx context.Context) (T, bool) {
	for {
		a := d.deque.a.Load()
		if a.right == nil {
			if v, ok := d.tail.TryRemove(ctx, d.wait); ok {
				return v, true
			}
			var zero T
			return zero, false
		}
		if v, ok := tryPopRight(d.deque, a); ok {
			return v, true
		}
		if v, ok := d.tail.TryRemove(ctx, d.wait); ok {
			return v, true
		}
	}
}
