// Package elimination implements the elimination-backoff array: a pair of
// slot arrays that let a concurrent add and remove hand off a value
// directly to each other without either touching the structure they're
// backing off from (a stack, queue end, or deque end). Grounded on
// amino-cbbs' EliminationArray.java.
package elimination

import (
	"context"
	"sync/atomic"
	"time"

	"lockfree/internal/backoff"
	"lockfree/internal/fastrand"
)

// DefaultSize and DefaultLookahead match the spec's configuration defaults.
const (
	DefaultSize      = 8
	DefaultLookahead = 4
)

// box wraps a value so a real offering's pointer identity is always
// distinct from the tomb/taken sentinel pointers, which carry no payload.
type box[T any] struct {
	val T
}

// cell is one atomic slot. nil means EMPTY; the array's own tomb/taken
// pointers mean exactly that; any other non-nil *box[T] holds a value.
type cell[T any] struct {
	p atomic.Pointer[box[T]]
}

func (c *cell[T]) load() *box[T] { return c.p.Load() }

func (c *cell[T]) compareAndSwap(old, new *box[T]) bool {
	return c.p.CompareAndSwap(old, new)
}

// EliminationArray pairs add and remove slots of a fixed size.
type EliminationArray[T any] struct {
	addSlots    []cell[T]
	removeSlots []cell[T]
	tomb        *box[T]
	taken       *box[T]
	lookahead   int
}

// New returns an elimination array with the given size and lookahead. Both
// fall back to their defaults if <= 0.
func New[T any](size, lookahead int) *EliminationArray[T] {
	if size <= 0 {
		size = DefaultSize
	}
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	if lookahead > size {
		lookahead = size
	}
	return &EliminationArray[T]{
		addSlots:    make([]cell[T], size),
		removeSlots: make([]cell[T], size),
		tomb:        &box[T]{},
		taken:       &box[T]{},
		lookahead:   lookahead,
	}
}

func (e *EliminationArray[T]) size() int { return len(e.addSlots) }

// Backend is the TryAdd/TryRemove surface a stack, queue, or deque end
// backs off onto. Both EliminationArray and AdaptiveEliminationArray
// satisfy it, so a caller can take the fixed-size array or the
// self-resizing one behind the same field type.
type Backend[T any] interface {
	TryAdd(ctx context.Context, v T, wait time.Duration) bool
	TryRemove(ctx context.Context, wait time.Duration) (T, bool)
}

// NewAuto returns a fixed-size EliminationArray when size is positive, or
// an AdaptiveEliminationArray seeded at DefaultAverageSize otherwise —
// the size<=0 knob every caller in this module exposes for "let the
// array size itself to observed contention."
func NewAuto[T any](size, lookahead int) Backend[T] {
	if size <= 0 {
		return NewAdaptive[T](DefaultAverageSize)
	}
	return New[T](size, lookahead)
}

func (e *EliminationArray[T]) startIndex() int {
	return int(fastrand.Uint32() % uint32(e.size()))
}

// TryAdd attempts to hand off v to a concurrently-arriving TryRemove within
// wait. Reports whether a remover matched.
func (e *EliminationArray[T]) TryAdd(ctx context.Context, v T, wait time.Duration) bool {
	start := e.startIndex()
	mine := &box[T]{val: v}
	for i := 0; i < e.lookahead; i++ {
		idx := (start + i) % e.size()

		if e.removeSlots[idx].compareAndSwap(e.tomb, mine) {
			return true
		}

		if e.addSlots[idx].compareAndSwap(nil, mine) {
			// Cancellation only ends the wait early; the slot itself
			// records whether a remover took the offering.
			_ = backoff.Sleep(ctx, wait)
			if e.addSlots[idx].compareAndSwap(e.taken, nil) {
				return true
			}
			if !e.addSlots[idx].compareAndSwap(mine, nil) {
				// A remover matched in the narrow window between our
				// reread and this cleanup CAS.
				if e.addSlots[idx].compareAndSwap(e.taken, nil) {
					return true
				}
			}
			return false
		}
	}
	return false
}

// TryRemove attempts to consume an adder's offering, or waits up to wait
// for one to arrive. Reports the value and whether one was found.
func (e *EliminationArray[T]) TryRemove(ctx context.Context, wait time.Duration) (T, bool) {
	start := e.startIndex()
	for i := 0; i < e.lookahead; i++ {
		idx := (start + i) % e.size()

		if cur := e.addSlots[idx].load(); cur != nil && cur != e.taken {
			if e.addSlots[idx].compareAndSwap(cur, e.taken) {
				return cur.val, true
			}
			continue
		}

		if e.removeSlots[idx].compareAndSwap(nil, e.tomb) {
			// Cancellation only ends the wait early; the slot itself
			// records whether an adder filled the tomb.
			_ = backoff.Sleep(ctx, wait)
			if got := e.removeSlots[idx].load(); got != e.tomb && got != nil {
				e.removeSlots[idx].compareAndSwap(got, nil)
				return got.val, true
			}
			if !e.removeSlots[idx].compareAndSwap(e.tomb, nil) {
				// An adder matched in the narrow window between our reread
				// and this cleanup CAS; pick up what it left behind.
				if got := e.removeSlots[idx].load(); got != nil && got != e.tomb {
					e.removeSlots[idx].compareAndSwap(got, nil)
					return got.val, true
				}
			}
			var zero T
			return zero, false
		}
	}
	var zero T
	return zero, false
}
