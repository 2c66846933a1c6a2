package elimination

import (
	"context"
	"sync/atomic"
	"time"

	"lockfree/internal/arch"
)

// Adaptive sizing defaults: average size 32, floor 2, ceiling 2x average.
const (
	DefaultAverageSize = 32
	minSize            = 2
	resizeEvery        = 200
)

// AdaptiveEliminationArray wraps an EliminationArray whose size grows or
// shrinks with observed contention: every resizeEvery failed attempts, a
// lopsided match/fail ratio halves or doubles the array, trading probing
// breadth for collision rate. Grounded on amino-cbbs' AdaptEliminationArray.
type AdaptiveEliminationArray[T any] struct {
	arr     atomic.Pointer[EliminationArray[T]]
	average int
	ceiling int

	// matches and fails are best-effort diagnostic counters driving the
	// resize heuristic; neither has fixed-width semantics, so both ride
	// the build-tag selected width.
	matches arch.AtomicInt
	fails   arch.AtomicInt
}

// NewAdaptive returns an adaptive elimination array seeded at average size.
// average <= 0 selects DefaultAverageSize.
func NewAdaptive[T any](average int) *AdaptiveEliminationArray[T] {
	if average <= 0 {
		average = DefaultAverageSize
	}
	a := &AdaptiveEliminationArray[T]{average: average, ceiling: 2 * average}
	a.arr.Store(New[T](average, DefaultLookahead))
	return a
}

func (a *AdaptiveEliminationArray[T]) TryAdd(ctx context.Context, v T, wait time.Duration) bool {
	ok := a.arr.Load().TryAdd(ctx, v, wait)
	a.record(ok)
	return ok
}

func (a *AdaptiveEliminationArray[T]) TryRemove(ctx context.Context, wait time.Duration) (T, bool) {
	v, ok := a.arr.Load().TryRemove(ctx, wait)
	a.record(ok)
	return v, ok
}

func (a *AdaptiveEliminationArray[T]) record(matched bool) {
	var fails int64
	if matched {
		a.matches.Add(arch.IntToArchSize(1))
	} else {
		fails = int64(a.fails.Add(arch.IntToArchSize(1)))
	}
	if fails != 0 && fails%resizeEvery == 0 {
		a.maybeResize()
	}
}

func (a *AdaptiveEliminationArray[T]) maybeResize() {
	matches := int64(a.matches.Load())
	fails := int64(a.fails.Load())
	cur := a.arr.Load()
	size := cur.size()

	switch {
	case matches*2 < fails && size > minSize:
		a.resize(size / 2)
	case matches > fails && size < a.ceiling:
		a.resize(size * 2)
	}
}

func (a *AdaptiveEliminationArray[T]) resize(newSize int) {
	if newSize < minSize {
		newSize = minSize
	}
	if newSize > a.ceiling {
		newSize = a.ceiling
	}
	fresh := New[T](newSize, DefaultLookahead)
	a.arr.CompareAndSwap(a.arr.Load(), fresh)
	a.matches.Store(0)
	a.fails.Store(0)
}
