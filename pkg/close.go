package pkg

import (
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Closer adapts one or more independent teardown functions into a single
// io.Closer-shaped Close method. Arena-backed containers register one
// teardown func per subsystem they own (the arena's mmap'd slab, and
// whatever else was constructed alongside it); Close runs all of them
// even if an earlier one fails, and aggregates every non-nil result with
// hashicorp/go-multierror rather than dropping all but the first.
//
// The zero value is not usable; build one with NewCloser.
type Closer struct {
	once  sync.Once
	funcs []func() error
	err   error
}

// NewCloser returns a Closer that, on Close, runs every fn in order and
// aggregates their errors.
func NewCloser(funcs ...func() error) *Closer {
	return &Closer{funcs: funcs}
}

// Close runs every registered teardown func exactly once, regardless of
// how many times Close itself is called. Later calls return the same
// result as the first.
func (c *Closer) Close() error {
	c.once.Do(func() {
		var result *multierror.Error
		for _, fn := range c.funcs {
			if fn == nil {
				continue
			}
			if err := fn(); err != nil {
				result = multierror.Append(result, err)
			}
		}
		if result != nil {
			c.err = result.ErrorOrNil()
		}
	})
	return c.err
}
