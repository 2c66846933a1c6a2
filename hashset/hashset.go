// Package hashset implements the split-ordered lock-free hash set: bucket
// membership is overlaid on a single Harris-Michael ordered list (see
// package list) by sorting on a bit-reversed hash instead of physically
// splitting the list per bucket. Grounded on amino-cbbs' LockFreeSet.java.
package hashset

import (
	"math/bits"
	"sync/atomic"

	"lockfree/internal/arch"
	"lockfree/internal/order"
	"lockfree/list"
	"lockfree/pkg"
)

const (
	// DefaultExpectedSize is the default WithExpectedSize value.
	DefaultExpectedSize = 500
	// DefaultLoadFactor is the average chain length before the bucket
	// count doubles.
	DefaultLoadFactor = 0.75
	// DefaultSegments is the outer dimension of the two-level bucket
	// directory.
	DefaultSegments = 512
	// defaultSegmentSize is the inner dimension; segments are allocated
	// lazily so an unused segment never actually costs this much memory.
	defaultSegmentSize = 1 << 13
	// DefaultInitialBucketBits gives 2^6 = 64 live buckets to start.
	DefaultInitialBucketBits = 6
)

type entry[K comparable] struct {
	splitKey uint32
	key      K
	dummy    bool
}

func compareEntries[K comparable](a, b entry[K]) int {
	switch {
	case a.splitKey < b.splitKey:
		return -1
	case a.splitKey > b.splitKey:
		return 1
	default:
		return 0
	}
}

type handleBox[K comparable] struct {
	h list.Handle[entry[K]]
}

// Option configures a Set at construction time. An instantiation of the
// shared functional-options pattern (pkg.Option), which the hashset and
// bst constructors use.
type Option = pkg.Option[config]

type config struct {
	expectedSize int
	loadFactor   float64
	segments     int
	segmentSize  int
	initialBits  uint
}

// WithExpectedSize records the element count the set is expected to hold.
// The bucket directory's dimensions do not depend on it: the segment size
// is fixed at defaultSegmentSize and the starting bucket count comes from
// WithInitialBucketBits.
func WithExpectedSize(n int) Option {
	return func(c *config) { c.expectedSize = n }
}

// WithLoadFactor sets the average chain length that triggers growth.
func WithLoadFactor(f float64) Option {
	return func(c *config) { c.loadFactor = f }
}

// WithSegments sets the bucket directory's outer segment count.
func WithSegments(n int) Option {
	return func(c *config) { c.segments = n }
}

// WithInitialBucketBits overrides the starting bucket count (2^bits).
func WithInitialBucketBits(n uint) Option {
	return func(c *config) { c.initialBits = n }
}

// Set is a lock-free set of K, ordered internally by bit-reversed hash.
type Set[K comparable] struct {
	hash order.Hash[K]

	list *list.OrderedList[entry[K]]

	segments    []atomic.Pointer[[]atomic.Pointer[handleBox[K]]]
	segmentSize int

	bucketBits atomic.Uint32
	// size is a portable width-agnostic counter the same way
	// internal/arena's position field is: the count itself has no
	// fixed-width semantics to preserve, so it rides the build-tag
	// selected width instead of pinning one.
	size       arch.AtomicInt
	loadFactor float64
}

// New returns an empty set hashing keys with h.
func New[K comparable](h order.Hash[K], opts ...Option) *Set[K] {
	c := config{
		expectedSize: DefaultExpectedSize,
		loadFactor:   DefaultLoadFactor,
		segments:     DefaultSegments,
		segmentSize:  defaultSegmentSize,
		initialBits:  DefaultInitialBucketBits,
	}
	pkg.Apply(&c, opts...)

	s := &Set[K]{
		hash:        h,
		list:        list.NewOrdered[entry[K]](compareEntries[K]),
		segments:    make([]atomic.Pointer[[]atomic.Pointer[handleBox[K]]], c.segments),
		segmentSize: c.segmentSize,
		loadFactor:  c.loadFactor,
	}
	s.bucketBits.Store(uint32(c.initialBits))

	// Bucket 0 has no parent bucket to materialise from, so it is seeded
	// directly at construction.
	root, _ := s.list.AddFrom(s.list.Head(), entry[K]{splitKey: 0, dummy: true})
	seg := s.ensureSegment(0)
	seg[0].Store(&handleBox[K]{h: root})

	return s
}

func bitReverse32(x uint32) uint32 {
	return bits.Reverse32(x)
}

func (s *Set[K]) ensureSegment(segIdx int) []atomic.Pointer[handleBox[K]] {
	for {
		p := s.segments[segIdx].Load()
		if p != nil {
			return *p
		}
		fresh := make([]atomic.Pointer[handleBox[K]], s.segmentSize)
		if s.segments[segIdx].CompareAndSwap(nil, &fresh) {
			return fresh
		}
	}
}

func (s *Set[K]) slot(bucket uint32) *atomic.Pointer[handleBox[K]] {
	segIdx := int(bucket) / s.segmentSize
	slotIdx := int(bucket) % s.segmentSize
	seg := s.ensureSegment(segIdx)
	return &seg[slotIdx]
}

// bucketAt resolves (lazily materialising as needed) the dummy node
// anchoring bucket b, recursing to the parent bucket when b has never been
// touched before.
func (s *Set[K]) bucketAt(b uint32) list.Handle[entry[K]] {
	slot := s.slot(b)
	if box := slot.Load(); box != nil {
		return box.h
	}

	parent := b &^ highestSetBit(b)
	parentHandle := s.bucketAt(parent)

	h, _ := s.list.AddFrom(parentHandle, entry[K]{splitKey: bitReverse32(b), dummy: true})
	slot.CompareAndSwap(nil, &handleBox[K]{h: h})
	return slot.Load().h
}

func highestSetBit(b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return uint32(1) << (31 - bits.LeadingZeros32(b))
}

func (s *Set[K]) bucketFor(k K) list.Handle[entry[K]] {
	hv := s.hash(k)
	bbits := s.bucketBits.Load()
	bucket := hv & ((uint32(1) << bbits) - 1)
	return s.bucketAt(bucket)
}

// Add inserts k, returning false if it is already present.
func (s *Set[K]) Add(k K) bool {
	dummy := s.bucketFor(k)
	splitKey := bitReverse32(s.hash(k)) | 1
	_, ok := s.list.AddFrom(dummy, entry[K]{splitKey: splitKey, key: k})
	if !ok {
		return false
	}
	sz := s.size.Add(arch.IntToArchSize(1))
	s.maybeGrow(int64(sz))
	return true
}

// Contains reports whether k is present and not marked for deletion.
func (s *Set[K]) Contains(k K) bool {
	dummy := s.bucketFor(k)
	splitKey := bitReverse32(s.hash(k)) | 1
	return s.list.ContainsFrom(dummy, entry[K]{splitKey: splitKey, key: k})
}

// Remove deletes k, returning false if it was not present.
func (s *Set[K]) Remove(k K) bool {
	dummy := s.bucketFor(k)
	splitKey := bitReverse32(s.hash(k)) | 1
	if !s.list.RemoveFrom(dummy, entry[K]{splitKey: splitKey, key: k}) {
		return false
	}
	s.size.Add(arch.IntToArchSize(-1))
	return true
}

// Insert is Add's error-returning counterpart, for callers that want to
// propagate a duplicate with errors.Is(err, pkg.ErrAlreadyPresent)
// rather than branching on a bool.
func (s *Set[K]) Insert(k K) error {
	if !s.Add(k) {
		return pkg.ErrAlreadyPresent
	}
	return nil
}

// Delete is Remove's error-returning counterpart, reporting a missing
// key as pkg.ErrNotFound.
func (s *Set[K]) Delete(k K) error {
	if !s.Remove(k) {
		return pkg.ErrNotFound
	}
	return nil
}

// Size returns a weakly-consistent snapshot of the element count.
func (s *Set[K]) Size() int {
	return int(s.size.Load())
}

func (s *Set[K]) maybeGrow(size int64) {
	bbits := s.bucketBits.Load()
	bucketCap := int64(1) << bbits
	if float64(size) <= float64(bucketCap)*s.loadFactor {
		return
	}
	if (int64(1) << (bbits + 1)) > int64(len(s.segments))*int64(s.segmentSize) {
		return // address space exhausted; stay at current bucket count
	}
	s.bucketBits.CompareAndSwap(bbits, bbits+1)
}

// Range calls fn for every key currently in the set, in split-ordered
// sequence. Weakly consistent, like the underlying list's Range.
func (s *Set[K]) Range(fn func(k K) bool) {
	s.list.Range(func(e entry[K]) bool {
		if e.dummy {
			return true
		}
		return fn(e.key)
	})
}
