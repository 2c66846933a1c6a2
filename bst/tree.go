package bst

import (
	"lockfree/internal/arena"
	"lockfree/internal/order"
	"lockfree/pkg"
)

// Tree is a threaded binary search tree. Every search descends from a
// fixed dummy root whose right slot holds the real tree; the dummy is
// never compared against a key, so the root node itself never needs
// special-cased removal.
type Tree[K any, V any] struct {
	cmp    order.Compare[K]
	root   *Node[K, V]
	arena  *arena.Arena
	closer *pkg.Closer
}

// Option configures a Tree at construction time. An instantiation of the
// shared functional-options pattern (pkg.Option), which the bst and
// hashset constructors use.
type Option[K any, V any] = pkg.Option[Tree[K, V]]

// WithArena copies every stored []byte value into a, instead of letting
// the Go allocator hand out one small heap object per value. It is a
// no-op for trees whose V is not []byte. Node structs (the threaded
// left/right references) always stay on the GC-tracked heap regardless:
// mmap'd memory is invisible to the garbage collector's pointer scanner,
// so it may only ever hold inert byte payloads.
func WithArena[K any, V any](a *arena.Arena) Option[K, V] {
	return func(t *Tree[K, V]) { t.arena = a }
}

// New returns an empty tree ordered by cmp.
func New[K any, V any](cmp order.Compare[K], opts ...Option[K, V]) *Tree[K, V] {
	t := &Tree[K, V]{cmp: cmp}
	t.root = &Node[K, V]{}
	t.root.left = newSlotChild[K, V]()
	t.root.right = newSlotChild[K, V]()
	t.root.value = newSlotValue[K, V]()
	pkg.Apply(t, opts...)
	if t.arena != nil {
		t.closer = pkg.NewCloser(t.arena.Close)
	} else {
		t.closer = pkg.NewCloser()
	}
	return t
}

// Get is Find's error-returning counterpart, for callers that want to
// propagate absence with errors.Is(err, pkg.ErrNotFound) rather than
// branching on a bool.
func (t *Tree[K, V]) Get(k K) (V, error) {
	v, ok := t.Find(k)
	if !ok {
		var zero V
		return zero, pkg.ErrNotFound
	}
	return v, nil
}

// Close releases the tree's arena, if one was installed via WithArena.
// It is a no-op otherwise. Safe to call more than once, and safe for
// concurrent callers: the underlying Closer runs the teardown exactly
// once and every caller observes the same result.
func (t *Tree[K, V]) Close() error {
	return t.closer.Close()
}

// Find returns the value stored under k, or (zero, false) if k is absent
// or its node is mid-removal.
func (t *Tree[K, V]) Find(k K) (V, bool) {
	c := t.root.load(rightSide)
	for c.node != nil {
		switch cmp := t.cmp(k, c.node.key); {
		case cmp == 0:
			vb := c.node.value.Load().(*valueBox[V])
			if !vb.present {
				var zero V
				return zero, false
			}
			return vb.v, true
		case cmp < 0:
			c = c.node.load(leftSide)
		default:
			c = c.node.load(rightSide)
		}
	}
	var zero V
	return zero, false
}

// Contains reports whether k is present.
func (t *Tree[K, V]) Contains(k K) bool {
	_, ok := t.Find(k)
	return ok
}

// Range calls fn for every present key in ascending order, stopping early
// if fn returns false. It walks the thread chain rather than recursing,
// the whole reason the tree is threaded in the first place.
func (t *Tree[K, V]) Range(fn func(k K, v V) bool) {
	first := t.root.load(rightSide)
	if first.node == nil {
		return
	}
	for n := leftmostReal(first.node); n != nil; n = successor(n) {
		vb := n.value.Load().(*valueBox[V])
		if vb.present && !fn(n.key, vb.v) {
			return
		}
	}
}

func successor[K any, V any](n *Node[K, V]) *Node[K, V] {
	c := n.load(rightSide)
	if c.node != nil {
		return leftmostReal(c.node)
	}
	return c.thread
}
