package list

import "lockfree/internal/order"

// OrderedList is a lock-free list kept sorted by cmp, with set semantics:
// add reports false if the key is already present.
type OrderedList[T any] struct {
	cmp  order.Compare[T]
	head *node[T]
}

// NewOrdered returns an empty ordered list using cmp as the total order.
func NewOrdered[T any](cmp order.Compare[T]) *OrderedList[T] {
	var zero T
	return &OrderedList[T]{cmp: cmp, head: newNode(zero, nil, false)}
}

// Handle is an opaque reference to a position in the list. The split-ordered
// hash set keeps one per bucket dummy so it can start a search partway
// through the list instead of always walking from the very first node.
type Handle[T any] struct {
	n *node[T]
}

// Head returns a handle to the list's fixed sentinel head.
func (l *OrderedList[T]) Head() Handle[T] {
	return Handle[T]{l.head}
}

// Key returns the key stored at h. Calling Key on the Head handle is
// meaningless; callers that need bucket dummy keys get them from AddFrom's
// returned handle instead.
func (h Handle[T]) Key() T {
	return h.n.key
}

// find returns the markable-reference pair (prev, curr) bracketing the
// first unmarked node with key >= target, unlinking any marked node it
// passes over along the way. On a lost unlink race it restarts from start
// rather than from head, so a bucket-local search never pays for the whole
// list's prefix.
func (l *OrderedList[T]) find(start *node[T], key T) (prev, curr *node[T]) {
retry:
	prev = start
	curr, _ = prev.next.Load()
	for curr != nil {
		succ, mark := curr.next.Load()
		if mark {
			if !prev.next.CompareAndSet(curr, succ, false, false) {
				goto retry
			}
			curr = succ
			continue
		}
		if l.cmp(curr.key, key) >= 0 {
			return prev, curr
		}
		prev = curr
		curr = succ
	}
	return prev, nil
}

// Add inserts key in order, returning false if it is already present.
func (l *OrderedList[T]) Add(key T) bool {
	_, ok := l.AddFrom(l.Head(), key)
	return ok
}

// AddFrom inserts key starting the search at start, returning a handle to
// the node holding key (whether newly inserted or already present) and
// whether the insert happened.
func (l *OrderedList[T]) AddFrom(start Handle[T], key T) (Handle[T], bool) {
	for {
		prev, curr := l.find(start.n, key)
		if curr != nil && l.cmp(curr.key, key) == 0 {
			return Handle[T]{curr}, false
		}
		n := newNode(key, curr, false)
		if prev.next.CompareAndSet(curr, n, false, false) {
			return Handle[T]{n}, true
		}
	}
}

// Remove marks then unlinks the node holding key, returning false if no
// such node is present. The physical unlink may be completed by a later
// caller's find if this one loses the race.
func (l *OrderedList[T]) Remove(key T) bool {
	return l.RemoveFrom(l.Head(), key)
}

// RemoveFrom is Remove, starting the search at start.
func (l *OrderedList[T]) RemoveFrom(start Handle[T], key T) bool {
	for {
		prev, curr := l.find(start.n, key)
		if curr == nil || l.cmp(curr.key, key) != 0 {
			return false
		}
		succ, _ := curr.next.Load()
		if !curr.next.CompareAndSet(succ, succ, false, true) {
			continue
		}
		if !prev.next.CompareAndSet(curr, succ, false, false) {
			l.find(start.n, key)
		}
		return true
	}
}

// Contains is a wait-free single pass: it reports true iff a node matching
// key exists and is not marked for deletion.
func (l *OrderedList[T]) Contains(key T) bool {
	return l.ContainsFrom(l.Head(), key)
}

// ContainsFrom is Contains, starting the search at start.
func (l *OrderedList[T]) ContainsFrom(start Handle[T], key T) bool {
	curr, _ := start.n.next.Load()
	for curr != nil {
		next, mark := curr.next.Load()
		if !mark {
			c := l.cmp(curr.key, key)
			if c == 0 {
				return true
			}
			if c > 0 {
				return false
			}
		}
		curr = next
	}
	return false
}

// Range calls fn for every unmarked node's key in list order, stopping
// early if fn returns false. Weakly consistent: it reflects some state
// between the start and end of the walk, the same guarantee the hash set's
// iteration gives.
func (l *OrderedList[T]) Range(fn func(key T) bool) {
	curr, _ := l.head.next.Load()
	for curr != nil {
		next, mark := curr.next.Load()
		if !mark && !fn(curr.key) {
			return
		}
		curr = next
	}
}
