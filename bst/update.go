package bst

import "lockfree/internal/mcas"

// Update inserts k with value v, or overwrites the value if k is already
// present. A fresh node's own left/right slots are set before the node
// is published, so only the parent's child pointer (and, where one
// exists, the displaced neighbour's back-thread) need to be part of the
// MCAS.
func (t *Tree[K, V]) Update(k K, v V) {
	v = t.copyIntoArena(v)
	for {
		parent := t.root
		pside := rightSide
		c := parent.load(pside)

		restart := false
		for c.node != nil {
			cmp := t.cmp(k, c.node.key)
			if cmp == 0 {
				old := c.node.value.Load().(*valueBox[V])
				if !old.present {
					restart = true
					break
				}
				if mcas.CAS(c.node.value, old, &valueBox[V]{v: v, present: true}) {
					return
				}
				restart = true
				break
			}
			parent = c.node
			if cmp < 0 {
				pside = leftSide
			} else {
				pside = rightSide
			}
			c = parent.load(pside)
		}
		if restart {
			continue
		}

		neighbor := c.thread
		// The dummy root has no comparable key, so it can never stand in
		// as a real predecessor/successor thread target.
		parentRef := parent
		if parent == t.root {
			parentRef = nil
		}

		var n *Node[K, V]
		entries := make([]mcas.Entry, 0, 2)
		if pside == leftSide {
			n = newNode(k, v, threadTo[K, V](neighbor), threadTo[K, V](parentRef))
			entries = append(entries, mcas.Entry{Target: parent.left, Expected: c, New: realChild[K, V](n)})
			if neighbor != nil {
				// neighbor's successor-thread only needs repointing at n
				// when it still names parent directly; if neighbor instead
				// holds a real right subtree, that subtree's own leftmost
				// thread (not this slot) is what names parent, and is left
				// untouched here.
				nc := neighbor.load(rightSide)
				if nc == threadTo[K, V](parentRef) {
					entries = append(entries, mcas.Entry{Target: neighbor.right, Expected: nc, New: threadTo[K, V](n)})
				}
			}
		} else {
			n = newNode(k, v, threadTo[K, V](parentRef), threadTo[K, V](neighbor))
			entries = append(entries, mcas.Entry{Target: parent.right, Expected: c, New: realChild[K, V](n)})
			if neighbor != nil {
				nc := neighbor.load(leftSide)
				if nc == threadTo[K, V](parentRef) {
					entries = append(entries, mcas.Entry{Target: neighbor.left, Expected: nc, New: threadTo[K, V](n)})
				}
			}
		}

		if mcas.New(entries...).Run() {
			return
		}
	}
}

// copyIntoArena copies v into the tree's arena when one was installed via
// WithArena and V is []byte; it is a no-op otherwise.
func (t *Tree[K, V]) copyIntoArena(v V) V {
	if t.arena == nil {
		return v
	}
	b, ok := any(v).([]byte)
	if !ok {
		return v
	}
	stored, err := t.arena.PutBytes(b)
	if err != nil {
		return v
	}
	return any(stored).(V)
}
