package bst

import "lockfree/internal/mcas"

// Remove deletes k, returning false if it was already absent. Deletion
// always submits one MCAS covering the parent's child pointer, the
// victim's value slot (cleared so a racing Find sees it as absent even
// if it reads the value slot directly rather than helping through the
// structural change), and whichever neighbouring thread pointers the
// case requires.
func (t *Tree[K, V]) Remove(k K) bool {
	for {
		parent := t.root
		pside := rightSide
		c := parent.load(pside)
		for c.node != nil {
			cmp := t.cmp(k, c.node.key)
			if cmp == 0 {
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
		if c.node == nil {
			return false
		}
		victim := c.node

		vb := victim.value.Load().(*valueBox[V])
		if !vb.present {
			return false
		}

		entries := t.buildRemoval(parent, pside, victim)
		entries = append(entries, mcas.Entry{Target: victim.value, Expected: vb, New: &valueBox[V]{}})

		if mcas.New(entries...).Run() {
			return true
		}
		// Lost the race (structure moved under us, or value changed
		// concurrently): re-find and retry.
	}
}

// buildRemoval dispatches on which of victim's children are real versus
// threaded and returns the MCAS entries that excise it.
func (t *Tree[K, V]) buildRemoval(parent *Node[K, V], pside side, victim *Node[K, V]) []mcas.Entry {
	vl := victim.load(leftSide)
	vr := victim.load(rightSide)

	switch {
	case vl.node == nil && vr.node == nil:
		return unlinkLeaf(parent, pside, victim, vl.thread, vr.thread)
	case vl.node == nil:
		return unlinkCase2(parent, pside, victim, vr.node, vl.thread)
	case vr.node == nil:
		return unlinkCase3(parent, pside, victim, vl.node, vr.thread)
	default:
		return unlinkTwoChildren(parent, pside, victim, vl.node, vr.node)
	}
}

// unlinkLeaf removes victim, which has no real children. parent's slot
// reverts to a thread on whichever neighbour victim's own side pointed
// at; pred's forward thread and succ's backward thread, if they exist,
// are repaired to bypass victim.
func unlinkLeaf[K any, V any](parent *Node[K, V], pside side, victim, pred, succ *Node[K, V]) []mcas.Entry {
	var replacement *Node[K, V]
	if pside == leftSide {
		replacement = pred
	} else {
		replacement = succ
	}
	entries := []mcas.Entry{
		{Target: parent.slot(pside), Expected: realChild[K, V](victim), New: threadTo[K, V](replacement)},
	}
	// pred/succ's reciprocal thread only needs repairing when it still
	// names victim directly; if it instead holds a real subtree, that
	// subtree's own leftmost/rightmost thread (not this slot) names
	// victim, and was already retargeted by whichever case removed the
	// node actually adjacent to victim inside that subtree.
	if pred != nil {
		if pc := pred.load(rightSide); pc == threadTo[K, V](victim) {
			entries = append(entries, mcas.Entry{Target: pred.right, Expected: pc, New: threadTo[K, V](succ)})
		}
	}
	if succ != nil {
		if sc := succ.load(leftSide); sc == threadTo[K, V](victim) {
			entries = append(entries, mcas.Entry{Target: succ.left, Expected: sc, New: threadTo[K, V](pred)})
		}
	}
	return entries
}

// unlinkCase2 removes victim, whose left side is a thread to pred (nil at
// the minimum) and whose right child is real: the right child is
// promoted into parent's slot, and the leftmost node of that subtree —
// victim's in-order successor, currently threaded back to victim — is
// repointed at pred.
func unlinkCase2[K any, V any](parent *Node[K, V], pside side, victim, rightChild, pred *Node[K, V]) []mcas.Entry {
	left := leftmostReal(rightChild)
	lc := left.load(leftSide)
	entries := []mcas.Entry{
		{Target: parent.slot(pside), Expected: realChild[K, V](victim), New: realChild[K, V](rightChild)},
		{Target: left.left, Expected: lc, New: threadTo[K, V](pred)},
	}
	if pred != nil {
		if pc := pred.load(rightSide); pc == threadTo[K, V](victim) {
			entries = append(entries, mcas.Entry{Target: pred.right, Expected: pc, New: threadTo[K, V](left)})
		}
	}
	return entries
}

// unlinkCase3 mirrors unlinkCase2 for a victim whose right side is a
// thread to succ and whose left child is real.
func unlinkCase3[K any, V any](parent *Node[K, V], pside side, victim, leftChild, succ *Node[K, V]) []mcas.Entry {
	right := rightmostReal(leftChild)
	rc := right.load(rightSide)
	entries := []mcas.Entry{
		{Target: parent.slot(pside), Expected: realChild[K, V](victim), New: realChild[K, V](leftChild)},
		{Target: right.right, Expected: rc, New: threadTo[K, V](succ)},
	}
	if succ != nil {
		if sc := succ.load(leftSide); sc == threadTo[K, V](victim) {
			entries = append(entries, mcas.Entry{Target: succ.left, Expected: sc, New: threadTo[K, V](right)})
		}
	}
	return entries
}

// unlinkTwoChildren removes victim when both children are real, via its
// in-order successor s (the leftmost real node of victim's right
// subtree). If s is victim's immediate right child the swap is a direct
// two-field splice; otherwise s is first detached from its own parent sp
// exactly as unlinkCase2/3 would detach a single-child node, then
// installed in victim's old slot carrying victim's two subtrees.
func unlinkTwoChildren[K any, V any](parent *Node[K, V], pside side, victim, leftChild, rightChild *Node[K, V]) []mcas.Entry {
	s := rightChild
	sp := victim
	for {
		c := s.load(leftSide)
		if c.node == nil {
			break
		}
		sp = s
		s = c.node
	}

	predOfVictim := rightmostReal(leftChild)

	if sp == victim {
		// predOfVictim's right thread still names victim and must be
		// repointed at s, the node now taking over as leftChild's
		// successor.
		pc := predOfVictim.load(rightSide)
		return []mcas.Entry{
			{Target: parent.slot(pside), Expected: realChild[K, V](victim), New: realChild[K, V](s)},
			{Target: s.left, Expected: threadTo[K, V](victim), New: realChild[K, V](leftChild)},
			{Target: predOfVictim.right, Expected: pc, New: threadTo[K, V](s)},
		}
	}

	sRight := s.load(rightSide)

	// Once s moves up into victim's slot, s is the in-order predecessor of
	// far (or of sp, when s had no right subtree).
	var entries []mcas.Entry
	var spNewLeft child[K, V]
	if sRight.node != nil {
		spNewLeft = realChild[K, V](sRight.node)
		far := leftmostReal(sRight.node)
		fc := far.load(leftSide)
		entries = append(entries, mcas.Entry{Target: far.left, Expected: fc, New: threadTo[K, V](s)})
	} else {
		spNewLeft = threadTo[K, V](s)
	}

	// predOfVictim is the rightmost real descendant of leftChild, which by
	// construction always threads its right side back to victim,
	// regardless of where s came from.
	pc := predOfVictim.load(rightSide)
	entries = append(entries,
		mcas.Entry{Target: sp.left, Expected: realChild[K, V](s), New: spNewLeft},
		mcas.Entry{Target: parent.slot(pside), Expected: realChild[K, V](victim), New: realChild[K, V](s)},
		mcas.Entry{Target: s.left, Expected: threadTo[K, V](victim), New: realChild[K, V](leftChild)},
		mcas.Entry{Target: s.right, Expected: sRight, New: realChild[K, V](rightChild)},
		mcas.Entry{Target: predOfVictim.right, Expected: pc, New: threadTo[K, V](s)},
	)
	return entries
}
