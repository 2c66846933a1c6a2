// Package list implements the Harris-Michael lock-free linked list: a
// singly-linked chain of nodes whose next pointers are markable references,
// so a logical delete (setting the mark) and a physical unlink (CAS-ing the
// predecessor past the marked node) are separate, cooperatively-finished
// steps. Grounded on amino-cbbs' LockFreeList.java and its ordered subclass
// LockFreeOrderedList.java.
//
// Two variants live here: List, an unordered append-at-head multiset the way
// the base LockFreeList class behaves before continueCompare is overridden,
// and OrderedList, which keeps nodes sorted by a caller-supplied total order
// the way LockFreeOrderedList does. The split-ordered hash set builds
// directly on OrderedList's find/add/remove.
package list

import "lockfree/internal/markref"

type node[T any] struct {
	key  T
	next *markref.Ref[node[T]]
}

func newNode[T any](key T, next *node[T], mark bool) *node[T] {
	n := &node[T]{key: key}
	n.next = markref.New(next, mark)
	return n
}
