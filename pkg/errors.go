package pkg

import "errors"

// Sentinel errors for outcomes that are a normal, expected part of a
// container's contract rather than a bug — callers compare against these
// with errors.Is instead of a type switch or a panic. Mirrors boulder's
// pkg/memtable/errors.go and pkg/db/error.go: one var block, one line
// each, no custom error types.
var (
	// ErrNotFound is returned by lookup/removal operations that expose
	// an error-returning variant when the key is absent.
	ErrNotFound = errors.New("lockfree: key not found")
	// ErrAlreadyPresent is returned by insert-only operations when the
	// key is already a member.
	ErrAlreadyPresent = errors.New("lockfree: key already present")
	// ErrEmpty names an empty container. The pop operations in this
	// module report emptiness through an ok bool and do not return it.
	ErrEmpty = errors.New("lockfree: container is empty")
	// ErrClosed names use after Close. No operation in this module
	// returns it; calls made after Close are not checked.
	ErrClosed = errors.New("lockfree: already closed")
)
