// Package order supplies the total-order and hash function types the
// ordered list, hash set, and BST accept from their caller, plus default
// implementations for the common key types. Generalizes the teacher's
// internal/compare.Compare (a []byte-only comparator) to any key type via
// Go generics.
package order

import (
	"bytes"
	"cmp"
	"hash/maphash"
)

// Compare reports whether a sorts before (negative), equal to (zero), or
// after (positive) b, exactly like bytes.Compare or strings.Compare.
type Compare[K any] func(a, b K) int

// Hash maps a key to a 32-bit hash. The split-ordered hash set only needs
// the low 32 bits: bucket counts and split-ordered keys are defined over
// uint32 throughout §4.5 of the design.
type Hash[K any] func(key K) uint32

// Ordered returns the natural Compare for any cmp.Ordered type.
func Ordered[K cmp.Ordered]() Compare[K] {
	return func(a, b K) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
}

// Bytes compares two byte slices lexicographically.
func Bytes(a, b []byte) int {
	return bytes.Compare(a, b)
}

var hashSeed = maphash.MakeSeed()

// StringHash hashes a string with a process-wide seeded maphash, grounded
// on rogpeppe-generic/ctrie's StringHash but folded down to 32 bits since
// the split-ordered key space here is uint32, not ctrie's 64-bit trie
// index.
func StringHash(s string) uint32 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	_, _ = h.WriteString(s)
	return fold64(h.Sum64())
}

// BytesHash hashes a byte slice the same way StringHash hashes a string.
func BytesHash(b []byte) uint32 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	_, _ = h.Write(b)
	return fold64(h.Sum64())
}

// IntHash hashes an int via a cheap avalanche mix (splitmix64's finalizer),
// good enough to spread split-ordered keys across buckets without pulling
// in a whole hashing package for a single word.
func IntHash(n int) uint32 {
	x := uint64(n)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return fold64(x)
}

func fold64(x uint64) uint32 {
	return uint32(x) ^ uint32(x>>32)
}
