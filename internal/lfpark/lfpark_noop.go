//go:build !lfdebug

package lfpark

// Acquire is a no-op in production builds; see lfpark.go.
func Acquire(desc, slot uint64) {}

// Retry is a no-op in production builds; see lfpark.go.
func Retry(desc, slot uint64) {}

// Decision is a no-op in production builds; see lfpark.go.
func Decision(desc uint64, status string) {}
