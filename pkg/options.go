// Package pkg holds the small conventions shared by every container in
// this module: the functional-options pattern its constructors take
// knobs through, the sentinel errors first-class failure outcomes are
// reported with, and the Close adapter arena-backed containers tear down
// through.
package pkg

// Option applies one configuration knob to a T during construction.
// Every container's own Option type (bst.Option, hashset.Option, ...) is
// an instantiation of this, kept local to its package only because Go
// generics can't parameterize a method set across packages cleanly — the
// shape and the "closures over a mutable target" convention are shared.
type Option[T any] func(*T)

// OptionFunc is the named-type spelling of Option, for constructors that
// build a knob from something other than a literal closure (a parsed
// config map, a struct of defaults) and want to say so at the call site.
type OptionFunc[T any] func(*T)

// Apply runs every option over t in order. Safe to call with a nil or
// empty opts.
func Apply[T any](t *T, opts ...Option[T]) {
	for _, opt := range opts {
		opt(t)
	}
}
