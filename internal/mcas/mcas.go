// Package mcas implements the multi-word compare-and-swap engine the
// threaded BST builds its structural mutations on: conditional CAS (CCAS)
// as the single-location primitive, and MCAS as N independent CCAS
// installs tied together by one shared decision.
//
// Grounded on amino-cbbs' MultiCAS.java: the same three-phase acquire,
// decide, release protocol, the same sort-by-stable-identifier step to
// avoid livelock between overlapping transactions, and the same
// help-on-read contract for anything that finds a descriptor still
// occupying a slot it wants to touch.
package mcas

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"lockfree/internal/lfid"
	"lockfree/internal/lfpark"
)

// Status is a descriptor's current disposition.
type Status int32

const (
	Undecided Status = iota
	Successful
	Failed
)

func (s Status) String() string {
	switch s {
	case Undecided:
		return "undecided"
	case Successful:
		return "successful"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Slot is one memory location that can take part in a CCAS or MCAS
// transaction. The zero value is not usable; construct with NewSlot.
type Slot struct {
	id uint64
	v  atomic.Pointer[slotState]
}

type slotState struct {
	val  any
	ccas *ccasDesc
}

// ccasDesc is the record a CCAS installs into a slot while in flight,
// mirroring amino-cbbs' CCASDesc{obj, offset, e, n, cond}. cond is always
// the owning MCAS descriptor here: this module has no caller that drives
// CCAS independently of an MCAS transaction, so a bare N=1 Desc (see CAS)
// stands in for a freestanding conditional CAS.
type ccasDesc struct {
	target   *Slot
	expected any
	new      any
	desc     *Desc
}

// NewSlot returns a slot holding val, with a fresh stable identifier for
// MCAS's sort-by-identity step.
func NewSlot(val any) *Slot {
	s := &Slot{id: lfid.Next()}
	s.v.Store(&slotState{val: val})
	return s
}

// Load returns the slot's current logical value, helping to completion any
// CCAS/MCAS descriptor it finds occupying the slot first.
func (s *Slot) Load() any {
	for {
		st := s.v.Load()
		if st.ccas == nil {
			return st.val
		}
		runDesc(st.ccas.desc)
	}
}

// Entry names one (target, expected, new) triple of an MCAS transaction.
type Entry struct {
	Target   *Slot
	Expected any
	New      any
}

// Desc is an MCAS descriptor: immutable once built, shared by every thread
// that helps it to completion.
type Desc struct {
	id      uint64
	status  atomic.Int32
	entries []Entry
}

// New builds an MCAS transaction over the given entries. Entries are
// sorted internally by each target's stable identifier before the
// transaction runs, so callers need not presort.
func New(entries ...Entry) *Desc {
	d := &Desc{id: lfid.Next(), entries: append([]Entry(nil), entries...)}
	sort.Slice(d.entries, func(i, j int) bool {
		return d.entries[i].Target.id < d.entries[j].Target.id
	})
	return d
}

// CAS performs a single-location compare-and-swap through the MCAS engine.
// Per the invariant that MCAS with N=1 reduces to plain CAS semantics,
// this is the module's only exposed standalone CCAS: a one-entry Desc.
func CAS(target *Slot, expected, new any) bool {
	return New(Entry{Target: target, Expected: expected, New: new}).Run()
}

// Status returns the descriptor's current disposition.
func (d *Desc) Status() Status {
	return Status(d.status.Load())
}

// Run drives the transaction through acquire, decision, and release,
// helping along any conflicting descriptor it encounters. It is safe for
// any number of threads to call Run on the same *Desc concurrently: the
// descriptor carries all the state the protocol needs, so a helper that
// starts from scratch converges on the same outcome as the original
// caller. Returns true iff the transaction committed (status Successful).
func (d *Desc) Run() bool {
	if d.Status() != Undecided {
		return d.Status() == Successful
	}

	for _, e := range d.entries {
		if !d.acquire(e) {
			// A helper may already have decided Successful and released
			// this entry before it was read here; report the decided status.
			d.status.CompareAndSwap(int32(Undecided), int32(Failed))
			d.release()
			lfpark.Decision(d.id, d.Status().String())
			return d.Status() == Successful
		}
	}

	d.status.CompareAndSwap(int32(Undecided), int32(Successful))
	d.release()
	lfpark.Decision(d.id, d.Status().String())
	return d.Status() == Successful
}

// Diagnose returns a diagnostic error for a Failed descriptor, naming
// every entry whose slot no longer holds the value the transaction
// expected — aggregated with hashicorp/go-multierror since more than one
// entry can independently be the reason a batch lost the race. Returns
// nil for a Successful or still-Undecided descriptor; nothing on the
// commit path calls this, it exists for tests and debug tooling that
// want to know why a transaction failed rather than just that it did.
func (d *Desc) Diagnose() error {
	if d.Status() != Failed {
		return nil
	}
	var result *multierror.Error
	for _, e := range d.entries {
		if got := e.Target.Load(); !valEqual(got, e.Expected) {
			result = multierror.Append(result, fmt.Errorf("slot %d: expected %v, found %v", e.Target.id, e.Expected, got))
		}
	}
	return result.ErrorOrNil()
}

// acquire installs d's descriptor at e.Target, returning false iff the
// transaction is doomed (the target holds neither e.Expected nor a
// descriptor that resolves back to it).
func (d *Desc) acquire(e Entry) bool {
	for {
		if d.Status() != Undecided {
			// Another helper already decided this transaction; nothing
			// left for this entry to do.
			return d.Status() == Successful
		}

		st := e.Target.v.Load()
		if st.ccas != nil {
			if st.ccas.desc == d {
				return true // already acquired, by us or a helper
			}
			lfpark.Retry(d.id, e.Target.id)
			runDesc(st.ccas.desc) // finish the conflicting transaction first
			continue
		}

		if !valEqual(st.val, e.Expected) {
			return false
		}

		next := &slotState{
			val:  st.val,
			ccas: &ccasDesc{target: e.Target, expected: e.Expected, new: e.New, desc: d},
		}
		if e.Target.v.CompareAndSwap(st, next) {
			lfpark.Acquire(d.id, e.Target.id)
			return true
		}
		// Lost the race for this slot; reread and retry.
	}
}

// release pushes every acquired entry to its final value. Idempotent and
// safe for concurrent callers: once a slot's ccas pointer is cleared,
// later releasers see a plain state and do nothing.
func (d *Desc) release() {
	final := d.Status()
	for _, e := range d.entries {
		for {
			st := e.Target.v.Load()
			if st.ccas == nil || st.ccas.desc != d {
				break // already released by another helper
			}
			var v any
			if final == Successful {
				v = e.New
			} else {
				v = e.Expected
			}
			if e.Target.v.CompareAndSwap(st, &slotState{val: v}) {
				break
			}
		}
	}
}

// runDesc drives a possibly-foreign descriptor to completion. It is the
// helping entry point used by Slot.Load and Desc.acquire when they meet a
// descriptor installed by some other transaction.
func runDesc(d *Desc) {
	d.Run()
}

func valEqual(a, b any) bool {
	return a == b
}
