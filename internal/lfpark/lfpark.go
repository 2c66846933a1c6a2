//go:build lfdebug

// Package lfpark instruments internal/mcas's help protocol with
// structured tracing, built only when the lfdebug tag is set so the
// acquire/release hot path never pays for it in production builds — the
// no-op build of this package (lfpark_noop.go) compiles down to nothing.
// Named for the lock-free "parking" a helper does while it finishes
// someone else's descriptor before retrying its own acquire, the same
// stop-and-help-first idiom runtime/lfstack.go's pack/unpack tagged
// pointers encode structurally; here it's logged instead.
package lfpark

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once   sync.Once
	logger *zap.SugaredLogger
)

func get() *zap.SugaredLogger {
	once.Do(func() {
		z, err := zap.NewDevelopment()
		if err != nil {
			logger = zap.NewNop().Sugar()
			return
		}
		logger = z.Sugar()
	})
	return logger
}

// Acquire logs that desc claimed slot without contention.
func Acquire(desc, slot uint64) {
	get().Debugw("mcas acquire", "desc", desc, "slot", slot)
}

// Retry logs that desc found a foreign descriptor occupying slot and
// helped it to completion before retrying its own acquire of that slot.
func Retry(desc, slot uint64) {
	get().Debugw("mcas retry", "desc", desc, "slot", slot)
}

// Decision logs a descriptor's final disposition once Run commits to
// Successful or Failed.
func Decision(desc uint64, status string) {
	get().Debugw("mcas decision", "desc", desc, "status", status)
}
