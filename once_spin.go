//go:build threadport_spin

package threadport

import "sync/atomic"

// One-time initialization states.
const (
	onceNotStarted uint32 = iota
	onceInProgress
	onceCompleted
)

// OnceFlag guards a one-time initialization shared by racing callers. The
// zero value is ready for use; a flag must not be copied after first use.
//
// On the spin build the flag is a tri-state token claimed by atomic
// compare-and-swap; losers yield the processor while the winner runs the
// initializer.
type OnceFlag struct {
	status atomic.Uint32
}

// CallOnce executes fn exactly once across all callers sharing flag.
// Every caller, including the one that ran fn, returns only after fn has
// completed.
//
// The winner's completion store and the losers' acquire loads order fn's
// effects before any caller returns. If fn panics the flag sticks
// in-progress and later callers spin forever; the default build instead
// marks the flag complete.
func CallOnce(flag *OnceFlag, fn func()) {
	if flag.status.CompareAndSwap(onceNotStarted, onceInProgress) {
		fn()
		flag.status.Store(onceCompleted)
		return
	}
	for flag.status.Load() == onceInProgress {
		Yield()
	}
}
