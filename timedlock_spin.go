//go:build threadport_spin

package threadport

import (
	"github.com/joeycumines/go-threadport/internal/goid"
)

// timedLockSlow is the emulated half of TimedLock on the spin build:
// repeatedly try the lock, yielding the processor between attempts, until
// acquired or the remaining time reaches zero. An approximation: the
// busy-wait window has no fairness guarantee and burns CPU while waiting.
func (m *Mutex) timedLockSlow(deadline Timespec) error {
	for {
		switch err := m.TryLock(); err {
		case nil:
			return nil
		case ErrBusy:
		default:
			return err
		}
		if absToRelMilliseconds(deadline) == 0 {
			log().Trace().Int64("thread", goid.Get()).Log("timed lock expired")
			return ErrTimedOut
		}
		Yield()
	}
}
