//go:build !threadport_spin

package threadport

import (
	"time"

	"github.com/joeycumines/go-threadport/internal/goid"
)

// timedLockSlow is the contended half of TimedLock on the default build: a
// true bounded wait against the semaphore, no polling. The initial TryLock
// already failed, so a zero remaining time is an immediate timeout.
func (m *Mutex) timedLockSlow(deadline Timespec) error {
	rel := absToRelMilliseconds(deadline)
	if rel == 0 {
		return ErrTimedOut
	}
	sem := m.semaphore()
	if sem == nil {
		return ErrDestroyed
	}
	timer := time.NewTimer(time.Duration(rel) * time.Millisecond)
	defer timer.Stop()
	select {
	case sem <- struct{}{}:
		m.owner.Store(goid.Get())
		m.depth = 1
		return nil
	case <-timer.C:
		log().Trace().Int64("thread", goid.Get()).Log("timed lock expired")
		return ErrTimedOut
	}
}
