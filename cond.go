package threadport

import (
	"time"
)

// Cond is a condition variable used with a caller-supplied locked [Mutex].
// The zero value is ready for use; [NewCond] and [Cond.Init] exist for API
// symmetry with the other primitives. A Cond must not be copied after first
// use.
//
// The calling thread must hold the paired mutex when waiting or signaling,
// per the native contract. Wakeups may be spurious: waiters must re-check
// their predicate in a loop.
type Cond struct {
	mu guardMutex
	// waiters is the FIFO wait queue. Each waiter blocks on its own
	// channel; a signal closes the front channel, a broadcast closes all.
	waiters []chan struct{}
}

// NewCond allocates an initialized condition variable.
func NewCond() *Cond {
	return &Cond{}
}

// Init prepares the condition variable for use. The zero value is already
// valid; Init only exists so initialization reads the same as for [Mutex].
func (c *Cond) Init() error {
	c.mu.Lock()
	c.waiters = nil
	c.mu.Unlock()
	return nil
}

// Destroy releases the condition variable. No threads may be waiting.
func (c *Cond) Destroy() {
	c.mu.Lock()
	c.waiters = nil
	c.mu.Unlock()
}

// enqueue registers a new waiter. Called with the paired mutex still held,
// which is what makes release-and-wait atomic with respect to wakeups: a
// signaler cannot run until the mutex is released, by which point the waiter
// is already queued.
func (c *Cond) enqueue() chan struct{} {
	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

// remove unregisters a waiter that gave up, reporting whether it was still
// queued. A false return means a wakeup was already consumed on its behalf.
func (c *Cond) remove(ch chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Wait atomically releases m and blocks until woken by [Cond.Signal] or
// [Cond.Broadcast], reacquiring m before returning. The caller must hold m.
func (c *Cond) Wait(m *Mutex) error {
	ch := c.enqueue()
	if err := m.Unlock(); err != nil {
		c.remove(ch)
		return err
	}
	<-ch
	return m.Lock()
}

// TimedWait behaves as [Cond.Wait] bounded by an absolute deadline (per the
// package time source, see [Now]). Returns [ErrTimedOut] if the bound
// elapses with no wakeup; in both outcomes m is reacquired before returning.
// Timeout granularity is one millisecond.
func (c *Cond) TimedWait(m *Mutex, deadline Timespec) error {
	ch := c.enqueue()
	if err := m.Unlock(); err != nil {
		c.remove(ch)
		return err
	}
	var werr error
	rel := absToRelMilliseconds(deadline)
	timer := time.NewTimer(time.Duration(rel) * time.Millisecond)
	select {
	case <-ch:
		timer.Stop()
	case <-timer.C:
		// Lost the race against a concurrent signal if removal fails;
		// the wakeup was consumed, so report success.
		if c.remove(ch) {
			werr = ErrTimedOut
		}
	}
	if err := m.Lock(); err != nil {
		return err
	}
	return werr
}

// Signal wakes at most one waiting thread; which one is up to queue order
// and the scheduler. Signaling with no waiters present is a no-op, never an
// error.
func (c *Cond) Signal() error {
	c.mu.Lock()
	if len(c.waiters) > 0 {
		close(c.waiters[0])
		c.waiters = c.waiters[1:]
	}
	c.mu.Unlock()
	return nil
}

// Broadcast wakes all currently waiting threads. A no-op with no waiters.
func (c *Cond) Broadcast() error {
	c.mu.Lock()
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
	c.mu.Unlock()
	return nil
}
