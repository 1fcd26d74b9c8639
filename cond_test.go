package threadport

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// condFixture pairs a condition variable with its mutex and a predicate
// flag, the way callers are expected to use one.
type condFixture struct {
	m     *Mutex
	c     *Cond
	ready bool
}

func newCondFixture(t *testing.T) *condFixture {
	t.Helper()
	m, err := NewMutex(MutexPlain)
	if err != nil {
		t.Fatal(err)
	}
	return &condFixture{m: m, c: NewCond()}
}

func TestCondWaitSignal(t *testing.T) {
	f := newCondFixture(t)
	woke := make(chan struct{})
	go func() {
		f.m.Lock()
		for !f.ready {
			if err := f.c.Wait(f.m); err != nil {
				t.Error(err)
				break
			}
		}
		f.m.Unlock()
		close(woke)
	}()

	time.Sleep(20 * time.Millisecond)
	f.m.Lock()
	f.ready = true
	f.c.Signal()
	f.m.Unlock()

	select {
	case <-woke:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never woke")
	}
}

func TestCondSignalWithoutWaitersIsNoOp(t *testing.T) {
	f := newCondFixture(t)
	// Neither call may fail or panic with nobody waiting.
	if err := f.c.Signal(); err != nil {
		t.Fatal(err)
	}
	if err := f.c.Broadcast(); err != nil {
		t.Fatal(err)
	}

	// A signal issued with zero waiters is not banked: a later waiter
	// still blocks until a distinct signal arrives.
	started := make(chan struct{})
	woke := make(chan struct{})
	go func() {
		f.m.Lock()
		close(started)
		for !f.ready {
			f.c.Wait(f.m)
		}
		f.m.Unlock()
		close(woke)
	}()
	<-started
	select {
	case <-woke:
		t.Fatal("waiter woke from a signal that preceded its wait")
	case <-time.After(50 * time.Millisecond):
	}

	f.m.Lock()
	f.ready = true
	f.c.Signal()
	f.m.Unlock()
	select {
	case <-woke:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter missed the later signal")
	}
}

func TestCondBroadcast(t *testing.T) {
	f := newCondFixture(t)
	const waiters = 8
	var wg sync.WaitGroup
	wg.Add(waiters)
	ready := make(chan struct{}, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			f.m.Lock()
			ready <- struct{}{}
			for !f.ready {
				f.c.Wait(f.m)
			}
			f.m.Unlock()
		}()
	}
	for i := 0; i < waiters; i++ {
		<-ready
	}
	// All waiters are queued once they release the mutex; take it to be
	// sure the last one is parked.
	f.m.Lock()
	f.ready = true
	f.c.Broadcast()
	f.m.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("broadcast failed to wake all waiters")
	}
}

func TestCondTimedWait(t *testing.T) {
	t.Run("times out and reacquires mutex", func(t *testing.T) {
		f := newCondFixture(t)
		f.m.Lock()
		err := f.c.TimedWait(f.m, Deadline(50*time.Millisecond))
		if !errors.Is(err, ErrTimedOut) {
			t.Errorf("expected ErrTimedOut, got %v", err)
		}
		// The mutex must be held again on return.
		if err := f.m.Unlock(); err != nil {
			t.Errorf("mutex not reacquired after timeout: %v", err)
		}
	})

	t.Run("wakes on signal before deadline", func(t *testing.T) {
		f := newCondFixture(t)
		res := make(chan error, 1)
		go func() {
			f.m.Lock()
			err := f.c.TimedWait(f.m, Deadline(5*time.Second))
			f.m.Unlock()
			res <- err
		}()
		time.Sleep(20 * time.Millisecond)
		f.m.Lock()
		f.c.Signal()
		f.m.Unlock()
		select {
		case err := <-res:
			if err != nil {
				t.Errorf("expected wakeup before deadline, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed wait neither woke nor timed out")
		}
	})

	t.Run("past deadline still reacquires", func(t *testing.T) {
		f := newCondFixture(t)
		f.m.Lock()
		err := f.c.TimedWait(f.m, Deadline(-time.Second))
		if !errors.Is(err, ErrTimedOut) {
			t.Errorf("expected ErrTimedOut, got %v", err)
		}
		if err := f.m.Unlock(); err != nil {
			t.Errorf("mutex not reacquired: %v", err)
		}
	})
}

func TestCondSignalWakesAtMostOne(t *testing.T) {
	f := newCondFixture(t)
	const waiters = 4
	wokeCount := 0
	var wg sync.WaitGroup
	wg.Add(waiters)
	queued := make(chan struct{}, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			f.m.Lock()
			queued <- struct{}{}
			f.c.Wait(f.m)
			wokeCount++
			f.m.Unlock()
		}()
	}
	for i := 0; i < waiters; i++ {
		<-queued
	}
	f.m.Lock()
	f.c.Signal()
	f.m.Unlock()
	time.Sleep(100 * time.Millisecond)

	f.m.Lock()
	got := wokeCount
	f.m.Unlock()
	if got != 1 {
		t.Errorf("signal woke %d waiters, want 1", got)
	}
	// Release the rest so the test goroutines exit.
	f.c.Broadcast()
	wg.Wait()
}
