package threadport

import (
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/go-threadport/internal/goid"
)

// MutexKind selects the behavior of a [Mutex]. The base kind is exactly one
// of MutexPlain, MutexTry, or MutexTimed, optionally combined with
// MutexRecursive, giving six valid values. The base kind is advisory on this
// backend (every mutex supports TryLock and TimedLock, the same way a
// native critical section does) but initialization still rejects anything
// outside the six combinations.
type MutexKind int

const (
	// MutexPlain is a basic non-recursive lock.
	MutexPlain MutexKind = 0
	// MutexTry marks a mutex intended for non-blocking acquisition.
	MutexTry MutexKind = 1 << 0
	// MutexTimed marks a mutex intended for deadline-bounded acquisition.
	MutexTimed MutexKind = 1 << 1
	// MutexRecursive permits counted re-entrant locking by the holder.
	MutexRecursive MutexKind = 1 << 2
)

// valid reports whether k is one of the six supported combinations.
func (k MutexKind) valid() bool {
	switch k &^ MutexRecursive {
	case MutexPlain, MutexTry, MutexTimed:
		return true
	}
	return false
}

// Mutex lifecycle states.
const (
	mutexUnset uint32 = iota
	mutexIniting
	mutexReady
	mutexDestroyed
)

// Mutex is an exclusive lock. The zero value is a usable plain mutex
// (mirroring the static initializer of the emulated C type); call
// [Mutex.Init] or [NewMutex] to select another kind. A Mutex must not be
// copied after first use.
//
// Only the holding thread may unlock; with [MutexRecursive] the holder may
// lock repeatedly and each extra lock must be matched by an extra unlock.
type Mutex struct {
	// state gates lazy initialization and use-after-destroy.
	state atomic.Uint32
	kind  MutexKind
	// sem is a one-slot semaphore: a buffered send acquires the lock, a
	// receive releases it. The buffered channel is the native bounded-wait
	// primitive backing TimedLock on the default build.
	sem chan struct{}
	// owner is the logical thread id of the current holder, 0 when free.
	// Read by the recursive fast path and by diagnostics.
	owner atomic.Int64
	// depth counts recursive acquisitions. Only the holder touches it
	// while holding the lock, so it needs no atomicity.
	depth int
}

// NewMutex allocates and initializes a mutex of the given kind.
func NewMutex(kind MutexKind) (*Mutex, error) {
	var m Mutex
	if err := m.Init(kind); err != nil {
		return nil, err
	}
	return &m, nil
}

// Init initializes (or reinitializes, after Destroy) the mutex. Rejects any
// kind outside the six valid combinations with [ErrInvalidKind], in which
// case nothing is constructed. Init must complete before the mutex is shared
// between threads.
func (m *Mutex) Init(kind MutexKind) error {
	if !kind.valid() {
		return ErrInvalidKind
	}
	m.kind = kind
	m.sem = make(chan struct{}, 1)
	m.owner.Store(0)
	m.depth = 0
	m.state.Store(mutexReady)
	return nil
}

// Destroy releases the mutex. The mutex must be unlocked; subsequent
// operations return [ErrDestroyed] until reinitialized.
func (m *Mutex) Destroy() {
	m.state.Store(mutexDestroyed)
}

// semaphore returns the backing semaphore, lazily initializing the zero
// value to a plain mutex. Returns nil once destroyed.
func (m *Mutex) semaphore() chan struct{} {
	for {
		switch m.state.Load() {
		case mutexReady:
			return m.sem
		case mutexDestroyed:
			return nil
		case mutexUnset:
			if m.state.CompareAndSwap(mutexUnset, mutexIniting) {
				// kind stays at its zero value, which is MutexPlain;
				// writing it here would race the recursive fast path's
				// read during concurrent first use of the zero value.
				m.sem = make(chan struct{}, 1)
				m.state.Store(mutexReady)
				return m.sem
			}
		default:
			// Another thread is mid-Init of the zero value.
			runtime.Gosched()
		}
	}
}

// Lock blocks until the mutex is acquired. It does not fail under normal
// operation once initialized.
func (m *Mutex) Lock() error {
	self := goid.Get()
	if m.kind&MutexRecursive != 0 && m.owner.Load() == self {
		m.depth++
		return nil
	}
	sem := m.semaphore()
	if sem == nil {
		return ErrDestroyed
	}
	sem <- struct{}{}
	m.owner.Store(self)
	m.depth = 1
	return nil
}

// TryLock acquires the mutex only if it is immediately available, returning
// [ErrBusy] without blocking otherwise.
func (m *Mutex) TryLock() error {
	self := goid.Get()
	if m.kind&MutexRecursive != 0 && m.owner.Load() == self {
		m.depth++
		return nil
	}
	sem := m.semaphore()
	if sem == nil {
		return ErrDestroyed
	}
	select {
	case sem <- struct{}{}:
		m.owner.Store(self)
		m.depth = 1
		return nil
	default:
		return ErrBusy
	}
}

// TimedLock acquires the mutex, giving up with [ErrTimedOut] once the
// absolute deadline (per the package time source, see [Now]) has passed. A
// deadline already in the past degenerates to a single try. Timeout
// granularity is one millisecond.
func (m *Mutex) TimedLock(deadline Timespec) error {
	switch err := m.TryLock(); err {
	case nil:
		return nil
	case ErrBusy:
		return m.timedLockSlow(deadline)
	default:
		return err
	}
}

// Unlock releases the mutex. Calling Unlock without holding the lock is a
// contract violation; it is reported as [ErrNotLocked] rather than left
// undefined, but callers must not rely on that. A recursive mutex unlocks
// only when every acquisition has been matched.
func (m *Mutex) Unlock() error {
	if m.kind&MutexRecursive != 0 && m.depth > 1 {
		m.depth--
		return nil
	}
	sem := m.semaphore()
	if sem == nil {
		return ErrDestroyed
	}
	m.depth = 0
	m.owner.Store(0)
	select {
	case <-sem:
		return nil
	default:
		return ErrNotLocked
	}
}
