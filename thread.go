package threadport

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-threadport/internal/goid"
)

// StartFunc is a thread entry point. Its return value becomes the thread's
// exit status, observable via [Thread.Join].
type StartFunc func(arg any) int

// startPackage carries the entry point and argument across the spawn
// boundary. It is owned by [Create] until the new thread copies it out and
// clears it; nothing retains it afterwards.
type startPackage struct {
	fn  StartFunc
	arg any
}

// threadExitSignal unwinds a thread terminated by [Exit].
type threadExitSignal struct {
	code int
}

// Thread handle states.
const (
	threadJoinable uint32 = iota
	threadDetached
	threadJoined
)

// Thread is a handle to a spawned execution unit. A handle obtained from
// [Create] must be joined or detached exactly once; doing neither leaks the
// handle, doing either twice fails with [ErrNotJoinable].
type Thread struct {
	// seq is the logical thread identity compared by [Equal]. Distinct
	// from the runtime goroutine id: two handles denote the same thread
	// iff their seq matches, regardless of how they were obtained.
	seq uint64
	// id is the runtime goroutine id, set by the thread itself before it
	// becomes reachable through the registry.
	id    atomic.Int64
	state atomic.Uint32
	// adopted marks a handle fabricated by [Current] for a thread this
	// package did not spawn; such handles are never joinable.
	adopted bool
	// done is closed after the exit status is recorded and the destructor
	// sweep has finished, so a joiner always observes both.
	done chan struct{}
	code int
	err  error
}

var threadSeq atomic.Uint64

// threads maps runtime goroutine id to the canonical handle, for [Current],
// [Exit], and the exit-time destructor sweep.
var threads struct {
	mu   guardRWMutex
	byID map[int64]*Thread
}

func registerThread(tid int64, t *Thread) {
	threads.mu.Lock()
	if threads.byID == nil {
		threads.byID = make(map[int64]*Thread)
	}
	threads.byID[tid] = t
	threads.mu.Unlock()
}

func unregisterThread(tid int64) {
	threads.mu.Lock()
	delete(threads.byID, tid)
	threads.mu.Unlock()
}

func lookupThread(tid int64) *Thread {
	threads.mu.RLock()
	t := threads.byID[tid]
	threads.mu.RUnlock()
	return t
}

// Create spawns a new thread executing fn(arg) and returns a live, joinable
// handle. fn's return value (or the code passed to [Exit]) becomes the exit
// status, and the thread runs the thread-local storage destructor sweep
// after fn returns, before any joiner is released.
//
// A nil fn fails with [ErrInvalidArgument]. On this backend spawn cannot
// fail recoverably for resource exhaustion ([ErrNoMem] is never returned;
// the runtime aborts instead).
func Create(fn StartFunc, arg any) (*Thread, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	pack := &startPackage{fn: fn, arg: arg}
	t := &Thread{
		seq:  threadSeq.Add(1),
		done: make(chan struct{}),
	}
	go t.run(pack)
	return t, nil
}

func (t *Thread) run(pack *startPackage) {
	self := goid.Get()
	t.id.Store(self)
	registerThread(self, t)
	log().Debug().Int64("thread", self).Log("thread started")
	var code int
	// Deferred before the exit recovery so it also runs when fn panics or
	// calls runtime.Goexit directly.
	defer t.finish(&code)
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(threadExitSignal); ok {
				code = sig.code
				return
			}
			panic(r)
		}
	}()
	fn, arg := pack.fn, pack.arg
	// The thread now owns the package contents; release the package
	// itself before user code runs.
	*pack = startPackage{}
	code = fn(arg)
}

// finish records the exit status after running the destructor sweep, then
// releases any joiner. Runs exactly once per spawned thread, on every exit
// path.
func (t *Thread) finish(code *int) {
	self := t.id.Load()
	t.err = sweepTSS(self)
	unregisterThread(self)
	t.code = *code
	log().Debug().Int64("thread", self).Int("code", t.code).Log("thread finished")
	close(t.done)
}

// Join blocks until the thread terminates and returns its exit code. The
// handle is released on both success and failure paths; a second join, or a
// join after [Thread.Detach], fails with [ErrNotJoinable]. The returned
// error also carries any destructor panics recovered during the thread's
// exit sweep.
func (t *Thread) Join() (int, error) {
	if t == nil || t.done == nil {
		return 0, ErrNotJoinable
	}
	if !t.state.CompareAndSwap(threadJoinable, threadJoined) {
		return 0, ErrNotJoinable
	}
	<-t.done
	return t.code, t.err
}

// Detach releases the handle without waiting; the thread continues
// independently and its resources are reclaimed when it terminates. Fails
// with [ErrNotJoinable] if already joined or detached.
func (t *Thread) Detach() error {
	if t == nil {
		return ErrNotJoinable
	}
	if !t.state.CompareAndSwap(threadJoinable, threadDetached) {
		return ErrNotJoinable
	}
	return nil
}

// Equal reports whether two handles denote the same thread. Identity is
// logical: handles are compared by thread identity, not pointer equality.
// Two nil handles are equal.
func Equal(a, b *Thread) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.seq == b.seq
}

// Current returns the calling thread's handle. For threads spawned by
// [Create] this is the canonical handle; any other goroutine is adopted
// with a fresh, non-joinable handle that keeps its identity stable across
// calls.
//
// An adopted handle stays registered for the life of the process unless the
// adopted thread terminates through [Exit]: the package cannot observe a
// foreign goroutine exiting on its own. Callers adopting many short-lived
// goroutines should have them exit via [Exit], or avoid Current there.
func Current() *Thread {
	self := goid.Get()
	if t := lookupThread(self); t != nil {
		return t
	}
	t := &Thread{
		seq:     threadSeq.Add(1),
		adopted: true,
	}
	t.id.Store(self)
	t.state.Store(threadDetached)
	registerThread(self, t)
	return t
}

// Exit terminates only the calling thread with the given exit status,
// running the destructor sweep first. In a thread spawned by [Create] the
// status is observable by a joiner; deferred functions on the thread's
// stack still run.
func Exit(code int) {
	self := goid.Get()
	if t := lookupThread(self); t != nil && !t.adopted {
		panic(threadExitSignal{code: code})
	}
	// Foreign goroutine: sweep, forget any adopted handle, and terminate
	// just this goroutine. The code is unobservable without a joiner.
	_ = sweepTSS(self)
	unregisterThread(self)
	runtime.Goexit()
}

// Sleep suspends the calling thread for at least the given duration; it
// makes no precision claim beyond that. Retrieval of the remaining time on
// interrupt is not implemented on this backend: a non-nil remaining fails
// with [ErrUnsupported] rather than being silently ignored.
func Sleep(duration Timespec, remaining *Timespec) error {
	if remaining != nil {
		return ErrUnsupported
	}
	time.Sleep(duration.Duration())
	return nil
}

// Yield hints the scheduler to let another ready thread run. No guarantee
// it has any effect.
func Yield() {
	runtime.Gosched()
}
