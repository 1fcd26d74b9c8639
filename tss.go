package threadport

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/joeycumines/go-threadport/internal/goid"
)

// Destructor is invoked with a thread's last-set slot value when that thread
// exits, if the value is non-nil.
type Destructor func(value any)

// DestructorSlots is the fixed capacity of the process-wide destructor
// table. The cap is inherited from the native TLS API this layer emulates
// (TLS_MINIMUM_AVAILABLE); [NewTSS] fails with [ErrTSSExhausted] once every
// entry is taken, and entries are never reclaimed, not even by [TSS.Delete].
const DestructorSlots = 64

// TSS is a handle to a thread-local storage slot: each thread sees its own
// value, defaulting to nil until set. Slots are created by [NewTSS] and live
// until [TSS.Delete]. The zero TSS is invalid.
type TSS struct {
	slot *tssSlot
}

type tssSlot struct {
	// values maps logical thread id to that thread's current value.
	values sync.Map
	// dead is set by Delete; a dead slot reads as nil and is skipped by
	// the exit sweep even though its destructor-table entry remains.
	dead atomic.Bool
}

type dtorEntry struct {
	slot *tssSlot
	dtor Destructor
}

// Process-wide TSS state. The destructor table is append-only and bounded
// (see DestructorSlots); live tracks every non-deleted slot so an exiting
// thread can drop its values even for slots without a destructor.
// Registration may race with a concurrent sweep, hence the lock.
var tssState struct {
	mu    guardMutex
	table [DestructorSlots]dtorEntry
	live  map[*tssSlot]struct{}
}

// NewTSS allocates a thread-local storage slot. A non-nil dtor is registered
// in the process-wide destructor table and will be invoked with the
// thread's value at that thread's exit; if the table has no free entry the
// slot is released and NewTSS fails with [ErrTSSExhausted].
func NewTSS(dtor Destructor) (TSS, error) {
	slot := &tssSlot{}
	tssState.mu.Lock()
	defer tssState.mu.Unlock()
	if dtor != nil {
		i := 0
		for ; i < len(tssState.table); i++ {
			if tssState.table[i].dtor == nil {
				break
			}
		}
		if i == len(tssState.table) {
			log().Warning().Log("tss destructor table full")
			return TSS{}, ErrTSSExhausted
		}
		tssState.table[i] = dtorEntry{slot: slot, dtor: dtor}
	}
	if tssState.live == nil {
		tssState.live = make(map[*tssSlot]struct{})
	}
	tssState.live[slot] = struct{}{}
	return TSS{slot: slot}, nil
}

// Valid reports whether the handle refers to a slot (possibly deleted).
func (t TSS) Valid() bool {
	return t.slot != nil
}

// Get returns the calling thread's value for the slot, or nil if unset (or
// never set by this thread, or the slot was deleted).
func (t TSS) Get() any {
	if t.slot == nil || t.slot.dead.Load() {
		return nil
	}
	v, _ := t.slot.values.Load(goid.Get())
	return v
}

// Set stores the calling thread's value for the slot. Other threads are
// unaffected. Setting nil clears the value, so no destructor fires for this
// thread.
func (t TSS) Set(value any) error {
	if t.slot == nil || t.slot.dead.Load() {
		return ErrDestroyed
	}
	if value == nil {
		t.slot.values.Delete(goid.Get())
		return nil
	}
	t.slot.values.Store(goid.Get(), value)
	return nil
}

// Delete releases the slot. Per-thread values become unreachable and no
// destructor will fire for them. The slot's destructor-table entry is not
// reclaimed, so the table's capacity stays consumed for the life of the
// process, but the entry is marked dead so a sweep can never invoke it
// again.
func (t TSS) Delete() {
	if t.slot == nil {
		return
	}
	t.slot.dead.Store(true)
	tssState.mu.Lock()
	delete(tssState.live, t.slot)
	tssState.mu.Unlock()
}

// sweepTSS runs the destructor sweep for an exiting thread: for every
// registered (slot, destructor) pair, in insertion order, the destructor is
// invoked with the thread's value if one was set. The value is cleared
// before invocation; registrations made during the sweep are not revisited.
// Afterwards the thread's values are dropped from every remaining live slot.
//
// Destructor panics are recovered so the sweep always completes, and are
// reported to the joiner as an aggregated error on the thread handle.
func sweepTSS(tid int64) error {
	tssState.mu.Lock()
	entries := tssState.table
	live := make([]*tssSlot, 0, len(tssState.live))
	for slot := range tssState.live {
		live = append(live, slot)
	}
	tssState.mu.Unlock()

	var errs *multierror.Error
	for _, e := range entries {
		if e.dtor == nil || e.slot.dead.Load() {
			continue
		}
		v, ok := e.slot.values.LoadAndDelete(tid)
		if !ok || v == nil {
			continue
		}
		if err := invokeDestructor(e.dtor, v); err != nil {
			log().Err().Int64("thread", tid).Err(err).Log("tss destructor panicked")
			errs = multierror.Append(errs, err)
		}
	}
	for _, slot := range live {
		slot.values.Delete(tid)
	}
	return errs.ErrorOrNil()
}

func invokeDestructor(dtor Destructor, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("threadport: tss destructor panic: %v", r)
		}
	}()
	dtor(value)
	return nil
}
