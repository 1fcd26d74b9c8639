package threadport

import "errors"

// Standard errors. Together with nil (success) these form the closed result
// set shared by every operation in the package: contention results
// (ErrTimedOut, ErrBusy), resource exhaustion (ErrNoMem, ErrTSSExhausted),
// invalid arguments (ErrInvalidKind, ErrInvalidArgument), and generic
// contract failures. Callers should match with [errors.Is].
var (
	// ErrTimedOut is returned by bounded waits whose deadline elapsed
	// before the operation could complete.
	ErrTimedOut = errors.New("threadport: timed out")
	// ErrBusy is returned by non-blocking acquires when the resource is
	// currently held.
	ErrBusy = errors.New("threadport: resource busy")
	// ErrNoMem reports native resource exhaustion during spawn. On this
	// backend execution-unit creation aborts the process instead of
	// failing recoverably, so ErrNoMem is retained for API compatibility
	// but is not produced by [Create].
	ErrNoMem = errors.New("threadport: out of memory")
	// ErrInvalidKind is returned by mutex initialization for a kind value
	// outside the six supported combinations.
	ErrInvalidKind = errors.New("threadport: invalid mutex kind")
	// ErrInvalidArgument reports a nil function or other unusable argument.
	ErrInvalidArgument = errors.New("threadport: invalid argument")
	// ErrTSSExhausted is returned by [NewTSS] when the process-wide
	// destructor table has no free entry.
	ErrTSSExhausted = errors.New("threadport: tss destructor table full")
	// ErrNotJoinable is returned by [Thread.Join] and [Thread.Detach] when
	// the handle was already joined, detached, or never owned a native
	// execution unit.
	ErrNotJoinable = errors.New("threadport: thread not joinable")
	// ErrNotLocked is returned by [Mutex.Unlock] when the mutex is not
	// currently locked.
	ErrNotLocked = errors.New("threadport: mutex not locked")
	// ErrDestroyed reports use of a primitive after Destroy.
	ErrDestroyed = errors.New("threadport: primitive destroyed")
	// ErrUnsupported reports a recognized but unimplemented feature, such
	// as remaining-time retrieval from [Sleep].
	ErrUnsupported = errors.New("threadport: not supported")
)
