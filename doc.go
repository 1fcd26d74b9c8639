// Package threadport provides a uniform set of threading primitives
// (threads, mutexes, condition variables, one-time initialization, and
// thread-local storage) with a small, portable surface modelled on the C11
// threads API.
//
// # Architecture
//
// Every primitive maps a logical operation onto whatever the runtime
// natively provides, and emulates the rest. The emulated paths are isolated
// in build-tagged strategy files so they can be selected without touching
// callers:
//   - default: bounded waits use native blocking (channel semaphore plus
//     timer), and [CallOnce] delegates to the runtime's one-time primitive
//   - threadport_spin: [Mutex.TimedLock] and [CallOnce] fall back to
//     poll loops that retry a non-blocking acquire and yield the processor
//     between attempts
//
// Timestamps cross the API as a [Timespec] (seconds plus nanoseconds); the
// package reads "now" through a single per-platform time source ([Now]),
// implemented with golang.org/x/sys on unix and windows. Timed waits
// truncate to millisecond granularity.
//
// # Primitives
//
//   - [Mutex]: plain, timed, try, and recursive kinds ([MutexKind]);
//     [Mutex.Lock], [Mutex.TryLock], [Mutex.TimedLock], [Mutex.Unlock]
//   - [Cond]: [Cond.Wait], [Cond.TimedWait], [Cond.Signal], [Cond.Broadcast]
//     against a caller-supplied locked [Mutex]; wakeups may be spurious, so
//     callers must re-check their predicate in a loop
//   - [OnceFlag] / [CallOnce]: an initializer runs exactly once across
//     racing callers, all of whom observe completion before returning
//   - [TSS]: per-thread value cells addressed by a shared slot, with an
//     optional destructor invoked at thread exit; destructor registrations
//     share a process-wide table of fixed capacity ([DestructorSlots])
//   - [Thread]: [Create], [Thread.Join], [Thread.Detach], [Exit], [Equal],
//     [Current], [Sleep], [Yield]
//
// # Concurrency Model
//
// Threads are native preemptive execution units scheduled by the runtime;
// this package adds no cooperative scheduling of its own. Mutexes provide
// mutual exclusion only: no FIFO fairness beyond what the runtime gives,
// and none at all during a threadport_spin busy-wait window. Only
// [Mutex.TimedLock] and [Cond.TimedWait] support bounded waiting; a blocked
// [Mutex.Lock], [Cond.Wait], or [Thread.Join] cannot be aborted.
//
// # Errors
//
// Operations report contention and failure through a closed set of sentinel
// errors ([ErrTimedOut], [ErrBusy], [ErrNoMem], ...) returned to the
// immediate caller; there is no internal retry and nothing is logged on the
// caller's behalf. Programming-contract violations (unlocking a mutex held
// by another thread, joining twice) are either surfaced as errors or left to
// the native layer's own contract, matching the C API they emulate.
//
// Optional diagnostics can be enabled via [SetLogger] with a logiface
// logger; the default is silence.
package threadport
