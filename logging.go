package threadport

import (
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// Diagnostics are off by default: the primitives never log on the caller's
// behalf. SetLogger opts in to lifecycle and contention tracing, e.g. for
// debugging a stuck timed wait. All call sites tolerate a nil logger.
var pkgLogger atomic.Pointer[logiface.Logger[logiface.Event]]

// SetLogger installs a package-level diagnostics logger. Pass nil to restore
// silence. Safe to call concurrently with any operation.
func SetLogger(l *logiface.Logger[logiface.Event]) {
	pkgLogger.Store(l)
}

// log returns the current diagnostics logger, possibly nil. The logiface
// builder chain is nil-safe, so call sites use it unconditionally.
func log() *logiface.Logger[logiface.Event] {
	return pkgLogger.Load()
}
