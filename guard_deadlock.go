//go:build threadport_deadlock

package threadport

import "github.com/sasha-s/go-deadlock"

// Debug build: internal bookkeeping locks report lock-order inversions and
// long holds. Not for production use; go-deadlock trades throughput for
// diagnostics.
type (
	guardMutex   = deadlock.Mutex
	guardRWMutex = deadlock.RWMutex
)
