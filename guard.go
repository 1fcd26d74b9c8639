//go:build !threadport_deadlock

package threadport

import "sync"

// The package's own bookkeeping (condition-variable waiter queues, the TSS
// registry, the thread registry) is guarded by these aliases so the
// threadport_deadlock build can swap in deadlock-detecting drop-ins without
// touching call sites.
type (
	guardMutex   = sync.Mutex
	guardRWMutex = sync.RWMutex
)
