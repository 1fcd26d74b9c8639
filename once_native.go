//go:build !threadport_spin

package threadport

import "sync"

// OnceFlag guards a one-time initialization shared by racing callers. The
// zero value is ready for use; a flag must not be copied after first use.
//
// On the default build the flag delegates to the runtime's native one-time
// primitive, which blocks latecomers instead of spinning.
type OnceFlag struct {
	once sync.Once
}

// CallOnce executes fn exactly once across all callers sharing flag.
// Every caller, including the one that ran fn, returns only after fn has
// completed, and fn's effects are visible to all of them.
func CallOnce(flag *OnceFlag, fn func()) {
	flag.once.Do(fn)
}
