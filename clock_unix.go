//go:build unix

package threadport

import (
	"time"

	"golang.org/x/sys/unix"
)

// nowTimespec reads the realtime clock directly. The UTC wall clock matches
// the base the C11 timespec_get(TIME_UTC) deadlines are expressed against.
func nowTimespec() Timespec {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		// clock_gettime on a valid clock id does not fail in practice;
		// keep a portable escape hatch rather than propagating an error
		// through every timed wait.
		return timespecFromTime(time.Now())
	}
	sec, nsec := ts.Unix()
	return Timespec{Sec: sec, Nsec: nsec}
}
