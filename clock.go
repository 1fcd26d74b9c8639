package threadport

import "time"

// Timespec is an absolute point in time expressed against the package time
// source: whole seconds since the Unix epoch plus a nanosecond remainder in
// [0, 999999999]. It mirrors the (seconds, nanoseconds) pair used by the C11
// timed-wait functions.
type Timespec struct {
	Sec  int64
	Nsec int64
}

// Now reads the current time from the backend time source. Every deadline
// passed to a timed wait must be expressed against this same clock, or the
// timeout computation silently skews.
func Now() Timespec {
	return nowTimespec()
}

// Deadline returns an absolute [Timespec] d from now, for use with
// [Mutex.TimedLock] and [Cond.TimedWait]. A non-positive d yields a deadline
// that has already passed.
func Deadline(d time.Duration) Timespec {
	return Now().Add(d)
}

// Add returns the Timespec offset by d, with the nanosecond field normalized
// back into [0, 999999999].
func (ts Timespec) Add(d time.Duration) Timespec {
	nsec := ts.Nsec + int64(d%time.Second)
	sec := ts.Sec + int64(d/time.Second)
	if nsec >= int64(time.Second) {
		sec++
		nsec -= int64(time.Second)
	} else if nsec < 0 {
		sec--
		nsec += int64(time.Second)
	}
	return Timespec{Sec: sec, Nsec: nsec}
}

// Duration interprets the Timespec as a relative duration, as used by
// [Sleep]. Negative values clamp to zero.
func (ts Timespec) Duration() time.Duration {
	d := time.Duration(ts.Sec)*time.Second + time.Duration(ts.Nsec)
	if d < 0 {
		return 0
	}
	return d
}

// timespecFromTime converts a [time.Time] for backends (and fallbacks)
// without a direct native clock query.
func timespecFromTime(t time.Time) Timespec {
	return Timespec{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}

// milliseconds truncates the Timespec to millisecond granularity. Lossy on
// purpose: the poll-based wait paths only resolve milliseconds.
func (ts Timespec) milliseconds() int64 {
	return ts.Sec*1000 + ts.Nsec/int64(time.Millisecond)
}

// absToRelMilliseconds converts an absolute deadline into the remaining
// relative wait in integer milliseconds versus Now() on the same clock.
// Returns zero, never negative, once the deadline has passed.
func absToRelMilliseconds(deadline Timespec) int64 {
	abs := deadline.milliseconds()
	now := Now().milliseconds()
	if abs > now {
		return abs - now
	}
	return 0
}
