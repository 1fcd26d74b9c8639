//go:build !unix && !windows

package threadport

import "time"

func nowTimespec() Timespec {
	return timespecFromTime(time.Now())
}
