//go:build windows

package threadport

import (
	"golang.org/x/sys/windows"
)

// nowTimespec reads the system wall clock via the native filetime query,
// the same source the native wait primitives measure against.
func nowTimespec() Timespec {
	var ft windows.Filetime
	windows.GetSystemTimeAsFileTime(&ft)
	ns := ft.Nanoseconds()
	return Timespec{Sec: ns / 1e9, Nsec: ns % 1e9}
}
