//go:build unix || darwin || linux || freebsd || openbsd || netbsd

package memplugin

import "golang.org/x/sys/unix"

// maxRSSKB reports the process's peak resident set size in KiB via
// getrusage(2), for Stats()'s footprint diagnostics.
func maxRSSKB() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return int64(ru.Maxrss)
}
