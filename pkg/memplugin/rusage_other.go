//go:build !unix && !darwin && !linux && !freebsd && !openbsd && !netbsd

package memplugin

// maxRSSKB has no portable getrusage equivalent on this platform.
func maxRSSKB() int64 { return 0 }
