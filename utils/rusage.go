// Copyright 2026, the Tokentile contributors.

package utils

import (
	"golang.org/x/sys/unix"
)

// MaxRSSKb reports the process peak resident set size in kilobytes.
func MaxRSSKb() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	return int64(ru.Maxrss), nil
}
