//go:build linux || darwin

package sysinfo

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FreeSpaceGB returns the free disk space of the filesystem containing
// path, in gigabytes. The measurement uses Bavail (space available to
// unprivileged processes), matching what `df -h` reports in its Avail
// column - the figure the original scripts compared against.
func FreeSpaceGB(path string) (float64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("failed to stat filesystem at %s: %w", path, err)
	}

	free := uint64(stat.Bavail) * uint64(stat.Bsize)
	return float64(free) / (1 << 30), nil
}
