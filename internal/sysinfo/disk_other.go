//go:build !linux && !darwin

package sysinfo

import (
	"fmt"
	"runtime"
)

// FreeSpaceGB is unsupported on this platform. The stack targets Linux
// workstations (GPU passthrough requires it); the check degrades to an
// explicit error rather than a silent zero.
func FreeSpaceGB(path string) (float64, error) {
	return 0, fmt.Errorf("free disk space check is not supported on %s", runtime.GOOS)
}
