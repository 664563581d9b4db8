package sysinfo

import "os"

// IsRoot reports whether the process runs with root privileges.
//
// The setup sequence only warns on this - running as root works, but the
// docker group is the recommended way to grant Docker access, and backups
// written as root are annoying to clean up later.
func IsRoot() bool {
	// On Windows Geteuid returns -1, so this correctly reports false there.
	return os.Geteuid() == 0
}
