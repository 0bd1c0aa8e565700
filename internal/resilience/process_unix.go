//go:build !windows

package resilience

import "syscall"

// isProcessAlive reports whether a process with the given PID exists.
// Signal 0 probes without delivering anything: nil means alive, EPERM
// means alive but owned by another user, ESRCH means gone.
func isProcessAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}
