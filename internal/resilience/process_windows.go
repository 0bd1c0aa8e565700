//go:build windows

package resilience

import "golang.org/x/sys/windows"

// isProcessAlive reports whether a process with the given PID exists.
// Opening with PROCESS_QUERY_LIMITED_INFORMATION is the narrowest right
// that still answers the existence question.
func isProcessAlive(pid int) bool {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	_ = windows.CloseHandle(handle)
	return true
}
