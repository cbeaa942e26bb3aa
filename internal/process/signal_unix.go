//go:build !windows

package process

import (
	"bytes"
	"os"
	"strconv"
	"syscall"
)

// killProcess signals a single process.
func killProcess(pid int, sig syscall.Signal) error {
	return syscall.Kill(pid, sig)
}

// killGroup signals the whole process group so java child helpers die too.
func killGroup(pid int, sig syscall.Signal) error {
	return syscall.Kill(-pid, sig)
}

// processExists reports whether pid can be signalled at all.
func processExists(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}

// isZombie reports whether /proc shows the pid in zombie state. A zombie
// still answers kill(pid, 0), so adoption and liveness must filter it out.
func isZombie(pid int) bool {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/status")
	if err != nil {
		return false
	}
	return bytes.Contains(b, []byte("State:\tZ"))
}
