package process

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PIDFileName is the record written next to the server's working files so a
// replacement supervisor can adopt a still-running process.
const PIDFileName = "server.pid"

// WritePIDFile persists pid as a plain integer at path, creating the parent
// directory when needed.
func WritePIDFile(path string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

// ReadPIDFile parses the single-integer record at path.
func ReadPIDFile(path string) (int, error) {
	b, err := os.ReadFile(path) // #nosec G304 -- path is derived from the configured server dir
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// RemovePIDFile deletes the record, tolerating its absence.
func RemovePIDFile(path string) {
	_ = os.Remove(path)
}
