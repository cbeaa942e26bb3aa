package backup

import (
	"errors"
	"fmt"
)

var (
	// ErrBackupRunning rejects a second concurrent run.
	ErrBackupRunning = errors.New("a backup is already running")
	// ErrNotRunning is returned by Cancel when nothing is in flight.
	ErrNotRunning = errors.New("no backup is running")
	// ErrNotFound marks a missing world folder or archive.
	ErrNotFound = errors.New("not found")
	// ErrEmptySource marks an enumeration that yielded no files.
	ErrEmptySource = errors.New("no files found to back up")
	// ErrInvalidPath marks a delete target escaping the backup directory.
	ErrInvalidPath = errors.New("invalid backup path")
	// errCancelled aborts the archival loop at a checkpoint.
	errCancelled = errors.New("cancelled by user")
)

// classified carries a sentinel class behind a clean user-facing message,
// so errors.Is works without the sentinel text leaking into the status.
type classified struct {
	class error
	msg   string
}

func (c *classified) Error() string { return c.msg }
func (c *classified) Unwrap() error { return c.class }

func classify(class error, format string, a ...any) error {
	return &classified{class: class, msg: fmt.Sprintf(format, a...)}
}
