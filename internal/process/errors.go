package process

import "errors"

var (
	// ErrConfig marks a start that failed before spawning, e.g. a missing jar.
	ErrConfig = errors.New("configuration error")
	// ErrAlreadyRunning is returned by Start while any handle is live.
	ErrAlreadyRunning = errors.New("server is already running")
	// ErrNotRunning is returned by Stop when no handle is live.
	ErrNotRunning = errors.New("server is not running")
	// ErrNoProcess is returned by Kill when nothing is tracked.
	ErrNoProcess = errors.New("no process to kill")
	// ErrNoConsole is returned for command injection into an adopted process.
	ErrNoConsole = errors.New("no console access to adopted process")
	// ErrTimeout marks a graceful stop that ran out its polling window.
	ErrTimeout = errors.New("timed out waiting for server to stop")
)
