package process

import (
	"io"
	"os/exec"
	"time"
)

// HandleKind discriminates the supervisor's process reference.
type HandleKind int

const (
	// HandleNone means no process is tracked.
	HandleNone HandleKind = iota
	// HandleOwned is a child this supervisor spawned; it has a command channel.
	HandleOwned
	// HandleExternal is a live process adopted from a PID record; read-only.
	HandleExternal
)

func (k HandleKind) String() string {
	switch k {
	case HandleOwned:
		return "owned"
	case HandleExternal:
		return "external"
	default:
		return "none"
	}
}

// handle is the tagged process reference. The supervisor replaces it
// wholesale under its mutex; readers copy it out and act on the copy, so a
// consistent prior or current snapshot is always observed.
type handle struct {
	kind     HandleKind
	pid      int
	cmd      *exec.Cmd      // owned only
	stdin    io.WriteCloser // owned only
	stdout   io.ReadCloser  // owned only; stderr is merged in
	started  time.Time      // owned only; zero for adopted processes
	waitDone chan struct{}  // owned only; closed once cmd.Wait returns
}

func (h handle) live() bool { return h.kind != HandleNone }
