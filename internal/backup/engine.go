package backup

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loykin/warden/internal/history"
	"github.com/loykin/warden/internal/metrics"
)

// State of the engine's single status record.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSuccess   State = "success"
	StateError     State = "error"
	StateCancelled State = "cancelled"
)

// Status is the poll surface for an asynchronous run. It is replaced
// wholesale under the engine mutex, never mutated field-by-field, so
// readers always see a consistent snapshot.
type Status struct {
	State    State  `json:"state"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
	Filename string `json:"filename,omitempty"`
}

// Result mirrors the supervisor's structured operation outcome.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Settings is the configuration view the engine shares with the supervisor.
type Settings interface {
	ServerName() string
	ServerDir() string
	BackupPath() string
}

// Engine is the backup state machine: idle -> running -> one of
// success/error/cancelled, restarted by the next Create. At most one run is
// in flight; cancellation is a cooperative flag checked at loop checkpoints.
type Engine struct {
	settings Settings
	log      *slog.Logger
	rec      *history.Recorder

	mu     sync.Mutex
	status Status
	cancel atomic.Bool
}

func New(settings Settings, rec *history.Recorder, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		settings: settings,
		log:      log,
		rec:      rec,
		status:   Status{State: StateIdle},
	}
}

// destDir resolves the backup destination, anchoring a relative configured
// path under the server directory.
func (e *Engine) destDir() string {
	p := e.settings.BackupPath()
	if p == "" {
		p = "backups"
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(e.settings.ServerDir(), p)
	}
	return p
}

// Status returns the current snapshot.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Create starts an asynchronous run and acknowledges immediately; callers
// poll Status for completion. kind is "full" or "world"; world names the
// subdirectory for world backups.
func (e *Engine) Create(kind, world string) Result {
	if kind != "full" && kind != "world" {
		return Result{Status: "error", Message: fmt.Sprintf("Unknown backup type %q.", kind)}
	}
	if kind == "world" && world == "" {
		return Result{Status: "error", Message: "World backup requires a world name."}
	}

	e.mu.Lock()
	if e.status.State == StateRunning {
		e.mu.Unlock()
		return Result{Status: "error", Message: "A backup is already running.", Err: ErrBackupRunning}
	}
	e.cancel.Store(false)
	e.status = Status{State: StateRunning, Message: "Backup started", Progress: 0}
	e.mu.Unlock()

	go e.run(kind, world)
	return Result{Status: "started", Message: "Backup started."}
}

// Cancel requests a cooperative stop of the in-flight run. Latency is
// bounded by the archival loop's checkpoint interval, not instantaneous.
func (e *Engine) Cancel() Result {
	e.mu.Lock()
	running := e.status.State == StateRunning
	e.mu.Unlock()
	if !running {
		return Result{Status: "error", Message: "No backup is running.", Err: ErrNotRunning}
	}
	e.cancel.Store(true)
	e.log.Info("backup cancellation requested")
	return Result{Status: "success", Message: "Cancellation requested."}
}

// run drives one archival cycle and always leaves a terminal status; the
// state machine can never be stuck at running.
func (e *Engine) run(kind, world string) {
	started := time.Now()
	filename, size, err := e.archive(kind, world)
	elapsed := time.Since(started)

	switch {
	case err == nil:
		e.setStatus(Status{State: StateSuccess, Message: "Backup completed", Progress: 100, Filename: filename})
		e.log.Info("backup completed", "file", filename, "size", size, "elapsed", elapsed)
		metrics.ObserveBackup("success", size, elapsed)
		e.rec.Record(history.EventBackupSuccess, e.settings.ServerName(), filename, 0)
	case errors.Is(err, errCancelled):
		e.setStatus(Status{State: StateCancelled, Message: "Cancelled by user"})
		e.log.Info("backup cancelled", "elapsed", elapsed)
		metrics.ObserveBackup("cancelled", 0, elapsed)
		e.rec.Record(history.EventBackupCancelled, e.settings.ServerName(), kind, 0)
	default:
		e.setStatus(Status{State: StateError, Message: err.Error()})
		e.log.Error("backup failed", "error", err, "elapsed", elapsed)
		metrics.ObserveBackup("error", 0, elapsed)
		e.rec.Record(history.EventBackupError, e.settings.ServerName(), err.Error(), 0)
	}
}

// cancelled is the checkpoint probe used by the archival loop.
func (e *Engine) cancelled() bool { return e.cancel.Load() }

// setProgress publishes a batched progress update.
func (e *Engine) setProgress(done, total int) {
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	e.mu.Lock()
	if e.status.State == StateRunning {
		e.status.Progress = pct
	}
	e.mu.Unlock()
}

// EnsureDestDir creates the destination directory if missing and returns it.
func (e *Engine) EnsureDestDir() (string, error) {
	dest := e.destDir()
	if err := os.MkdirAll(dest, 0o750); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	return dest, nil
}
