package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	gops "github.com/shirou/gopsutil/v4/process"

	"github.com/loykin/warden/internal/history"
)

const (
	stopPollInterval = 500 * time.Millisecond
	stopPollCount    = 20
	restartPause     = 2 * time.Second
)

// Settings is the configuration view the supervisor reads through. It never
// sees or interprets the persistence format behind it.
type Settings interface {
	ServerName() string
	JavaPath() string
	JarPath() string
	ServerDir() string
	RAMMin() string
	RAMMax() string
	StopCommand() string
}

// Console receives lines the supervisor itself produces, such as the
// synthetic adoption notice. The live stream goes through the reader loop,
// not through here.
type Console interface {
	Publish(line string)
}

// Options carries the supervisor's collaborators and spawn tuning.
type Options struct {
	Settings  Settings
	Console   Console
	Recorder  *history.Recorder
	Logger    *slog.Logger
	ExtraArgs []string
	Env       []string
	UseOSEnv  bool
}

// Supervisor owns the process handle and every lifecycle operation on it.
// The handle is replaced wholesale under mu; all operations snapshot it
// first and act on the copy.
type Supervisor struct {
	opts Options
	log  *slog.Logger

	mu sync.Mutex
	h  handle
}

// New constructs the supervisor and performs orphan adoption: a PID record
// pointing at a live, non-zombie process becomes an External handle; a stale
// record is deleted. A corrupt record is logged and ignored so construction
// never fails because of it.
func New(opts Options) *Supervisor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Supervisor{opts: opts, log: log}
	s.adoptOrphan()
	return s
}

func (s *Supervisor) pidFilePath() string {
	return filepath.Join(s.opts.Settings.ServerDir(), PIDFileName)
}

func (s *Supervisor) adoptOrphan() {
	path := s.pidFilePath()
	pid, err := ReadPIDFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("ignoring unreadable pid record", "path", path, "error", err)
		}
		return
	}
	if !processExists(pid) || isZombie(pid) {
		s.log.Info("removing stale pid record", "path", path, "pid", pid)
		RemovePIDFile(path)
		return
	}
	s.mu.Lock()
	s.h = handle{kind: HandleExternal, pid: pid}
	s.mu.Unlock()
	s.log.Info("adopted running server process", "pid", pid)
	if s.opts.Console != nil {
		s.opts.Console.Publish(fmt.Sprintf(
			"[warden] Adopted running server process (pid %d). Console history before this point is unavailable.", pid))
	}
	s.opts.Recorder.Record(history.EventAdopt, s.opts.Settings.ServerName(),
		"adopted from pid record", pid)
}

// snapshot returns a copy of the current handle.
func (s *Supervisor) snapshot() handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h
}

// clearIf drops the handle and PID record, but only while the handle still
// tracks pid; a concurrent restart must not lose its fresh handle, and a
// stale probe must not delete the fresh process's PID record either.
func (s *Supervisor) clearIf(pid int) {
	s.mu.Lock()
	cleared := s.h.kind != HandleNone && s.h.pid == pid
	if cleared {
		s.h = handle{}
	}
	s.mu.Unlock()
	if cleared {
		RemovePIDFile(s.pidFilePath())
	}
}

// IsRunning probes liveness of whatever the handle tracks. A negative answer
// opportunistically clears the handle and PID record so a crashed or
// externally killed server heals without operator action.
func (s *Supervisor) IsRunning() bool {
	h := s.snapshot()
	switch h.kind {
	case HandleOwned:
		select {
		case <-h.waitDone:
			s.clearIf(h.pid)
			return false
		default:
			return true
		}
	case HandleExternal:
		if processExists(h.pid) && !isZombie(h.pid) {
			return true
		}
		s.clearIf(h.pid)
		return false
	default:
		return false
	}
}

// Start spawns the server process. The child gets a stdin pipe for command
// injection and a merged stdout+stderr stream for the console reader, and is
// placed in its own process group so Kill can take helpers down with it.
func (s *Supervisor) Start() Result {
	if s.IsRunning() {
		return failure(ErrAlreadyRunning, "Server is already running.")
	}

	set := s.opts.Settings
	dir := set.ServerDir()
	jar := set.JarPath()
	if !filepath.IsAbs(jar) {
		jar = filepath.Join(dir, jar)
	}
	if _, err := os.Stat(jar); err != nil {
		return failure(ErrConfig, fmt.Sprintf("Server jar not found at %s.", jar))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return failure(ErrConfig, "Cannot create server directory: "+err.Error())
	}

	cmd := s.buildCommand(dir, jar)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return failure(err, "Failed to open command channel: "+err.Error())
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return failure(err, "Failed to open console stream: "+err.Error())
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return failure(err, "Failed to start server: "+err.Error())
	}
	pid := cmd.Process.Pid

	waitDone := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(waitDone)
	}()

	// Two callers can pass the liveness probe together; the commit under mu
	// decides the winner and the loser tears down its own child.
	s.mu.Lock()
	if s.h.kind != HandleNone {
		s.mu.Unlock()
		if err := killGroup(pid, syscall.SIGKILL); err != nil {
			_ = killProcess(pid, syscall.SIGKILL)
		}
		<-waitDone
		return failure(ErrAlreadyRunning, "Server is already running.")
	}
	s.h = handle{
		kind:     HandleOwned,
		pid:      pid,
		cmd:      cmd,
		stdin:    stdin,
		stdout:   stdout,
		started:  time.Now(),
		waitDone: waitDone,
	}
	s.mu.Unlock()

	if err := WritePIDFile(s.pidFilePath(), pid); err != nil {
		s.log.Warn("could not persist pid record", "pid", pid, "error", err)
	}

	s.log.Info("server started", "pid", pid, "jar", jar)
	s.opts.Recorder.Record(history.EventStart, set.ServerName(), "started "+filepath.Base(jar), pid)
	return success("Server started.")
}

// Stop writes the configured stop command to the owned stdin and polls for
// exit every 0.5s for up to 10s. Adopted processes have no command channel,
// so for them this degrades to a liveness watch that usually times out.
func (s *Supervisor) Stop() Result {
	if !s.IsRunning() {
		return failure(ErrNotRunning, "Server is not running.")
	}
	h := s.snapshot()

	if h.kind == HandleOwned {
		s.writeCommand(h, s.opts.Settings.StopCommand())
	} else {
		s.log.Warn("adopted process has no command channel; waiting for it to exit on its own", "pid", h.pid)
	}

	for i := 0; i < stopPollCount; i++ {
		time.Sleep(stopPollInterval)
		if !s.IsRunning() {
			s.clearIf(h.pid)
			s.log.Info("server stopped gracefully", "pid", h.pid)
			s.opts.Recorder.Record(history.EventStop, s.opts.Settings.ServerName(), "graceful stop", h.pid)
			return success("Server stopped gracefully.")
		}
	}

	if h.kind == HandleExternal {
		return warning(ErrTimeout,
			"Adopted server process cannot be stopped gracefully; use kill to terminate it.")
	}
	return warning(ErrTimeout,
		"Stop command sent but the server is still running; use kill if it does not exit.")
}

// Restart is a strict stop-pause-start sequence. A failed stop aborts the
// restart rather than risking two server processes.
func (s *Supervisor) Restart() Result {
	if res := s.Stop(); res.Err != nil && !errors.Is(res.Err, ErrNotRunning) {
		return failure(res.Err, "Restart aborted: "+res.Message)
	}
	time.Sleep(restartPause)
	return s.Start()
}

// Kill force-terminates the tracked process group and clears all tracking
// state unconditionally. Safe to call repeatedly.
func (s *Supervisor) Kill() Result {
	h := s.snapshot()
	if h.kind == HandleNone {
		return failure(ErrNoProcess, "No server process to kill.")
	}

	if err := killGroup(h.pid, syscall.SIGKILL); err != nil {
		// The group may already be gone while the leader lingers.
		_ = killProcess(h.pid, syscall.SIGKILL)
	}
	if h.kind == HandleOwned && h.waitDone != nil {
		select {
		case <-h.waitDone:
		case <-time.After(2 * time.Second):
			s.log.Warn("killed process not reaped in time", "pid", h.pid)
		}
	}
	s.clearIf(h.pid)
	s.log.Info("server killed", "pid", h.pid)
	s.opts.Recorder.Record(history.EventKill, s.opts.Settings.ServerName(), "killed", h.pid)
	return success("Server process killed.")
}

// SendCommand injects one console command into the owned process. Write
// failures are logged and swallowed: a dead pipe surfaces through liveness,
// not through the command path.
func (s *Supervisor) SendCommand(text string) Result {
	h := s.snapshot()
	switch h.kind {
	case HandleNone:
		s.log.Debug("dropping command; no server process", "command", text)
		return failure(ErrNotRunning, "Server is not running.")
	case HandleExternal:
		return failure(ErrNoConsole, "No console access to the adopted server process.")
	default:
		s.writeCommand(h, text)
		return success("Command sent.")
	}
}

func (s *Supervisor) writeCommand(h handle, text string) {
	if h.stdin == nil {
		return
	}
	if _, err := io.WriteString(h.stdin, text+"\n"); err != nil {
		s.log.Warn("console write failed", "command", text, "error", err)
	}
}

// Stats reports the resource snapshot for the tracked process; all gauges
// are zero when offline. Uptime is unknown for adopted processes because
// their start time was never observed.
func (s *Supervisor) Stats() Stats {
	if !s.IsRunning() {
		return Stats{Status: "offline", Uptime: "-"}
	}
	h := s.snapshot()
	st := Stats{Status: "online", PID: h.pid, Uptime: "unknown"}
	if h.kind == HandleOwned {
		st.Uptime = formatUptime(time.Since(h.started))
	}
	if p, err := gops.NewProcess(int32(h.pid)); err == nil {
		if cpu, err := p.CPUPercent(); err == nil {
			st.CPUPercent = cpu
		}
		if mi, err := p.MemoryInfo(); err == nil {
			st.RAMMB = float64(mi.RSS) / (1024 * 1024)
		}
	}
	return st
}

// Stream exposes the owned stdout stream to the console reader; nil while
// nothing is owned. The reader compares identities to notice restarts.
func (s *Supervisor) Stream() io.Reader {
	h := s.snapshot()
	if h.kind != HandleOwned {
		return nil
	}
	return h.stdout
}

// Handle reports the current handle kind, mainly for status surfaces.
func (s *Supervisor) Handle() HandleKind {
	return s.snapshot().kind
}

// PID returns the tracked process id, 0 when none.
func (s *Supervisor) PID() int {
	return s.snapshot().pid
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}
