package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// daemonPIDFile is warden's own background-process record, distinct from
// the supervised server's PID record.
func daemonPIDFile(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "warden-daemon.pid")
}

func createDaemonCommand(g *GlobalFlags) *cobra.Command {
	daemon := &cobra.Command{
		Use:   "daemon",
		Short: "Manage a detached warden instance",
	}
	daemon.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start warden detached in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemonStart(g.ConfigPath)
		},
	})
	daemon.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the detached warden instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemonStop(g.ConfigPath)
		},
	})
	daemon.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether a detached warden instance is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, running := daemonStatus(g.ConfigPath)
			if running {
				fmt.Printf("warden daemon running (pid %d)\n", pid)
			} else {
				fmt.Println("warden daemon not running")
			}
			return nil
		},
	})
	return daemon
}

func daemonStart(configPath string) error {
	if pid, running := daemonStatus(configPath); running {
		return fmt.Errorf("warden daemon already running (pid %d)", pid)
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	cmd := exec.Command(executable, "serve", "--config", configPath) // #nosec G204 -- re-exec of self
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	logPath := filepath.Join(filepath.Dir(configPath), "warden-daemon.log")
	logF, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) // #nosec G304
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	cmd.Stdout = logF
	cmd.Stderr = logF
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		_ = logF.Close()
		return fmt.Errorf("start daemon: %w", err)
	}
	_ = logF.Close()

	pidFile := daemonPIDFile(configPath)
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0o600); err != nil {
		return fmt.Errorf("write daemon pid file: %w", err)
	}
	// Detach: the daemon is reparented once this process exits.
	_ = cmd.Process.Release()
	fmt.Printf("warden daemon started (pid %d)\n", cmd.Process.Pid)
	return nil
}

func daemonStop(configPath string) error {
	pid, running := daemonStatus(configPath)
	if !running {
		return fmt.Errorf("warden daemon not running")
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon: %w", err)
	}
	for i := 0; i < 20; i++ {
		time.Sleep(250 * time.Millisecond)
		if syscall.Kill(pid, 0) != nil {
			break
		}
	}
	_ = os.Remove(daemonPIDFile(configPath))
	fmt.Println("warden daemon stopped")
	return nil
}

// daemonStatus reads the daemon pid record and probes liveness; a stale
// record is removed.
func daemonStatus(configPath string) (int, bool) {
	b, err := os.ReadFile(daemonPIDFile(configPath)) // #nosec G304
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		_ = os.Remove(daemonPIDFile(configPath))
		return 0, false
	}
	if syscall.Kill(pid, 0) != nil {
		_ = os.Remove(daemonPIDFile(configPath))
		return 0, false
	}
	return pid, true
}
