package process

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX platform")
	}
}

func waitUntil(t *testing.T, timeout, step time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(step)
	}
	return cond()
}

// testSettings is a fixed-value Settings for supervisor tests.
type testSettings struct {
	name    string
	java    string
	jar     string
	dir     string
	stopCmd string
}

func (s testSettings) ServerName() string  { return s.name }
func (s testSettings) JavaPath() string    { return s.java }
func (s testSettings) JarPath() string     { return s.jar }
func (s testSettings) ServerDir() string   { return s.dir }
func (s testSettings) RAMMin() string      { return "64M" }
func (s testSettings) RAMMax() string      { return "128M" }
func (s testSettings) StopCommand() string { return s.stopCmd }

// fakeServerScript writes an executable that ignores its arguments, echoes
// every stdin line and exits when it reads the stop command.
func fakeServerScript(t *testing.T, dir string) string {
	t.Helper()
	script := filepath.Join(dir, "fake-server.sh")
	body := `#!/bin/sh
echo "server starting"
while read line; do
  echo "got:$line"
  if [ "$line" = "stop" ]; then
    echo "server stopping"
    exit 0
  fi
done
`
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil { // #nosec G306
		t.Fatalf("write fake server: %v", err)
	}
	return script
}

// newTestSupervisor builds a supervisor over a fake server in a temp dir.
func newTestSupervisor(t *testing.T) (*Supervisor, testSettings) {
	t.Helper()
	requireUnix(t)
	dir := t.TempDir()
	script := fakeServerScript(t, dir)
	jar := filepath.Join(dir, "server.jar")
	if err := os.WriteFile(jar, []byte("jar"), 0o600); err != nil {
		t.Fatalf("write jar: %v", err)
	}
	set := testSettings{name: "test", java: script, jar: jar, dir: dir, stopCmd: "stop"}
	return New(Options{Settings: set}), set
}
