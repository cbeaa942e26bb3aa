package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ConsoleOnly(t *testing.T) {
	lg, closeFn := New(Config{Console: true})
	if lg == nil {
		t.Fatal("nil logger")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNew_FileOutput(t *testing.T) {
	dir := t.TempDir()
	lg, closeFn := New(Config{Dir: dir})
	lg.Info("boot", "component", "test")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "warden.log"))
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(b), "boot") || !strings.Contains(string(b), "component=test") {
		t.Fatalf("unexpected log content: %s", b)
	}
}

func TestNew_DebugLevel(t *testing.T) {
	dir := t.TempDir()
	lg, closeFn := New(Config{Dir: dir, Debug: true})
	lg.Debug("trace detail")
	_ = closeFn()
	b, _ := os.ReadFile(filepath.Join(dir, "warden.log"))
	if !strings.Contains(string(b), "trace detail") {
		t.Fatalf("debug record dropped: %s", b)
	}

	dir2 := t.TempDir()
	lg2, closeFn2 := New(Config{Dir: dir2})
	lg2.Debug("hidden")
	_ = closeFn2()
	b2, _ := os.ReadFile(filepath.Join(dir2, "warden.log"))
	if strings.Contains(string(b2), "hidden") {
		t.Fatalf("debug record not filtered at info level: %s", b2)
	}
}

func TestColorHandler_PrefixesLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	h := newColorHandler(f, &slog.HandlerOptions{})
	lg := slog.New(h)
	lg.Warn("careful")
	_ = f.Close()
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "\\x1b[33m") && !strings.Contains(string(b), "\033[33m") {
		t.Fatalf("warn colour missing: %q", b)
	}
	if !strings.Contains(string(b), "careful") {
		t.Fatalf("message missing: %q", b)
	}
}

func TestRotatingWriter(t *testing.T) {
	dir := t.TempDir()
	w := Config{}.RotatingWriter(filepath.Join(dir, "daemon.log"))
	if _, err := w.Write([]byte("detached\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "daemon.log")); err != nil {
		t.Fatalf("file not created: %v", err)
	}
}
