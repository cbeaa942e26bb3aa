package warden

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	tmp := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(tmp, "warden.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	serverDir := filepath.Join(tmp, "server")
	if err := os.MkdirAll(serverDir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Settings().Apply(map[string]string{"server_dir": serverDir}); err != nil {
		t.Fatal(err)
	}
	cfg.Log.Dir = filepath.Join(tmp, "logs")
	cfg.Log.Console = false

	app, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestConfigBootstrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warden.toml")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults not written: %v", err)
	}
	if cfg.Listen != ":8590" {
		t.Fatalf("listen default = %q", cfg.Listen)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Fatalf("jwt secret not bootstrapped")
	}

	// A second load must see the persisted secret, not mint a new one.
	again, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Auth.JWTSecret != cfg.Auth.JWTSecret {
		t.Fatalf("jwt secret changed across loads")
	}
}

func TestAppServesAPI(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d (auth should be disabled by default)", resp.StatusCode)
	}
}

func TestAppRejectsBadSchedule(t *testing.T) {
	tmp := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(tmp, "warden.toml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Log.Dir = filepath.Join(tmp, "logs")
	cfg.Log.Console = false
	cfg.Schedule.Backup = "every day at noon"

	if _, err := New(cfg); err == nil {
		t.Fatalf("bad schedule expression accepted")
	}
}

func TestAppCloseLeavesServerAlone(t *testing.T) {
	app := newTestApp(t)
	// Close must not panic with no process and must be safe after workers
	// are already stopped by cleanup ordering.
	app.Close()
	if app.Supervisor.IsRunning() {
		t.Fatalf("no process was ever started")
	}
}
