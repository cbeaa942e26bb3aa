package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/warden/internal/backup"
)

type testSettings struct{ dir string }

func (s testSettings) ServerName() string { return "test" }
func (s testSettings) ServerDir() string  { return s.dir }
func (s testSettings) BackupPath() string { return "backups" }

func TestParseEvery(t *testing.T) {
	cases := []struct {
		expr string
		want time.Duration
		ok   bool
	}{
		{"@every 6h", 6 * time.Hour, true},
		{"@every 30m", 30 * time.Minute, true},
		{"  @every 1h30m  ", 90 * time.Minute, true},
		{"@every -1h", 0, false},
		{"@every nonsense", 0, false},
		{"0 0 * * *", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		d, err := ParseEvery(c.expr)
		if c.ok && (err != nil || d != c.want) {
			t.Fatalf("ParseEvery(%q) = %v, %v; want %v", c.expr, d, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("ParseEvery(%q) accepted", c.expr)
		}
	}
}

func TestNewRejectsBadExpression(t *testing.T) {
	if _, err := New(nil, "hourly", "full", "", nil); err == nil {
		t.Fatalf("bad expression accepted")
	}
}

func TestSchedulerFiresBackups(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.dat"), []byte("a"), 0o600); err != nil {
		t.Fatal(err)
	}
	engine := backup.New(testSettings{dir: dir}, nil, nil)

	s, err := New(engine, "@every 50ms", "full", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		records, err := engine.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(records) > 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("no scheduled backup produced an archive")
}

func TestSchedulerStopTwice(t *testing.T) {
	engine := backup.New(testSettings{dir: t.TempDir()}, nil, nil)
	s, err := New(engine, "@every 1h", "full", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Stop() // never started
	s.Start()
	s.Stop()
	s.Stop() // idempotent
}
