package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/warden/internal/history"
)

func TestSinkRoundTrip(t *testing.T) {
	sink, err := New(":memory:", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = sink.Close() }()

	ctx := context.Background()
	events := []history.Event{
		{Type: history.EventStart, Name: "server", Detail: "started server.jar", PID: 4242, OccurredAt: time.Now().UTC()},
		{Type: history.EventBackupSuccess, Name: "server", Detail: "full_backup_x.zip", OccurredAt: time.Now().UTC()},
	}
	for _, e := range events {
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	var count int
	if err := sink.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM warden_events").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	var typ, name, detail string
	var pid int
	err = sink.db.QueryRowContext(ctx,
		"SELECT type, name, detail, pid FROM warden_events WHERE type = ?", "process_start").
		Scan(&typ, &name, &detail, &pid)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if typ != "process_start" || name != "server" || detail != "started server.jar" || pid != 4242 {
		t.Fatalf("row = %s %s %s %d", typ, name, detail, pid)
	}
}

func TestSinkCustomTable(t *testing.T) {
	sink, err := New(":memory:", "audit_log")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.Send(context.Background(), history.Event{Type: history.EventAdopt, Name: "server", OccurredAt: time.Now()}); err != nil {
		t.Fatalf("send: %v", err)
	}
	var count int
	if err := sink.db.QueryRow("SELECT COUNT(*) FROM audit_log").Scan(&count); err != nil {
		t.Fatalf("custom table missing: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}
}

func TestSinkDSNForms(t *testing.T) {
	file := filepath.Join(t.TempDir(), "events.db")
	for _, dsn := range []string{file, "sqlite://" + file, "sqlite://:memory:"} {
		sink, err := New(dsn, "")
		if err != nil {
			t.Fatalf("New(%q): %v", dsn, err)
		}
		_ = sink.Close()
	}
	if _, err := New("", ""); err == nil {
		t.Fatalf("empty DSN accepted")
	}
}
