package history

import (
	"context"
	"errors"
	"testing"
	"time"
)

type captureSink struct {
	events chan Event
	err    error
	closed bool
}

func (s *captureSink) Send(_ context.Context, e Event) error {
	if s.err != nil {
		return s.err
	}
	s.events <- e
	return nil
}

func (s *captureSink) Close() error {
	s.closed = true
	return nil
}

func TestNilRecorderIsNoOp(t *testing.T) {
	var r *Recorder
	r.Record(EventStart, "server", "detail", 1) // must not panic
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRecorderDeliversAsync(t *testing.T) {
	sink := &captureSink{events: make(chan Event, 1)}
	r := NewRecorder(sink, nil)

	before := time.Now()
	r.Record(EventBackupSuccess, "server", "full_backup_x.zip", 0)

	select {
	case e := <-sink.events:
		if e.Type != EventBackupSuccess || e.Name != "server" || e.Detail != "full_backup_x.zip" {
			t.Fatalf("event = %+v", e)
		}
		if e.OccurredAt.Before(before) {
			t.Fatalf("timestamp not stamped at record time")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event never reached the sink")
	}
}

func TestRecorderSwallowsSinkErrors(t *testing.T) {
	sink := &captureSink{err: errors.New("sink down")}
	r := NewRecorder(sink, nil)
	r.Record(EventKill, "server", "", 42)
	// Nothing to assert beyond "the caller was not affected"; give the
	// background send a moment to run its error path.
	time.Sleep(50 * time.Millisecond)
}

func TestRecorderClose(t *testing.T) {
	sink := &captureSink{events: make(chan Event, 1)}
	r := NewRecorder(sink, nil)
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !sink.closed {
		t.Fatalf("sink not closed")
	}
}
