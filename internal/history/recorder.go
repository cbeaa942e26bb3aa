package history

import (
	"context"
	"log/slog"
	"time"
)

// Recorder decouples event producers from the sink. Record never blocks the
// caller and never fails it: sink errors are logged and dropped, since audit
// export must not interfere with supervision. A nil Recorder is a no-op, so
// callers need no wiring guards.
type Recorder struct {
	sink Sink
	log  *slog.Logger
}

func NewRecorder(sink Sink, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{sink: sink, log: log}
}

// Record sends one event in the background with a bounded deadline.
func (r *Recorder) Record(t EventType, name, detail string, pid int) {
	if r == nil || r.sink == nil {
		return
	}
	e := Event{Type: t, Name: name, Detail: detail, PID: pid, OccurredAt: time.Now()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.sink.Send(ctx, e); err != nil {
			r.log.Warn("history sink send failed", "type", string(t), "error", err)
		}
	}()
}

// Close shuts the underlying sink.
func (r *Recorder) Close() error {
	if r == nil || r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
