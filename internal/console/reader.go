package console

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Source is the supervisor's view exposed to the reader: the live stdout
// stream of the owned process, or nil when nothing readable exists. Stream
// identity changes across restarts, which is how the reader notices them.
type Source interface {
	Stream() io.Reader
	IsRunning() bool
}

// Reader is the dedicated worker draining the server's combined output. It
// never exits: across stops and restarts under the same supervisor it backs
// off and waits for the next readable stream.
type Reader struct {
	src     Source
	hub     *Hub
	tracker *Tracker
	log     *slog.Logger
	backoff time.Duration
}

func NewReader(src Source, hub *Hub, tracker *Tracker, log *slog.Logger) *Reader {
	if log == nil {
		log = slog.Default()
	}
	return &Reader{src: src, hub: hub, tracker: tracker, log: log, backoff: time.Second}
}

// Run loops forever; call on its own goroutine. One blocking line read per
// iteration. EOF or a read error means the stream is gone (the process
// exited or the pipe broke), so the player set resets and the loop backs
// off before probing for a fresh stream.
func (r *Reader) Run() {
	var cur io.Reader
	var br *bufio.Reader
	for {
		stream := r.src.Stream()
		if stream == nil {
			cur = nil
			time.Sleep(r.backoff)
			continue
		}
		if stream != cur {
			cur = stream
			br = bufio.NewReader(stream)
		}

		line, err := br.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			r.hub.Publish(line)
			if r.tracker != nil {
				r.tracker.Observe(line)
			}
		}
		if err != nil {
			if err != io.EOF {
				r.log.Debug("console read error", "error", err)
			}
			if r.tracker != nil && !r.src.IsRunning() {
				r.tracker.Reset()
			}
			cur = nil
			time.Sleep(r.backoff)
		}
	}
}
