package console

import (
	"sync"

	"github.com/loykin/warden/internal/metrics"
)

// Hub is the console fan-out: one inbound publish channel feeding N bounded
// subscriber queues through a single relay goroutine. Delivery to a slow
// subscriber is best-effort; when its queue is full the line is dropped for
// that subscriber only, so one stalled observer never blocks the producer
// or its peers.
type Hub struct {
	publish   chan string
	queueSize int

	mu      sync.Mutex
	history *ring
	subs    map[chan string]struct{}
}

// NewHub sizes the history ring and per-subscriber queues. The publish
// channel gets a small buffer so the reader rarely waits on the relay.
func NewHub(ringSize, queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = 500
	}
	return &Hub{
		publish:   make(chan string, 64),
		queueSize: queueSize,
		history:   newRing(ringSize),
		subs:      make(map[chan string]struct{}),
	}
}

// Publish appends a line to the history ring and hands it to the relay.
func (h *Hub) Publish(line string) {
	h.mu.Lock()
	h.history.append(line)
	h.mu.Unlock()
	metrics.IncConsoleLines()
	h.publish <- line
}

// History returns the ring contents oldest-first.
func (h *Hub) History() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.history.snapshot()
}

// Subscribe creates a bounded queue, replays the full history ring into it
// in order, then registers it for live lines. Registration happens under
// the same lock as the replay snapshot so no published line is both missed
// and absent from the replay.
func (h *Hub) Subscribe() chan string {
	h.mu.Lock()
	defer h.mu.Unlock()
	q := make(chan string, h.queueSize)
	for _, line := range h.history.snapshot() {
		select {
		case q <- line:
		default:
		}
	}
	h.subs[q] = struct{}{}
	return q
}

// Unsubscribe removes the queue from the fan-out set. The channel is not
// closed here; the relay may be sending into it concurrently.
func (h *Hub) Unsubscribe(q chan string) {
	h.mu.Lock()
	delete(h.subs, q)
	h.mu.Unlock()
}

// Run is the relay loop: drain the publish channel, replicate each line to
// a snapshot of the subscriber set. Run forever on its own goroutine.
func (h *Hub) Run() {
	for line := range h.publish {
		h.mu.Lock()
		targets := make([]chan string, 0, len(h.subs))
		for q := range h.subs {
			targets = append(targets, q)
		}
		h.mu.Unlock()
		for _, q := range targets {
			select {
			case q <- line:
			default: // queue full: drop for this subscriber only
			}
		}
	}
}

// Close stops the relay once the publish channel drains.
func (h *Hub) Close() {
	close(h.publish)
}
