package console

// ring is a fixed-capacity line history. Appending beyond capacity evicts
// the oldest entry. Not safe for concurrent use; the Hub guards it.
type ring struct {
	buf   []string
	start int
	count int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 200
	}
	return &ring{buf: make([]string, capacity)}
}

func (r *ring) append(line string) {
	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = line
		r.count++
		return
	}
	r.buf[r.start] = line
	r.start = (r.start + 1) % len(r.buf)
}

// snapshot returns the ring contents oldest-first.
func (r *ring) snapshot() []string {
	out := make([]string, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
