package console

import (
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/loykin/warden/internal/metrics"
)

// Default join/leave phrasings. Matching is best-effort against whatever
// the server happens to log; operators running servers with different
// phrasing override the patterns in config.
const (
	DefaultJoinPattern  = `(\w+) joined the game`
	DefaultLeavePattern = `(\w+) left the game`
)

// Tracker derives the online player set from streamed console lines.
type Tracker struct {
	joinRe  *regexp.Regexp
	leaveRe *regexp.Regexp

	mu      sync.Mutex
	players map[string]time.Time
}

// NewTracker compiles the join/leave patterns, falling back to the defaults
// when a pattern is empty or does not compile. Each pattern's first capture
// group is the username.
func NewTracker(joinPattern, leavePattern string, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		joinRe:  compileOr(joinPattern, DefaultJoinPattern, log),
		leaveRe: compileOr(leavePattern, DefaultLeavePattern, log),
		players: make(map[string]time.Time),
	}
}

func compileOr(pattern, fallback string, log *slog.Logger) *regexp.Regexp {
	if pattern == "" {
		return regexp.MustCompile(fallback)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		log.Warn("invalid player pattern, using default", "pattern", pattern, "error", err)
		return regexp.MustCompile(fallback)
	}
	return re
}

// Observe tests one console line against the join and leave patterns and
// mutates the player set on a match.
func (t *Tracker) Observe(line string) {
	if m := t.joinRe.FindStringSubmatch(line); len(m) > 1 {
		t.mu.Lock()
		t.players[m[1]] = time.Now()
		n := len(t.players)
		t.mu.Unlock()
		metrics.SetPlayers(n)
		return
	}
	if m := t.leaveRe.FindStringSubmatch(line); len(m) > 1 {
		t.mu.Lock()
		delete(t.players, m[1])
		n := len(t.players)
		t.mu.Unlock()
		metrics.SetPlayers(n)
	}
}

// List returns the online usernames, sorted for stable output.
func (t *Tracker) List() []string {
	t.mu.Lock()
	names := make([]string, 0, len(t.players))
	for name := range t.players {
		names = append(names, name)
	}
	t.mu.Unlock()
	sort.Strings(names)
	return names
}

// Count returns the number of online players.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.players)
}

// Reset clears the set, used when the server process goes away.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.players = make(map[string]time.Time)
	t.mu.Unlock()
	metrics.SetPlayers(0)
}
