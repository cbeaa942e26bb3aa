package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedIPs bounds the limiter map; when exceeded the map resets, which
// briefly forgives everyone rather than growing without bound.
const maxTrackedIPs = 1000

// LoginLimiter throttles credential attempts per client IP: burst of 5,
// refilling one attempt every 12 seconds.
type LoginLimiter struct {
	mu  sync.Mutex
	ips map[string]*rate.Limiter

	every rate.Limit
	burst int
}

func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		ips:   make(map[string]*rate.Limiter),
		every: rate.Every(12 * time.Second),
		burst: 5,
	}
}

// Allow reports whether ip may attempt a login right now.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.ips) >= maxTrackedIPs {
		l.ips = make(map[string]*rate.Limiter)
	}
	lim, ok := l.ips[ip]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.ips[ip] = lim
	}
	return lim.Allow()
}
