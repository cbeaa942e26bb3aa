package metrics

import (
	"time"
)

// Sample is one process gauge reading pushed by the sampler.
type Sample struct {
	Up            bool
	CPUPercent    float64
	RAMMB         float64
	UptimeSeconds float64
}

// StartSampler polls read() on interval and pushes the gauges until the
// returned stop function is called. The supervisor's Stats call is cheap
// (one /proc probe), so a fixed 5s default keeps overhead negligible.
func StartSampler(interval time.Duration, read func() Sample) (stop func()) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				s := read()
				SetServerUp(s.Up)
				SetProcessStats(s.CPUPercent, s.RAMMB, s.UptimeSeconds)
			}
		}
	}()
	return func() { close(done) }
}
