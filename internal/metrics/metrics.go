package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors, registered via Register. Every
// helper is a no-op until registration succeeds so instrumented code paths
// cost nothing when metrics are disabled.
var (
	regOK atomic.Bool

	serverUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "warden",
		Subsystem: "server",
		Name:      "up",
		Help:      "1 when the supervised server process is running.",
	})
	serverUptime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "warden",
		Subsystem: "server",
		Name:      "uptime_seconds",
		Help:      "Uptime of the supervised process; 0 when offline or adopted.",
	})
	serverCPU = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "warden",
		Subsystem: "server",
		Name:      "cpu_percent",
		Help:      "CPU usage percent of the supervised process.",
	})
	serverRAM = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "warden",
		Subsystem: "server",
		Name:      "memory_mb",
		Help:      "Resident memory of the supervised process in MiB.",
	})
	playersOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "warden",
		Subsystem: "server",
		Name:      "players_online",
		Help:      "Players currently detected as joined.",
	})
	consoleLines = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "warden",
		Subsystem: "console",
		Name:      "lines_total",
		Help:      "Console lines read from the server process.",
	})

	backupRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Subsystem: "backup",
		Name:      "runs_total",
		Help:      "Completed backup runs by outcome.",
	}, []string{"result"})
	backupBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "warden",
		Subsystem: "backup",
		Name:      "bytes_total",
		Help:      "Total bytes of successfully committed archives.",
	})
	backupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "warden",
		Subsystem: "backup",
		Name:      "duration_seconds",
		Help:      "Duration of backup runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "API requests by route and status code.",
	}, []string{"route", "code"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "warden",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "API request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		serverUp, serverUptime, serverCPU, serverRAM, playersOnline,
		consoleLines, backupRuns, backupBytes, backupDuration,
		httpRequests, httpDuration,
	}
}

// Register installs the collectors into reg, tolerating duplicates so tests
// and embedders can call it more than once.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// RegisterDefault installs the collectors into the default registry.
func RegisterDefault() error { return Register(prometheus.DefaultRegisterer) }

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

func SetServerUp(up bool) {
	if !regOK.Load() {
		return
	}
	if up {
		serverUp.Set(1)
	} else {
		serverUp.Set(0)
	}
}

func SetProcessStats(cpuPercent, ramMB, uptimeSeconds float64) {
	if !regOK.Load() {
		return
	}
	serverCPU.Set(cpuPercent)
	serverRAM.Set(ramMB)
	serverUptime.Set(uptimeSeconds)
}

func SetPlayers(n int) {
	if !regOK.Load() {
		return
	}
	playersOnline.Set(float64(n))
}

func IncConsoleLines() {
	if !regOK.Load() {
		return
	}
	consoleLines.Inc()
}

// ObserveBackup records one finished run. size is only counted for
// successful outcomes.
func ObserveBackup(result string, size int64, elapsed time.Duration) {
	if !regOK.Load() {
		return
	}
	backupRuns.WithLabelValues(result).Inc()
	backupDuration.Observe(elapsed.Seconds())
	if result == "success" && size > 0 {
		backupBytes.Add(float64(size))
	}
}

func ObserveHTTP(route string, code int, elapsed time.Duration) {
	if !regOK.Load() {
		return
	}
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
