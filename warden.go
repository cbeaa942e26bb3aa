// Package warden is the embeddable control plane for a single long-running
// game server process: lifecycle supervision with orphan adoption, live
// console fan-out, and cancellable archival backups.
package warden

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loykin/warden/internal/auth"
	"github.com/loykin/warden/internal/backup"
	cfg "github.com/loykin/warden/internal/config"
	"github.com/loykin/warden/internal/console"
	"github.com/loykin/warden/internal/history"
	"github.com/loykin/warden/internal/history/factory"
	"github.com/loykin/warden/internal/logger"
	"github.com/loykin/warden/internal/metrics"
	"github.com/loykin/warden/internal/process"
	"github.com/loykin/warden/internal/schedule"
	"github.com/loykin/warden/internal/server"
)

// Re-exported types for external consumers; aliases keep conversions
// zero-cost.

type Config = cfg.Config

type Settings = cfg.Settings

type ProcessStats = process.Stats

type BackupStatus = backup.Status

type BackupRecord = backup.Record

// LoadConfig reads (or bootstraps) the TOML configuration at path.
func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

// App is the composition root: one supervisor, one console hub, one backup
// engine per host, plus their background workers.
type App struct {
	Config     *Config
	Logger     *slog.Logger
	Supervisor *process.Supervisor
	Hub        *console.Hub
	Tracker    *console.Tracker
	Engine     *backup.Engine
	Recorder   *history.Recorder

	authSvc     *auth.Service
	scheduler   *schedule.Scheduler
	closeLog    func() error
	stopSampler func()
}

// New wires the whole control plane from a loaded configuration and starts
// the background workers: console relay, stream reader, metrics sampler and
// the backup schedule when one is configured. Supervisor construction also
// performs orphan adoption from the PID record.
func New(c *Config) (*App, error) {
	log, closeLog := logger.New(logger.Config{
		Dir:        c.Log.Dir,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
		Color:      c.Log.Color,
		Console:    c.Log.Console,
		Debug:      c.Debug,
	})

	var rec *history.Recorder
	if c.History.Enabled && c.History.DSN != "" {
		sink, err := factory.NewSinkFromDSN(c.History.DSN, c.History.Table)
		if err != nil {
			_ = closeLog()
			return nil, fmt.Errorf("history sink: %w", err)
		}
		rec = history.NewRecorder(sink, log)
	}

	if c.Metrics.Enabled {
		if err := metrics.RegisterDefault(); err != nil {
			_ = closeLog()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	hub := console.NewHub(c.Console.RingSize, c.Console.QueueSize)
	go hub.Run()
	tracker := console.NewTracker(c.Console.JoinPattern, c.Console.LeavePattern, log)

	sup := process.New(process.Options{
		Settings:  c.Settings(),
		Console:   hub,
		Recorder:  rec,
		Logger:    log,
		ExtraArgs: c.Process.ExtraArgs,
		Env:       c.Process.Env,
		UseOSEnv:  c.Process.UseOSEnv,
	})
	go console.NewReader(sup, hub, tracker, log).Run()

	engine := backup.New(c.Settings(), rec, log)

	authSvc, err := auth.NewService(auth.Config{
		Enabled:      c.Auth.Enabled,
		Username:     c.Auth.Username,
		PasswordHash: c.Auth.PasswordHash,
		JWTSecret:    c.Auth.JWTSecret,
		TokenTTL:     c.Auth.TokenTTL,
	})
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	app := &App{
		Config:     c,
		Logger:     log,
		Supervisor: sup,
		Hub:        hub,
		Tracker:    tracker,
		Engine:     engine,
		Recorder:   rec,
		authSvc:    authSvc,
		closeLog:   closeLog,
	}

	if c.Metrics.Enabled {
		app.stopSampler = metrics.StartSampler(0, func() metrics.Sample {
			st := sup.Stats()
			return metrics.Sample{
				Up:         st.Status == "online",
				CPUPercent: st.CPUPercent,
				RAMMB:      st.RAMMB,
			}
		})
	}

	if c.Schedule.Backup != "" {
		sched, err := schedule.New(engine, c.Schedule.Backup, c.Schedule.Type, c.Schedule.World, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("backup schedule: %w", err)
		}
		sched.Start()
		app.scheduler = sched
	}

	return app, nil
}

// Handler returns the HTTP API, mountable into any mux or framework.
func (a *App) Handler() http.Handler {
	return server.NewRouter(server.Options{
		Supervisor: a.Supervisor,
		Engine:     a.Engine,
		Hub:        a.Hub,
		Tracker:    a.Tracker,
		Settings:   a.Config.Settings(),
		Auth:       a.authSvc,
		Logger:     a.Logger,
		Metrics:    a.Config.Metrics.Enabled,
	}).Handler()
}

// RegisterMetrics installs warden's collectors into r.
func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }

// Close stops the background workers and flushes the log file. It does not
// stop the supervised server process: surviving a manager restart is the
// point of the PID record.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.stopSampler != nil {
		a.stopSampler()
	}
	if a.Recorder != nil {
		_ = a.Recorder.Close()
	}
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}
