package schedule

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/loykin/warden/internal/backup"
)

// ParseEvery parses schedules of the form "@every <duration>".
func ParseEvery(expr string) (time.Duration, error) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "@every ") {
		return 0, fmt.Errorf("unsupported schedule: %s (only @every <duration> supported)", expr)
	}
	d, err := time.ParseDuration(strings.TrimSpace(strings.TrimPrefix(expr, "@every ")))
	if err != nil {
		return 0, fmt.Errorf("invalid @every duration: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("@every duration must be > 0")
	}
	return d, nil
}

// Scheduler fires periodic backups. Runs never overlap: the engine rejects
// a Create while one is in flight, and the scheduler just logs the skip.
type Scheduler struct {
	engine *backup.Engine
	log    *slog.Logger

	interval time.Duration
	kind     string
	world    string

	quit chan struct{}
	done chan struct{}
}

// New validates the schedule expression and builds a stopped scheduler.
func New(engine *backup.Engine, expr, kind, world string, log *slog.Logger) (*Scheduler, error) {
	interval, err := ParseEvery(expr)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		kind = "full"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		engine:   engine,
		log:      log,
		interval: interval,
		kind:     kind,
		world:    world,
	}, nil
}

// Start launches the ticker loop.
func (s *Scheduler) Start() {
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop()
	s.log.Info("backup schedule started", "interval", s.interval, "type", s.kind)
}

func (s *Scheduler) loop() {
	defer close(s.done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-s.quit:
			return
		case <-t.C:
			res := s.engine.Create(s.kind, s.world)
			if res.Err != nil {
				s.log.Info("scheduled backup skipped", "reason", res.Message)
			} else if res.Status == "error" {
				s.log.Warn("scheduled backup rejected", "reason", res.Message)
			} else {
				s.log.Info("scheduled backup started", "type", s.kind)
			}
		}
	}
}

// Stop cancels the ticker loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.quit == nil {
		return
	}
	close(s.quit)
	<-s.done
	s.quit = nil
}
