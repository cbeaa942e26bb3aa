package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config describes where warden's own log goes. Console output is on by
// default; Dir enables an additional rotating file (Dir/warden.log).
// Rotation parameters follow lumberjack semantics.
type Config struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Color      bool
	Console    bool
	Debug      bool
}

// New builds the shared slog.Logger. The returned closer shuts the rotating
// file writer, if any; it is safe to call with no file configured.
func New(cfg Config) (*slog.Logger, func() error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var writers []io.Writer
	closer := func() error { return nil }
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	if cfg.Dir != "" {
		fw := &lj.Logger{
			Filename:   filepath.Join(cfg.Dir, "warden.log"),
			MaxSize:    valOr(cfg.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(cfg.MaxBackups, DefaultMaxBackups),
			MaxAge:     valOr(cfg.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   cfg.Compress,
		}
		writers = append(writers, fw)
		closer = fw.Close
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	w := io.MultiWriter(writers...)

	var h slog.Handler
	if cfg.Color {
		h = newColorHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), closer
}

// RotatingWriter returns a rotation-managed writer for an arbitrary path,
// used for the detached daemon's redirected output.
func (c Config) RotatingWriter(path string) io.WriteCloser {
	return &lj.Logger{
		Filename:   path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
