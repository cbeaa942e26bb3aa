package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loykin/warden/internal/logger"
)

// embedded_logger: build warden's rotating, colorized logger on its own.
func main() {
	dir := os.Getenv("WARDEN_LOG_DIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), fmt.Sprintf("warden-logs-%d", time.Now().UnixNano()))
	}
	_ = os.MkdirAll(dir, 0o750)

	log, closeLog := logger.New(logger.Config{
		Dir:     dir,
		Color:   true,
		Console: true,
		Debug:   true,
	})
	defer func() { _ = closeLog() }()

	log.Debug("debug line", "dir", dir)
	log.Info("info line")
	log.Warn("warning line")
	log.Error("error line")

	fmt.Println("log file:", filepath.Join(dir, "warden.log"))
}
