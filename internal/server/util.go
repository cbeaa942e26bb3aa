package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/loykin/warden/internal/backup"
	"github.com/loykin/warden/internal/process"
)

func sanitizeBase(bp string) string {
	bp = strings.TrimSpace(bp)
	if bp == "" || bp == "/" {
		return ""
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	return strings.TrimRight(bp, "/")
}

func writeJSON(c *gin.Context, code int, v any) {
	c.Header("Content-Type", "application/json")
	c.Status(code)
	_ = json.NewEncoder(c.Writer).Encode(v)
}

// writeResult maps a supervisor result to a transport response, translating
// the sentinel class into a status code.
func writeResult(c *gin.Context, res process.Result) {
	code := http.StatusOK
	switch {
	case res.Err == nil:
		// includes warnings: the operation completed, just not cleanly
	case errors.Is(res.Err, process.ErrAlreadyRunning),
		errors.Is(res.Err, process.ErrNotRunning),
		errors.Is(res.Err, process.ErrNoProcess),
		errors.Is(res.Err, process.ErrNoConsole):
		code = http.StatusConflict
	case errors.Is(res.Err, process.ErrConfig):
		code = http.StatusBadRequest
	case errors.Is(res.Err, process.ErrTimeout):
		code = http.StatusOK
	default:
		code = http.StatusInternalServerError
	}
	writeJSON(c, code, res)
}

func writeBackupResult(c *gin.Context, res backup.Result) {
	code := http.StatusOK
	switch {
	case res.Err == nil && res.Status != "error":
	case errors.Is(res.Err, backup.ErrBackupRunning), errors.Is(res.Err, backup.ErrNotRunning):
		code = http.StatusConflict
	case errors.Is(res.Err, backup.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(res.Err, backup.ErrInvalidPath):
		code = http.StatusBadRequest
	default:
		code = http.StatusBadRequest
	}
	writeJSON(c, code, res)
}

// resolveWithin joins rel against root and verifies the cleaned result is
// still contained in root, blocking traversal through "..", absolute paths
// or symlink-style tricks in the request string.
func resolveWithin(root, rel string) (string, bool) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	target := filepath.Clean(filepath.Join(absRoot, rel))
	if target != absRoot && !strings.HasPrefix(target, absRoot+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}
