package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxEditableSize caps the raw file editor at 2 MiB in both directions;
// it exists for config files, not world data.
const maxEditableSize = 2 << 20

func (r *Router) handleReadFile(c *gin.Context) {
	target, ok := resolveWithin(r.opts.Settings.ServerDir(), c.Query("path"))
	if !ok {
		writeJSON(c, http.StatusBadRequest, gin.H{
			"status": "error", "message": "Invalid file path.",
		})
		return
	}
	fi, err := os.Stat(target)
	if err != nil {
		writeJSON(c, http.StatusNotFound, gin.H{"status": "error", "message": "File not found."})
		return
	}
	if fi.IsDir() || fi.Size() > maxEditableSize {
		writeJSON(c, http.StatusBadRequest, gin.H{
			"status": "error", "message": "Not an editable file.",
		})
		return
	}
	b, err := os.ReadFile(target) // #nosec G304 -- containment checked above
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"path": c.Query("path"), "content": string(b)})
}

func (r *Router) handleWriteFile(c *gin.Context) {
	target, ok := resolveWithin(r.opts.Settings.ServerDir(), c.Query("path"))
	if !ok {
		writeJSON(c, http.StatusBadRequest, gin.H{
			"status": "error", "message": "Invalid file path.",
		})
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"status": "error", "message": "content field required"})
		return
	}
	if len(req.Content) > maxEditableSize {
		writeJSON(c, http.StatusBadRequest, gin.H{"status": "error", "message": "Content too large."})
		return
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		writeJSON(c, http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if err := os.WriteFile(target, []byte(req.Content), 0o640); err != nil { // #nosec G304
		writeJSON(c, http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "success", "message": "File saved."})
}

// handleLogsTail returns the last N lines of the server's own latest.log.
// A missing file is informative content, not an error: a fresh server has
// not written one yet.
func (r *Router) handleLogsTail(c *gin.Context) {
	n := 100
	if v := c.Query("lines"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 5000 {
			n = parsed
		}
	}
	path := filepath.Join(r.opts.Settings.ServerDir(), "logs", "latest.log")
	b, err := os.ReadFile(path) // #nosec G304 -- fixed path under the server dir
	if err != nil {
		writeJSON(c, http.StatusOK, gin.H{"lines": []string{"No server log file found yet."}})
		return
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	writeJSON(c, http.StatusOK, gin.H{"lines": lines})
}
