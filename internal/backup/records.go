package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/loykin/warden/internal/history"
)

// Record describes one committed archive in the destination directory.
type Record struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

// DiskUsage reports the destination filesystem capacity.
type DiskUsage struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}

// List scans the destination for archives, newest first. Files that vanish
// between glob and stat are skipped silently.
func (e *Engine) List() ([]Record, error) {
	dest, err := e.EnsureDestDir()
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(dest, "*"+archiveExtension))
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(matches))
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			continue
		}
		records = append(records, Record{
			Name:    filepath.Base(m),
			Size:    fi.Size(),
			Created: fi.ModTime(),
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Created.After(records[j].Created) })
	return records, nil
}

// Delete removes one archive by name. The canonicalized target must stay
// inside the destination directory; traversal attempts are rejected before
// any filesystem mutation.
func (e *Engine) Delete(name string) Result {
	dest, err := e.EnsureDestDir()
	if err != nil {
		return Result{Status: "error", Message: err.Error()}
	}
	target, ok := containedPath(dest, name)
	if !ok {
		return Result{Status: "error", Message: "Invalid backup name.", Err: ErrInvalidPath}
	}
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return Result{Status: "error", Message: "Backup not found.", Err: ErrNotFound}
		}
		return Result{Status: "error", Message: "Could not delete backup: " + err.Error()}
	}
	e.log.Info("backup deleted", "name", name)
	e.rec.Record(history.EventBackupDeleted, e.settings.ServerName(), name, 0)
	return Result{Status: "success", Message: "Backup deleted."}
}

// Usage reports total/used/free of the destination filesystem, creating
// the directory first so a fresh install still answers.
func (e *Engine) Usage() (DiskUsage, error) {
	dest, err := e.EnsureDestDir()
	if err != nil {
		return DiskUsage{}, err
	}
	u, err := disk.Usage(dest)
	if err != nil {
		return DiskUsage{}, err
	}
	return DiskUsage{Total: u.Total, Used: u.Used, Free: u.Free}, nil
}

// containedPath resolves name against dir and reports whether the result
// stays inside dir.
func containedPath(dir, name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	target := filepath.Join(absDir, name)
	if filepath.Dir(target) != absDir {
		return "", false
	}
	return target, true
}
