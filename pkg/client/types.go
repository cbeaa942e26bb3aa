package client

import "time"

// OpResult mirrors the server's {status, message} envelope.
type OpResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Stats mirrors GET /api/stats.
type Stats struct {
	Status     string  `json:"status"`
	PID        int     `json:"pid,omitempty"`
	CPUPercent float64 `json:"cpu_percent"`
	RAMMB      float64 `json:"ram_mb"`
	Uptime     string  `json:"uptime"`
	Players    int     `json:"players"`
}

// BackupStatus mirrors GET /api/backups/status.
type BackupStatus struct {
	State    string `json:"state"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
	Filename string `json:"filename,omitempty"`
}

// BackupRecord mirrors one entry of GET /api/backups.
type BackupRecord struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

// DiskUsage mirrors GET /api/backups/usage.
type DiskUsage struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}
