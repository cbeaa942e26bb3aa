package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (r *Router) handleBackupList(c *gin.Context) {
	records, err := r.opts.Engine.List()
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"backups": records})
}

func (r *Router) handleBackupCreate(c *gin.Context) {
	kind := c.Query("type")
	if kind == "" {
		kind = "full"
	}
	world := c.Query("world")
	if kind == "world" && world == "" {
		world = "world"
	}
	writeBackupResult(c, r.opts.Engine.Create(kind, world))
}

func (r *Router) handleBackupStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.opts.Engine.Status())
}

func (r *Router) handleBackupCancel(c *gin.Context) {
	writeBackupResult(c, r.opts.Engine.Cancel())
}

func (r *Router) handleBackupUsage(c *gin.Context) {
	usage, err := r.opts.Engine.Usage()
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, usage)
}

func (r *Router) handleBackupDelete(c *gin.Context) {
	writeBackupResult(c, r.opts.Engine.Delete(c.Param("name")))
}
