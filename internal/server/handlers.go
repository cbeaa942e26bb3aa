package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loykin/warden/internal/auth"
	"github.com/loykin/warden/internal/config"
)

func (r *Router) handleToken(c *gin.Context) {
	if !r.opts.Auth.Enabled() {
		writeJSON(c, http.StatusBadRequest, gin.H{
			"status": "error", "message": "Authentication is disabled.",
		})
		return
	}
	if !r.limiter.Allow(c.ClientIP()) {
		writeJSON(c, http.StatusTooManyRequests, gin.H{
			"status": "error", "message": "Too many login attempts; try again later.",
		})
		return
	}

	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.ShouldBind(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{
			"status": "error", "message": "Username and password required.",
		})
		return
	}
	token, err := r.opts.Auth.Login(req.Username, req.Password)
	if err != nil {
		r.log.Warn("login failed", "username", req.Username, "ip", c.ClientIP())
		writeJSON(c, http.StatusUnauthorized, gin.H{
			"status": "error", "message": "Invalid credentials.",
		})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "success", "token": token})
}

func (r *Router) handleStats(c *gin.Context) {
	st := r.opts.Supervisor.Stats()
	if r.opts.Tracker != nil {
		st.Players = r.opts.Tracker.Count()
	}
	writeJSON(c, http.StatusOK, st)
}

func (r *Router) handleStart(c *gin.Context) {
	writeResult(c, r.opts.Supervisor.Start())
}

func (r *Router) handleStop(c *gin.Context) {
	writeResult(c, r.opts.Supervisor.Stop())
}

func (r *Router) handleRestart(c *gin.Context) {
	writeResult(c, r.opts.Supervisor.Restart())
}

func (r *Router) handleKill(c *gin.Context) {
	writeResult(c, r.opts.Supervisor.Kill())
}

func (r *Router) handleCommand(c *gin.Context) {
	var req struct {
		Command string `json:"command"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Command == "" {
		writeJSON(c, http.StatusBadRequest, gin.H{
			"status": "error", "message": "command field required",
		})
		return
	}
	writeResult(c, r.opts.Supervisor.SendCommand(req.Command))
}

func (r *Router) handlePlayers(c *gin.Context) {
	players := []string{}
	if r.opts.Tracker != nil {
		players = r.opts.Tracker.List()
	}
	writeJSON(c, http.StatusOK, gin.H{"players": players, "count": len(players)})
}

func (r *Router) handleGetSettings(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"settings": r.opts.Settings.Map(), "mutable": config.MutableKeys})
}

func (r *Router) handleSetSettings(c *gin.Context) {
	var updates map[string]string
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		writeJSON(c, http.StatusBadRequest, gin.H{
			"status": "error", "message": "settings object required",
		})
		return
	}
	if err := r.opts.Settings.Apply(updates); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "success", "message": "Settings updated."})
}

func (r *Router) handleChangePassword(c *gin.Context) {
	var req struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.New == "" {
		writeJSON(c, http.StatusBadRequest, gin.H{
			"status": "error", "message": "current_password and new_password required",
		})
		return
	}
	hash, err := r.opts.Auth.ChangePassword(req.Current, req.New)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, auth.ErrInvalidCredentials) {
			code = http.StatusUnauthorized
		}
		writeJSON(c, code, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if err := r.opts.Settings.SetPasswordHash(hash); err != nil {
		r.log.Error("could not persist password hash", "error", err)
		writeJSON(c, http.StatusInternalServerError, gin.H{
			"status": "error", "message": "Password changed but could not be persisted.",
		})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "success", "message": "Password changed."})
}
