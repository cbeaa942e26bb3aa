package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/warden/internal/auth"
	"github.com/loykin/warden/internal/backup"
	"github.com/loykin/warden/internal/config"
	"github.com/loykin/warden/internal/console"
	"github.com/loykin/warden/internal/metrics"
	"github.com/loykin/warden/internal/process"
)

// Options wires the API router to its collaborators.
type Options struct {
	Supervisor *process.Supervisor
	Engine     *backup.Engine
	Hub        *console.Hub
	Tracker    *console.Tracker
	Settings   *config.Settings
	Auth       *auth.Service
	Logger     *slog.Logger
	BasePath   string // defaults to "/api"
	Metrics    bool   // expose /metrics from the default registry
}

// Router provides the embeddable HTTP surface of the control plane. Handler
// returns a plain http.Handler so it mounts into any mux, gin or echo app.
type Router struct {
	opts     Options
	log      *slog.Logger
	limiter  *auth.LoginLimiter
	basePath string
}

func NewRouter(opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	bp := sanitizeBase(opts.BasePath)
	if bp == "" {
		bp = "/api"
	}
	return &Router{
		opts:     opts,
		log:      log,
		limiter:  auth.NewLoginLimiter(),
		basePath: bp,
	}
}

// Handler builds the gin engine. Recovery and request logging are always
// on; everything under the base path sits behind the auth middleware.
func (r *Router) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	g.Use(r.requestLog())

	g.GET("/healthz", func(c *gin.Context) {
		writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
	})
	if r.opts.Metrics {
		g.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	g.POST("/token", r.handleToken)

	api := g.Group(r.basePath)
	api.Use(auth.GinMiddleware(r.opts.Auth))
	{
		api.GET("/stats", r.handleStats)
		api.POST("/start", r.handleStart)
		api.POST("/stop", r.handleStop)
		api.POST("/restart", r.handleRestart)
		api.POST("/kill", r.handleKill)
		api.POST("/command", r.handleCommand)
		api.GET("/players", r.handlePlayers)
		api.GET("/settings", r.handleGetSettings)
		api.POST("/settings", r.handleSetSettings)
		api.POST("/change-password", r.handleChangePassword)
		api.GET("/file", r.handleReadFile)
		api.POST("/file", r.handleWriteFile)
		api.GET("/logs", r.handleLogsTail)

		api.GET("/backups", r.handleBackupList)
		api.POST("/backups", r.handleBackupCreate)
		api.GET("/backups/status", r.handleBackupStatus)
		api.POST("/backups/cancel", r.handleBackupCancel)
		api.GET("/backups/usage", r.handleBackupUsage)
		api.DELETE("/backups/:name", r.handleBackupDelete)

		api.GET("/console/stream", r.handleConsoleSSE)
	}

	ws := g.Group("/ws")
	ws.Use(auth.GinMiddleware(r.opts.Auth))
	ws.GET("/console", r.handleConsoleWS)

	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr string, opts Options) *http.Server {
	r := NewRouter(opts)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}

func (r *Router) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(route, c.Writer.Status(), elapsed)
		r.log.Debug("http request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"elapsed", elapsed,
		)
	}
}
