package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// handleConsoleSSE streams the console as server-sent events: the history
// ring first, then live lines until the client disconnects. Replay and
// registration happen inside Subscribe, so the stream has no gap.
func (r *Router) handleConsoleSSE(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		writeJSON(c, http.StatusInternalServerError, gin.H{
			"status": "error", "message": "Streaming not supported.",
		})
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	q := r.opts.Hub.Subscribe()
	defer r.opts.Hub.Unsubscribe(q)

	ctx := c.Request.Context()
	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case line := <-q:
			_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", line)
			flusher.Flush()
		case <-keepalive.C:
			_, _ = fmt.Fprint(c.Writer, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API carries its own token auth; cross-origin browser panels are a
	// supported deployment.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleConsoleWS serves the bidirectional console: server-to-client console
// lines (replay then live), client-to-server text frames injected as
// commands. Auth ran in middleware; browser clients pass the token as a
// query parameter since websockets cannot set headers.
func (r *Router) handleConsoleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	q := r.opts.Hub.Subscribe()
	defer r.opts.Hub.Unsubscribe(q)

	done := make(chan struct{})
	quit := make(chan struct{})

	// Writer side: drain the subscriber queue into the socket.
	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case line := <-q:
				if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
					return
				}
			}
		}
	}()

	// Reader side: every text frame is a console command.
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if mt != websocket.TextMessage || len(msg) == 0 {
			continue
		}
		res := r.opts.Supervisor.SendCommand(string(msg))
		if res.Err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte("[warden] "+res.Message))
		}
	}
	close(quit)
	_ = conn.Close()
	<-done
}
