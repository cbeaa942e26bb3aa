package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// stubServer answers canned responses and records what the client sent.
type stubServer struct {
	t        *testing.T
	lastPath string
	lastAuth string
	lastBody map[string]string
}

func newStub(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) (*stubServer, *Client) {
	t.Helper()
	s := &stubServer{t: t}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lastPath = r.Method + " " + r.URL.Path
		s.lastAuth = r.Header.Get("Authorization")
		s.lastBody = nil
		if r.Body != nil {
			var body map[string]string
			if json.NewDecoder(r.Body).Decode(&body) == nil {
				s.lastBody = body
			}
		}
		if h, ok := routes[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return s, New(Config{BaseURL: srv.URL, Token: "tok", Timeout: 5 * time.Second})
}

func respond(v any) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func TestStatsCarriesToken(t *testing.T) {
	stub, c := newStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /api/stats": respond(Stats{Status: "online", PID: 4242, Uptime: "5m 1s", Players: 2}),
	})
	st, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Status != "online" || st.PID != 4242 || st.Players != 2 {
		t.Fatalf("stats = %+v", st)
	}
	if stub.lastAuth != "Bearer tok" {
		t.Fatalf("auth header = %q", stub.lastAuth)
	}
}

func TestLoginStoresToken(t *testing.T) {
	stub, c := newStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /token":    respond(map[string]string{"status": "success", "token": "fresh"}),
		"GET /api/stats": respond(Stats{Status: "offline"}),
	})
	c.token = "" // start unauthenticated

	tok, err := c.Login(context.Background(), "admin", "hunter2")
	if err != nil || tok != "fresh" {
		t.Fatalf("login: %q, %v", tok, err)
	}
	if stub.lastBody["username"] != "admin" || stub.lastBody["password"] != "hunter2" {
		t.Fatalf("login body = %v", stub.lastBody)
	}
	if _, err := c.Stats(context.Background()); err != nil {
		t.Fatal(err)
	}
	if stub.lastAuth != "Bearer fresh" {
		t.Fatalf("token not stored: %q", stub.lastAuth)
	}
}

func TestErrorEnvelopeSurfaced(t *testing.T) {
	_, c := newStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /api/stop": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(OpResult{Status: "error", Message: "Server is not running."})
		},
	})
	_, err := c.Stop(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Server is not running.") {
		t.Fatalf("err = %v", err)
	}
}

func TestErrorWithoutEnvelope(t *testing.T) {
	_, c := newStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /api/kill": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		},
	})
	_, err := c.Kill(context.Background())
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("err = %v", err)
	}
}

func TestSendCommand(t *testing.T) {
	stub, c := newStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /api/command": respond(OpResult{Status: "success", Message: "Command sent."}),
	})
	res, err := c.SendCommand(context.Background(), "say hi")
	if err != nil || res.Status != "success" {
		t.Fatalf("send: %+v, %v", res, err)
	}
	if stub.lastBody["command"] != "say hi" {
		t.Fatalf("body = %v", stub.lastBody)
	}
}

func TestBackupCalls(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	stub, c := newStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /api/backups": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("type") != "world" || r.URL.Query().Get("world") != "nether" {
				t.Fatalf("query = %v", r.URL.Query())
			}
			respond(OpResult{Status: "started", Message: "Backup started."})(w, r)
		},
		"GET /api/backups": respond(map[string]any{"backups": []BackupRecord{
			{Name: "full_backup_x.zip", Size: 10, Created: created},
		}}),
		"GET /api/backups/status":               respond(BackupStatus{State: "running", Progress: 40}),
		"POST /api/backups/cancel":              respond(OpResult{Status: "success"}),
		"GET /api/backups/usage":                respond(DiskUsage{Total: 100, Used: 40, Free: 60}),
		"DELETE /api/backups/full_backup_x.zip": respond(OpResult{Status: "success", Message: "Backup deleted."}),
	})

	ctx := context.Background()
	if res, err := c.CreateBackup(ctx, "world", "nether"); err != nil || res.Status != "started" {
		t.Fatalf("create: %+v, %v", res, err)
	}
	records, err := c.ListBackups(ctx)
	if err != nil || len(records) != 1 || records[0].Name != "full_backup_x.zip" || !records[0].Created.Equal(created) {
		t.Fatalf("list: %+v, %v", records, err)
	}
	if st, err := c.BackupStatus(ctx); err != nil || st.State != "running" || st.Progress != 40 {
		t.Fatalf("status: %+v, %v", st, err)
	}
	if _, err := c.CancelBackup(ctx); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if u, err := c.DiskUsage(ctx); err != nil || u.Free != 60 {
		t.Fatalf("usage: %+v, %v", u, err)
	}
	if _, err := c.DeleteBackup(ctx, "full_backup_x.zip"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if stub.lastPath != "DELETE /api/backups/full_backup_x.zip" {
		t.Fatalf("last path = %q", stub.lastPath)
	}
}

func TestDefaults(t *testing.T) {
	c := New(Config{})
	if c.baseURL != "http://localhost:8590" {
		t.Fatalf("base url = %q", c.baseURL)
	}
	c = New(Config{BaseURL: "http://host:1/"})
	if c.baseURL != "http://host:1" {
		t.Fatalf("trailing slash kept: %q", c.baseURL)
	}
}
