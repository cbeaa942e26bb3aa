// Package client is a thin typed client for the warden HTTP API, used by
// the CLI and embeddable in other tooling.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds client connection settings.
type Config struct {
	BaseURL  string // e.g. "http://localhost:8590"
	Token    string // bearer token; empty when auth is disabled
	Timeout  time.Duration
	Insecure bool // skip TLS verification, for self-signed servers
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8590"
	}
	if cfg.Timeout == 0 {
		// Stop polls for up to 10s server-side; leave headroom.
		cfg.Timeout = 15 * time.Second
	}
	transport := &http.Transport{}
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- operator opt-in
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var envelope OpResult
		if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
			return fmt.Errorf("server: %s", envelope.Message)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// Login obtains a token and stores it for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Status string `json:"status"`
		Token  string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/token",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, &s)
	return s, err
}

func (c *Client) Start(ctx context.Context) (OpResult, error)   { return c.op(ctx, "/api/start") }
func (c *Client) Stop(ctx context.Context) (OpResult, error)    { return c.op(ctx, "/api/stop") }
func (c *Client) Restart(ctx context.Context) (OpResult, error) { return c.op(ctx, "/api/restart") }
func (c *Client) Kill(ctx context.Context) (OpResult, error)    { return c.op(ctx, "/api/kill") }

func (c *Client) op(ctx context.Context, path string) (OpResult, error) {
	var r OpResult
	err := c.do(ctx, http.MethodPost, path, nil, &r)
	return r, err
}

func (c *Client) SendCommand(ctx context.Context, command string) (OpResult, error) {
	var r OpResult
	err := c.do(ctx, http.MethodPost, "/api/command", map[string]string{"command": command}, &r)
	return r, err
}

func (c *Client) Players(ctx context.Context) ([]string, error) {
	var resp struct {
		Players []string `json:"players"`
	}
	err := c.do(ctx, http.MethodGet, "/api/players", nil, &resp)
	return resp.Players, err
}

func (c *Client) Settings(ctx context.Context) (map[string]string, error) {
	var resp struct {
		Settings map[string]string `json:"settings"`
	}
	err := c.do(ctx, http.MethodGet, "/api/settings", nil, &resp)
	return resp.Settings, err
}

func (c *Client) UpdateSettings(ctx context.Context, updates map[string]string) (OpResult, error) {
	var r OpResult
	err := c.do(ctx, http.MethodPost, "/api/settings", updates, &r)
	return r, err
}

func (c *Client) CreateBackup(ctx context.Context, kind, world string) (OpResult, error) {
	q := url.Values{}
	q.Set("type", kind)
	if world != "" {
		q.Set("world", world)
	}
	var r OpResult
	err := c.do(ctx, http.MethodPost, "/api/backups?"+q.Encode(), nil, &r)
	return r, err
}

func (c *Client) BackupStatus(ctx context.Context) (BackupStatus, error) {
	var s BackupStatus
	err := c.do(ctx, http.MethodGet, "/api/backups/status", nil, &s)
	return s, err
}

func (c *Client) CancelBackup(ctx context.Context) (OpResult, error) {
	var r OpResult
	err := c.do(ctx, http.MethodPost, "/api/backups/cancel", nil, &r)
	return r, err
}

func (c *Client) ListBackups(ctx context.Context) ([]BackupRecord, error) {
	var resp struct {
		Backups []BackupRecord `json:"backups"`
	}
	err := c.do(ctx, http.MethodGet, "/api/backups", nil, &resp)
	return resp.Backups, err
}

func (c *Client) DeleteBackup(ctx context.Context, name string) (OpResult, error) {
	var r OpResult
	err := c.do(ctx, http.MethodDelete, "/api/backups/"+url.PathEscape(name), nil, &r)
	return r, err
}

func (c *Client) DiskUsage(ctx context.Context) (DiskUsage, error) {
	var u DiskUsage
	err := c.do(ctx, http.MethodGet, "/api/backups/usage", nil, &u)
	return u, err
}
