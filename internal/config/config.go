package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config is the decoded warden.toml. Sections that require a restart to
// change (listen address, auth, history, metrics, tls, logging) are plain
// fields; the keys the settings API may rewrite at runtime live behind
// Settings.
type Config struct {
	ServerName  string `toml:"server_name" mapstructure:"server_name"`
	JavaPath    string `toml:"java_path" mapstructure:"java_path"`
	JarPath     string `toml:"jar_path" mapstructure:"jar_path"`
	ServerDir   string `toml:"server_dir" mapstructure:"server_dir"`
	RAMMin      string `toml:"ram_min" mapstructure:"ram_min"`
	RAMMax      string `toml:"ram_max" mapstructure:"ram_max"`
	BackupPath  string `toml:"backup_path" mapstructure:"backup_path"`
	StopCommand string `toml:"stop_command" mapstructure:"stop_command"`
	Listen      string `toml:"listen" mapstructure:"listen"`
	Debug       bool   `toml:"debug" mapstructure:"debug"`

	Process  ProcessConfig  `toml:"process" mapstructure:"process"`
	Console  ConsoleConfig  `toml:"console" mapstructure:"console"`
	Schedule ScheduleConfig `toml:"schedule" mapstructure:"schedule"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`
	Auth     AuthConfig     `toml:"auth" mapstructure:"auth"`
	History  HistoryConfig  `toml:"history" mapstructure:"history"`
	Metrics  MetricsConfig  `toml:"metrics" mapstructure:"metrics"`
	TLS      TLSConfig      `toml:"tls" mapstructure:"tls"`

	settings *Settings
}

type ProcessConfig struct {
	Env         []string `toml:"env" mapstructure:"env"`
	ExtraArgs   []string `toml:"extra_args" mapstructure:"extra_args"`
	UseOSEnv    bool     `toml:"use_os_env" mapstructure:"use_os_env"`
	AutoRestart bool     `toml:"autorestart" mapstructure:"autorestart"`
}

type ConsoleConfig struct {
	RingSize     int    `toml:"ring_size" mapstructure:"ring_size"`
	QueueSize    int    `toml:"queue_size" mapstructure:"queue_size"`
	JoinPattern  string `toml:"join_pattern" mapstructure:"join_pattern"`
	LeavePattern string `toml:"leave_pattern" mapstructure:"leave_pattern"`
}

type ScheduleConfig struct {
	Backup string `toml:"backup" mapstructure:"backup"`
	Type   string `toml:"type" mapstructure:"type"`
	World  string `toml:"world" mapstructure:"world"`
}

type LogConfig struct {
	Dir        string `toml:"dir" mapstructure:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
	Color      bool   `toml:"color" mapstructure:"color"`
	Console    bool   `toml:"console" mapstructure:"console"`
}

type AuthConfig struct {
	Enabled      bool          `toml:"enabled" mapstructure:"enabled"`
	Username     string        `toml:"username" mapstructure:"username"`
	PasswordHash string        `toml:"password_hash" mapstructure:"password_hash"`
	JWTSecret    string        `toml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `toml:"token_ttl" mapstructure:"token_ttl"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	DSN     string `toml:"dsn" mapstructure:"dsn"`
	Table   string `toml:"table" mapstructure:"table"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

type TLSConfig struct {
	CertFile     string `toml:"cert_file" mapstructure:"cert_file"`
	KeyFile      string `toml:"key_file" mapstructure:"key_file"`
	AutoGenerate bool   `toml:"auto_generate" mapstructure:"auto_generate"`
}

// Load reads a TOML config. A missing file is not an error: defaults are
// written to path so a first run leaves a file the operator can edit,
// mirroring how the settings API expects a writable backing file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if werr := v.SafeWriteConfigAs(path); werr != nil {
			return nil, fmt.Errorf("write default config: %w", werr)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	applyFallbacks(&c)
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = randomSecret()
		v.Set("auth.jwt_secret", c.Auth.JWTSecret)
		_ = v.WriteConfigAs(path)
	}
	c.settings = newSettings(v, path, &c)
	return &c, nil
}

// Settings returns the mutable runtime view backing the settings API.
func (c *Config) Settings() *Settings { return c.settings }

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_name", "My Minecraft Server")
	v.SetDefault("java_path", "java")
	v.SetDefault("jar_path", "server.jar")
	v.SetDefault("server_dir", ".")
	v.SetDefault("ram_min", "1G")
	v.SetDefault("ram_max", "2G")
	v.SetDefault("backup_path", "backups")
	v.SetDefault("stop_command", "stop")
	v.SetDefault("listen", ":8590")
	v.SetDefault("console.ring_size", 200)
	v.SetDefault("console.queue_size", 500)
	v.SetDefault("schedule.type", "full")
	v.SetDefault("schedule.world", "world")
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("history.table", "warden_events")
	v.SetDefault("log.console", true)
}

func applyFallbacks(c *Config) {
	if c.Console.RingSize <= 0 {
		c.Console.RingSize = 200
	}
	if c.Console.QueueSize <= 0 {
		c.Console.QueueSize = 500
	}
	if c.StopCommand == "" {
		c.StopCommand = "stop"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = time.Hour
	}
	if c.History.Table == "" {
		c.History.Table = "warden_events"
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "warden-fallback-secret"
	}
	return hex.EncodeToString(b)
}

// ExpandHome resolves a leading "~" or "~/" against the current user's home
// directory. Other paths pass through unchanged.
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		if p == "~" {
			return home
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// Settings is the mutable subset of the configuration shared by the
// supervisor, the backup engine and the settings API. Field reads take the
// lock; Apply replaces values wholesale and persists through viper so the
// file on disk stays authoritative across restarts.
type Settings struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string

	serverName  string
	javaPath    string
	jarPath     string
	serverDir   string
	ramMin      string
	ramMax      string
	backupPath  string
	stopCommand string
}

// MutableKeys lists the settings the API may rewrite, in display order.
var MutableKeys = []string{
	"server_name", "java_path", "jar_path", "server_dir",
	"ram_min", "ram_max", "backup_path",
}

func newSettings(v *viper.Viper, path string, c *Config) *Settings {
	return &Settings{
		v:           v,
		path:        path,
		serverName:  c.ServerName,
		javaPath:    c.JavaPath,
		jarPath:     c.JarPath,
		serverDir:   c.ServerDir,
		ramMin:      c.RAMMin,
		ramMax:      c.RAMMax,
		backupPath:  c.BackupPath,
		stopCommand: c.StopCommand,
	}
}

func (s *Settings) ServerName() string { s.mu.RLock(); defer s.mu.RUnlock(); return s.serverName }
func (s *Settings) JavaPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ExpandHome(s.javaPath)
}
func (s *Settings) JarPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ExpandHome(s.jarPath)
}
func (s *Settings) ServerDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ExpandHome(s.serverDir)
}
func (s *Settings) RAMMin() string { s.mu.RLock(); defer s.mu.RUnlock(); return s.ramMin }
func (s *Settings) RAMMax() string { s.mu.RLock(); defer s.mu.RUnlock(); return s.ramMax }
func (s *Settings) BackupPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ExpandHome(s.backupPath)
}
func (s *Settings) StopCommand() string { s.mu.RLock(); defer s.mu.RUnlock(); return s.stopCommand }

// Map returns the mutable settings as the API response shape.
func (s *Settings) Map() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]string{
		"server_name": s.serverName,
		"java_path":   s.javaPath,
		"jar_path":    s.jarPath,
		"server_dir":  s.serverDir,
		"ram_min":     s.ramMin,
		"ram_max":     s.ramMax,
		"backup_path": s.backupPath,
	}
}

// Apply overwrites the given settings and persists the file. Unknown keys
// are rejected before anything is written.
func (s *Settings) Apply(updates map[string]string) error {
	for k := range updates {
		if !isMutableKey(k) {
			return fmt.Errorf("unknown setting %q", k)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, val := range updates {
		switch k {
		case "server_name":
			s.serverName = val
		case "java_path":
			s.javaPath = val
		case "jar_path":
			s.jarPath = val
		case "server_dir":
			s.serverDir = val
		case "ram_min":
			s.ramMin = val
		case "ram_max":
			s.ramMax = val
		case "backup_path":
			s.backupPath = val
		}
		s.v.Set(k, val)
	}
	return s.v.WriteConfigAs(s.path)
}

// SetPasswordHash persists a new admin credential hash.
func (s *Settings) SetPasswordHash(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set("auth.password_hash", hash)
	return s.v.WriteConfigAs(s.path)
}

func isMutableKey(k string) bool {
	for _, m := range MutableKeys {
		if m == k {
			return true
		}
	}
	return false
}
