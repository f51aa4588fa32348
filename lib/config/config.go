// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "LINEDESK_CONFIG"

// Config is the console configuration.
type Config struct {
	// EnvFile is a dotenv file loaded before ${VAR} expansion,
	// relative to the config file's directory. Default: .env, which
	// may be absent. An explicitly named file must exist.
	EnvFile string `yaml:"env_file"`

	Server  ServerConfig  `yaml:"server"`
	Sync    SyncConfig    `yaml:"sync"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Metrics MetricsConfig `yaml:"metrics"`
	Trace   TraceConfig   `yaml:"trace"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig locates the messaging server.
type ServerConfig struct {
	// URL is the server's base URL, e.g. https://desk.example.com.
	URL string `yaml:"url"`

	// WebSocketPath is the push channel endpoint relative to URL.
	// Default: /ws
	WebSocketPath string `yaml:"websocket_path"`

	// Token is sent as a bearer token on every request, if set.
	Token string `yaml:"token"`

	// RequestTimeout bounds each HTTP request. Default: 10s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// SyncConfig tunes the two sync channels.
type SyncConfig struct {
	// PollInterval is the snapshot poll period. Default: 2s
	PollInterval time.Duration `yaml:"poll_interval"`

	// ReconnectMin and ReconnectMax bound the push channel's
	// exponential reconnect backoff. Defaults: 1s and 30s.
	ReconnectMin time.Duration `yaml:"reconnect_min"`
	ReconnectMax time.Duration `yaml:"reconnect_max"`
}

// AlertsConfig selects how notices and unread messages get attention.
type AlertsConfig struct {
	// Desktop sends an OSC 777 desktop notification for notices.
	Desktop bool `yaml:"desktop"`

	// Bell rings the terminal bell for notices.
	Bell bool `yaml:"bell"`

	// ChimeOnUnread rings the bell for incoming messages in
	// conversations that are not on screen.
	ChimeOnUnread bool `yaml:"chime_on_unread"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address for /metrics. Empty disables it.
	Listen string `yaml:"listen"`
}

// TraceConfig controls the intake trace.
type TraceConfig struct {
	// Path is the CBOR trace file; a .zst or .lz4 suffix compresses it.
	// Empty disables tracing.
	Path string `yaml:"path"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info
	Level string `yaml:"level"`

	// Output is a file receiving every record as JSON. Empty keeps
	// logs in the console's status bar only.
	Output string `yaml:"output"`
}

// Default returns the configuration before any file is applied.
func Default() *Config {
	return &Config{
		EnvFile: ".env",
		Server: ServerConfig{
			WebSocketPath:  "/ws",
			RequestTimeout: 10 * time.Second,
		},
		Sync: SyncConfig{
			PollInterval: 2 * time.Second,
			ReconnectMin: time.Second,
			ReconnectMax: 30 * time.Second,
		},
		Alerts: AlertsConfig{
			Desktop:       true,
			Bell:          true,
			ChimeOnUnread: true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load loads the file named by LINEDESK_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your linedesk.yaml, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads and validates one config file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	explicitEnvFile, err := cfg.loadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.loadEnvFile(filepath.Dir(path), explicitEnvFile); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile merges the file into cfg. It reports whether the file
// named its own env_file.
func (cfg *Config) loadFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// Standard JSON is valid YAML, so one decoder serves both
		// and durations parse the same way.
		data = jsonc.ToJSON(data)
	}

	defaultEnvFile := cfg.EnvFile
	cfg.EnvFile = ""
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.EnvFile == "" {
		cfg.EnvFile = defaultEnvFile
		return false, nil
	}
	return true, nil
}

// loadEnvFile loads the dotenv file into the process environment.
func (cfg *Config) loadEnvFile(directory string, required bool) error {
	path := cfg.EnvFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(directory, path)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: loading env file %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} references in string settings.
func (cfg *Config) expandVariables() {
	for _, field := range []*string{
		&cfg.Server.URL,
		&cfg.Server.WebSocketPath,
		&cfg.Server.Token,
		&cfg.Metrics.Listen,
		&cfg.Trace.Path,
		&cfg.Log.Output,
		&cfg.Log.Level,
	} {
		*field = expandVars(*field)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${VAR} and ${VAR:-default}. Unset and empty
// variables both take the default.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Server.URL == "" {
		errs = append(errs, errors.New("server.url is required"))
	} else if parsed, err := url.Parse(cfg.Server.URL); err != nil {
		errs = append(errs, fmt.Errorf("server.url: %w", err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Errorf("server.url must be http or https, got %q", parsed.Scheme))
	}
	if !strings.HasPrefix(cfg.Server.WebSocketPath, "/") {
		errs = append(errs, fmt.Errorf("server.websocket_path must start with /, got %q", cfg.Server.WebSocketPath))
	}
	if cfg.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if cfg.Sync.PollInterval <= 0 {
		errs = append(errs, errors.New("sync.poll_interval must be positive"))
	}
	if cfg.Sync.ReconnectMin <= 0 || cfg.Sync.ReconnectMax < cfg.Sync.ReconnectMin {
		errs = append(errs, fmt.Errorf("sync.reconnect_min (%v) must be positive and not above sync.reconnect_max (%v)",
			cfg.Sync.ReconnectMin, cfg.Sync.ReconnectMax))
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// WebSocketURL returns the push endpoint with the scheme switched to
// ws or wss.
func (server ServerConfig) WebSocketURL() (string, error) {
	parsed, err := url.Parse(server.URL)
	if err != nil {
		return "", fmt.Errorf("config: server.url: %w", err)
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + server.WebSocketPath
	return parsed.String(), nil
}
