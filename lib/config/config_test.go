// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Sync.PollInterval != 2*time.Second {
		t.Errorf("expected poll_interval=2s, got %v", cfg.Sync.PollInterval)
	}
	if cfg.Sync.ReconnectMin != time.Second || cfg.Sync.ReconnectMax != 30*time.Second {
		t.Errorf("expected reconnect backoff 1s..30s, got %v..%v", cfg.Sync.ReconnectMin, cfg.Sync.ReconnectMax)
	}
	if cfg.Server.WebSocketPath != "/ws" {
		t.Errorf("expected websocket_path=/ws, got %s", cfg.Server.WebSocketPath)
	}
	// Defaults alone lack a server URL.
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "server.url is required") {
		t.Errorf("expected server.url error, got %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when LINEDESK_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "LINEDESK_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "linedesk.yaml", `
server:
  url: https://desk.example.test
sync:
  poll_interval: 5s
alerts:
  desktop: false
metrics:
  listen: 127.0.0.1:9464
`)
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.URL != "https://desk.example.test" {
		t.Errorf("server.url = %s", cfg.Server.URL)
	}
	if cfg.Sync.PollInterval != 5*time.Second {
		t.Errorf("poll_interval = %v, want 5s", cfg.Sync.PollInterval)
	}
	if cfg.Alerts.Desktop {
		t.Error("alerts.desktop should be false")
	}
	if !cfg.Alerts.Bell {
		t.Error("alerts.bell should keep its default")
	}
	if cfg.Metrics.Listen != "127.0.0.1:9464" {
		t.Errorf("metrics.listen = %s", cfg.Metrics.Listen)
	}
}

func TestLoad_JSONC(t *testing.T) {
	path := writeConfig(t, "linedesk.jsonc", `{
  // Staging server.
  "server": {"url": "http://localhost:8000", "websocket_path": "/socket.io/"},
  "sync": {"poll_interval": "3s",},
}`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Server.WebSocketPath != "/socket.io/" {
		t.Errorf("websocket_path = %s", cfg.Server.WebSocketPath)
	}
	if cfg.Sync.PollInterval != 3*time.Second {
		t.Errorf("poll_interval = %v, want 3s", cfg.Sync.PollInterval)
	}
}

func TestLoad_EnvFileAndExpansion(t *testing.T) {
	directory := t.TempDir()
	envPath := filepath.Join(directory, ".env")
	if err := os.WriteFile(envPath, []byte("LINEDESK_TEST_TOKEN=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	configPath := filepath.Join(directory, "linedesk.yaml")
	content := `
server:
  url: ${LINEDESK_TEST_URL:-http://localhost:8000}
  token: ${LINEDESK_TEST_TOKEN}
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("LINEDESK_TEST_URL", "")
	// godotenv sets the variable directly; make sure it is restored.
	t.Setenv("LINEDESK_TEST_TOKEN", "")
	os.Unsetenv("LINEDESK_TEST_TOKEN")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Server.URL != "http://localhost:8000" {
		t.Errorf("server.url = %s, want the default", cfg.Server.URL)
	}
	if cfg.Server.Token != "from-dotenv" {
		t.Errorf("server.token = %q, want from-dotenv", cfg.Server.Token)
	}
}

func TestLoad_ProcessEnvironmentWinsOverDotenv(t *testing.T) {
	directory := t.TempDir()
	os.WriteFile(filepath.Join(directory, ".env"), []byte("LINEDESK_TEST_TOKEN=from-dotenv\n"), 0o600)
	configPath := filepath.Join(directory, "linedesk.yaml")
	os.WriteFile(configPath, []byte("server:\n  url: http://x.test\n  token: ${LINEDESK_TEST_TOKEN}\n"), 0o644)
	t.Setenv("LINEDESK_TEST_TOKEN", "from-process")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Server.Token != "from-process" {
		t.Errorf("server.token = %q, want from-process", cfg.Server.Token)
	}
}

func TestLoad_ExplicitEnvFileMustExist(t *testing.T) {
	path := writeConfig(t, "linedesk.yaml", "env_file: secrets.env\nserver:\n  url: http://x.test\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for missing explicit env_file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://x.test" }, "must be http or https"},
		{"relative websocket path", func(c *Config) { c.Server.WebSocketPath = "ws" }, "websocket_path"},
		{"zero poll interval", func(c *Config) { c.Sync.PollInterval = 0 }, "poll_interval"},
		{"inverted backoff", func(c *Config) { c.Sync.ReconnectMax = 0 }, "reconnect_min"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.URL = "http://localhost:8000"
			test.modify(cfg)
			err := cfg.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("expected error containing %q, got %v", test.wantErr, err)
			}
		})
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"http://localhost:8000", "/ws", "ws://localhost:8000/ws"},
		{"https://desk.example.test/", "/ws", "wss://desk.example.test/ws"},
		{"https://desk.example.test/api", "/ws", "wss://desk.example.test/api/ws"},
	}
	for _, test := range tests {
		got, err := ServerConfig{URL: test.base, WebSocketPath: test.path}.WebSocketURL()
		if err != nil {
			t.Fatalf("WebSocketURL(%s): %v", test.base, err)
		}
		if got != test.want {
			t.Errorf("WebSocketURL(%s) = %s, want %s", test.base, got, test.want)
		}
	}
}
