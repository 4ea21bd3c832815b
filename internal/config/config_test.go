package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/hookscope/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Loop.QueueSize != DefaultQueueSize {
		t.Errorf("Loop.QueueSize = %d, want %d", cfg.Loop.QueueSize, DefaultQueueSize)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if he, ok := err.(*errors.HookError); !ok || he.Code != "H121" {
		t.Errorf("missing config error = %v, want H121", err)
	}

	configJSON := `{
  "debug": true,
  "log": {"level": "debug", "format": "json"},
  "loop": {"queueSize": 16},
  "server": {"addr": ":9000", "allowedOrigins": ["https://example.com"]},
  "metrics": {"enabled": false},
  "tracing": {"enabled": true}
}
`
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Loop.QueueSize != 16 {
		t.Errorf("Loop.QueueSize = %d, want 16", cfg.Loop.QueueSize)
	}
	if cfg.Loop.MicrotaskBudget != DefaultMicrotaskBudget {
		t.Errorf("Loop.MicrotaskBudget = %d, want default", cfg.Loop.MicrotaskBudget)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if !cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should be true")
	}
	if cfg.Path() != configPath || cfg.Dir() != tmpDir {
		t.Errorf("Path() = %q, Dir() = %q", cfg.Path(), cfg.Dir())
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "H120") {
		t.Errorf("error = %v, want H120", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Debug = true
	cfg.Metrics.Enabled = false
	if err := cfg.Save(); err == nil {
		t.Error("Save without a path should fail")
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	if !Exists(tmpDir) {
		t.Fatal("Exists() = false after SaveTo")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if !loaded.Debug || loaded.Metrics.Enabled {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv(EnvDebug, "false")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}

	cfg, err = LoadOrDefault("")
	if err != nil || cfg == nil {
		t.Fatalf("empty path: cfg=%v err=%v", cfg, err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDebug:    "true",
		EnvLogLevel: "warn",
		EnvAddr:     "0.0.0.0:7000",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := New()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv error: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug should be overridden")
	}
	if cfg.LogLevel() != slog.LevelWarn {
		t.Errorf("LogLevel() = %v, want WARN", cfg.LogLevel())
	}
	if cfg.Server.Addr != "0.0.0.0:7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}

	env[EnvDebug] = "maybe"
	err := New().ApplyEnv(lookup)
	if err == nil || !strings.Contains(err.Error(), "H122") {
		t.Errorf("bad bool error = %v, want H122", err)
	}
}

func TestLoadOrDefaultAppliesEnv(t *testing.T) {
	t.Setenv(EnvAddr, ":1234")
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":1234" {
		t.Errorf("Server.Addr = %q, want env override", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"zero queue", func(c *Config) { c.Loop.QueueSize = 0 }, true},
		{"negative budget", func(c *Config) { c.Loop.MicrotaskBudget = -1 }, true},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"json format", func(c *Config) { c.Log.Format = "json" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "debug"

	cfg.Logger(&buf).Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("json logger output = %q", buf.String())
	}

	buf.Reset()
	cfg.Log.Format = "text"
	cfg.Log.Level = "error"
	cfg.Logger(&buf).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info line written at error level: %q", buf.String())
	}
}
