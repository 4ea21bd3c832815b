package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/hookscope/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "hookscope.json"

	// DefaultAddr is the default listen address for the serve command.
	DefaultAddr = "localhost:8080"

	// DefaultLogLevel is the default slog level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler format.
	DefaultLogFormat = "text"

	// DefaultQueueSize is the default per-loop task queue capacity.
	DefaultQueueSize = 256

	// DefaultMicrotaskBudget is the default number of microtasks drained
	// after one task.
	DefaultMicrotaskBudget = 1024

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "hookscope"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "hookscope"
)

// Environment variables that override file values.
const (
	EnvDebug    = "HOOKSCOPE_DEBUG"
	EnvLogLevel = "HOOKSCOPE_LOG_LEVEL"
	EnvAddr     = "HOOKSCOPE_ADDR"
)

// Config represents the complete hookscope.json configuration.
type Config struct {
	// Debug enables hook order validation.
	Debug bool `json:"debug,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Loop contains event loop configuration.
	Loop LoopConfig `json:"loop,omitempty"`

	// Server contains serve command configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// LoopConfig contains event loop settings.
type LoopConfig struct {
	// QueueSize is the task queue capacity of each loop.
	QueueSize int `json:"queueSize,omitempty"`

	// MicrotaskBudget caps microtasks drained after one task.
	MicrotaskBudget int `json:"microtaskBudget,omitempty"`
}

// ServerConfig contains serve command settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// AllowedOrigins lists origins accepted for WebSocket upgrades. Empty
	// means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics and records runtime metrics.
	Enabled bool `json:"enabled"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled emits spans through the global tracer provider.
	Enabled bool `json:"enabled"`

	// TracerName is the tracer name.
	TracerName string `json:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Loop: LoopConfig{
			QueueSize:       DefaultQueueSize,
			MicrotaskBudget: DefaultMicrotaskBudget,
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for hookscope.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("H121").
				WithDetail("No " + ConfigFileName + " found at " + path)
		}
		return nil, errors.New("H120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("H120").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to defaults when
// path is empty or missing. Environment overrides are applied either way.
func LoadOrDefault(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if cfg, err = LoadFile(path); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, errors.New("H120").Wrap(err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("H120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("H120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Loop.QueueSize == 0 {
		c.Loop.QueueSize = DefaultQueueSize
	}
	if c.Loop.MicrotaskBudget == 0 {
		c.Loop.MicrotaskBudget = DefaultMicrotaskBudget
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// ApplyEnv overrides fields from environment variables read through lookup,
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDebug); ok {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("H122").
				WithDetail(EnvDebug + " must be a boolean, got " + strconv.Quote(v)).
				Wrap(err)
		}
		c.Debug = debug
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("H122").
			WithDetail("log.format must be \"text\" or \"json\", got " + strconv.Quote(c.Log.Format))
	}
	if c.Loop.QueueSize < 1 {
		return errors.New("H122").
			WithDetail("loop.queueSize must be positive")
	}
	if c.Loop.MicrotaskBudget < 1 {
		return errors.New("H122").
			WithDetail("loop.microtaskBudget must be positive")
	}
	if c.Server.Addr == "" {
		return errors.New("H122").
			WithDetail("server.addr must not be empty")
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, errors.New("H122").
			WithDetail("log.level must be debug, info, warn or error, got " + strconv.Quote(s)).
			Wrap(err)
	}
	return level, nil
}

// Logger builds a slog.Logger writing to w in the configured format and
// level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
