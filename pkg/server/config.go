package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/hookscope/pkg/hooks"
	"github.com/vango-dev/hookscope/pkg/loop"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address.
	// Default: ":8080".
	Addr string

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 4096 each.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// WriteTimeout bounds each WebSocket write.
	// Default: 10s.
	WriteTimeout time.Duration

	// ReadHeaderTimeout is passed to http.Server.
	// Default: 10s.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s.
	ShutdownTimeout time.Duration

	// QueueSize and MicrotaskBudget configure each session loop.
	// Default: loop.DefaultQueueSize and loop.DefaultMicrotaskBudget.
	QueueSize       int
	MicrotaskBudget int

	// CheckHookOrder enables hook order validation on every runtime.
	CheckHookOrder bool

	// Observers are attached to every runtime the server creates.
	Observers []hooks.Observer

	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// Logger is the server logger.
	// Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with default values.
// SECURITY: CheckOrigin enforces same-origin by default.
func DefaultConfig() *Config {
	return &Config{
		Addr:              ":8080",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		QueueSize:         loop.DefaultQueueSize,
		MicrotaskBudget:   loop.DefaultMicrotaskBudget,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	cfg := *c
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = defaults.ReadBufferSize
	}
	if cfg.WriteBufferSize == 0 {
		cfg.WriteBufferSize = defaults.WriteBufferSize
	}
	if cfg.CheckOrigin == nil {
		cfg.CheckOrigin = defaults.CheckOrigin
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.MicrotaskBudget == 0 {
		cfg.MicrotaskBudget = defaults.MicrotaskBudget
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &cfg
}

// SameOriginCheck accepts requests without an Origin header and requests
// whose Origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}
	return originURL.Host == host
}

// AllowOrigins returns a CheckOrigin that accepts same-origin requests and
// the listed origins.
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		return allowed[r.Header.Get("Origin")]
	}
}
