package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/hookscope/internal/config"
	"github.com/vango-dev/hookscope/pkg/hooks"
	"github.com/vango-dev/hookscope/pkg/metrics"
	"github.com/vango-dev/hookscope/pkg/server"
	"github.com/vango-dev/hookscope/pkg/tracing"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the counter over HTTP and WebSocket",
		Long: `Serve the counter component. Each WebSocket connection gets its own
host and event loop. GET /render returns a one-shot view.

Routes:
  GET /healthz   session and host counts
  GET /render    render once and return the view
  GET /ws        interactive session
  GET /metrics   Prometheus metrics (when enabled)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(counterApp, serverConfig(cfg))
			w := cmd.OutOrStdout()
			success(w, "Listening on http://%s", cfg.Server.Addr)
			if cfg.Metrics.Enabled {
				info(w, "Metrics at http://%s/metrics", cfg.Server.Addr)
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")

	return cmd
}

// serverConfig maps the file configuration onto a server.Config, attaching
// the metrics and tracing observers that are enabled.
func serverConfig(cfg *config.Config) *server.Config {
	logger := cfg.Logger(os.Stderr)

	sc := server.DefaultConfig()
	sc.Addr = cfg.Server.Addr
	sc.QueueSize = cfg.Loop.QueueSize
	sc.MicrotaskBudget = cfg.Loop.MicrotaskBudget
	sc.CheckHookOrder = cfg.Debug
	sc.Logger = logger
	if len(cfg.Server.AllowedOrigins) > 0 {
		sc.CheckOrigin = server.AllowOrigins(cfg.Server.AllowedOrigins...)
	}

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sc.Observers = append(sc.Observers, metrics.New(
			metrics.WithRegistry(registry),
			metrics.WithNamespace(cfg.Metrics.Namespace),
		))
		sc.Gatherer = registry
	}
	if cfg.Tracing.Enabled {
		sc.Observers = append(sc.Observers, tracing.New(
			tracing.WithTracerName(cfg.Tracing.TracerName),
			tracing.WithBaseContext(context.Background()),
		))
	}
	if cfg.Debug {
		sc.Observers = append(sc.Observers, hooks.NewLogObserver(logger))
	}
	return sc
}
