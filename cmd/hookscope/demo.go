package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hookscope/internal/config"
	"github.com/vango-dev/hookscope/pkg/component"
	"github.com/vango-dev/hookscope/pkg/hooks"
	"github.com/vango-dev/hookscope/pkg/loop"
	"github.com/vango-dev/hookscope/pkg/server"
	"github.com/vango-dev/hookscope/pkg/signal"
)

func demoCmd(load func() (*config.Config, error)) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render the counter headlessly",
		Long: `Render the counter component on an event loop, dispatch "inc" a
number of times, and print each view as JSON.

Examples:
  hookscope demo
  hookscope demo --steps 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), cfg, steps)
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 3, "Number of inc actions to dispatch")

	return cmd
}

func runDemo(ctx context.Context, w io.Writer, cfg *config.Config, steps int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := cfg.Logger(io.Discard)
	if cfg.Debug {
		logger = cfg.Logger(os.Stderr)
	}

	l, err := loop.New(
		loop.WithLogger(logger),
		loop.WithQueueSize(cfg.Loop.QueueSize),
		loop.WithMicrotaskBudget(cfg.Loop.MicrotaskBudget),
	)
	if err != nil {
		return err
	}
	runErr := make(chan error, 1)
	go func() { runErr <- l.Run(ctx) }()

	rt := hooks.NewRuntime(
		hooks.WithProvider(signal.Provider()),
		hooks.WithScheduler(l),
		hooks.WithLogger(logger),
		hooks.WithHookOrderCheck(cfg.Debug),
	)
	actions := server.NewActions()
	app := component.New(actions.Bind(counterApp), component.WithRuntime(rt))

	pass := 0
	render := func(before func() error) error {
		var passErr error
		if err := l.Do(ctx, func() {
			defer hooks.Recover(&passErr)
			if before != nil {
				if passErr = before(); passErr != nil {
					return
				}
			}
			view := app.Render()
			pass++
			data, err := json.Marshal(view)
			if err != nil {
				passErr = err
				return
			}
			fmt.Fprintf(w, "pass %d: %s\n", pass, data)
		}); err != nil {
			return err
		}
		return passErr
	}

	// The second pass observes the state set by the mount effect.
	if err := render(nil); err != nil {
		return err
	}
	if err := render(nil); err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		if err := render(func() error { return actions.Dispatch("inc", nil) }); err != nil {
			return err
		}
	}

	if err := l.Do(ctx, func() { app.Dispose() }); err != nil {
		return err
	}
	success(w, "Rendered %d passes", pass)
	info(w, "Actions: %v", actions.Names())
	info(w, "Live hosts after dispose: %d", rt.Stats().Hosts)

	cancel()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
