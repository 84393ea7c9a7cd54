package main

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-graphview/pkg/config"
	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/graphview"
	"github.com/dd0wney/cluso-graphview/pkg/health"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/metrics"
	"github.com/dd0wney/cluso-graphview/pkg/render"
	"github.com/dd0wney/cluso-graphview/pkg/source"
	"github.com/dd0wney/cluso-graphview/pkg/tui"
)

const watchDebounce = 250 * time.Millisecond

func tuiCmd() *cobra.Command {
	var (
		metricsAddr string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:     "tui [fixture]",
		Aliases: []string{"view", "explore"},
		Short:   "Explore the graph interactively in the terminal",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Source.Kind = source.KindFixture
				cfg.Source.Path = args[0]
			}
			if cmd.Flags().Changed("watch") {
				cfg.Source.Watch = watch
			}
			if metricsAddr != "" {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Addr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the fixture when the file changes")
	return cmd
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	// The screen owns stderr, so logs go to a file
	logger, closer, err := logging.NewFileLogger(cfg.Logging.File, cfg.LogLevel(), cfg.LogFormat())
	if err != nil {
		return err
	}
	defer closer.Close()
	logging.SetDefaultLogger(logger)

	src, err := source.Open(ctx, cfg.Source, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	registry := metrics.DefaultRegistry()
	fetcher := detail.Wrap("detail-"+string(cfg.Source.Kind), src, cfg.Detail.Breaker, logger)
	term := render.NewTermSurface()

	view := graphview.New(fetcher, cfg.View(),
		graphview.WithLogger(logger),
		graphview.WithSurface(term),
		graphview.WithMetrics(registry),
	)
	defer view.Close()

	if err := view.LoadFrom(ctx, src); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	opts := []tui.Option{
		tui.WithSource(src),
		tui.WithFPS(cfg.Frame.FPS),
		tui.WithLogger(logger),
		tui.WithReloadRecorder(registry),
	}

	if cfg.Source.Watch && cfg.Source.Kind == source.KindFixture {
		w, err := source.NewWatcher(cfg.Source.Path, watchDebounce, logger)
		if err != nil {
			return err
		}
		changes := make(chan struct{}, 1)
		g.Go(func() error {
			return w.Run(gctx, func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			})
		})
		opts = append(opts, tui.WithChanges(changes))
	}

	if cfg.Metrics.Enabled {
		checker := probes(view, src, fetcher)
		g.Go(func() error {
			return registry.Serve(gctx, cfg.Metrics.Addr, cfg.Metrics.Interval, checker, logger)
		})
	}

	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(tui.New(view, term, opts...),
			tea.WithAltScreen(),
			tea.WithMouseAllMotion(),
			tea.WithContext(gctx),
		)
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() == nil {
			// Killed by a failing sibling; report that error instead
			return nil
		}
		return err
	})

	return g.Wait()
}

// probes registers readiness on the loaded graph and the source connection,
// and liveness on process memory
func probes(view *graphview.View, src source.Source, fetcher detail.Fetcher) *health.Checker {
	checker := health.NewChecker()
	checker.RegisterReadiness("graph", health.ErrorCheck("graph", view.Healthy))
	if p, ok := src.(interface{ Ping(context.Context) error }); ok {
		checker.RegisterReadiness("source", health.PingCheck("source", p.Ping))
	}
	if b, ok := fetcher.(*detail.BreakerFetcher); ok {
		checker.Register("detail_breaker", health.BreakerCheck(b.State))
	}
	checker.RegisterLiveness("memory", health.MemoryCheck(health.RuntimeMemory))
	return checker
}
