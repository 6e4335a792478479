package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/upbit-ticker/internal/api"
	"github.com/rickgao/upbit-ticker/internal/config"
	"github.com/rickgao/upbit-ticker/internal/connection"
	"github.com/rickgao/upbit-ticker/internal/display"
	"github.com/rickgao/upbit-ticker/internal/lifetime"
	"github.com/rickgao/upbit-ticker/internal/market"
	"github.com/rickgao/upbit-ticker/internal/metrics"
	"github.com/rickgao/upbit-ticker/internal/model"
	"github.com/rickgao/upbit-ticker/internal/router"
	"github.com/rickgao/upbit-ticker/internal/version"
)

func watchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("starting tickerboard",
		"version", version.Version,
		"commit", version.Commit,
		"config", cmd.String("config"),
	)

	return runFeed(ctx, cfg, cmd.Root().Writer, logger)
}

// runFeed wires the feed for one run and blocks until it ends. The metrics
// server, when enabled, lives exactly as long as the feed.
func runFeed(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	loc, err := cfg.Display.Location()
	if err != nil {
		return err
	}

	m := metrics.New()
	manager := connection.NewManager(connectionConfig(cfg.Connections), logger,
		connection.WithFrameHook(m.ObserveFrame),
		connection.WithResultHook(m.ObserveSession),
	)

	newHandler := func() connection.FrameHandler {
		board := display.NewBoard(out, cfg.Display.Rows,
			display.WithLocation(loc),
			display.WithClearScreen(cfg.Display.ShouldClear()),
			display.WithBoardLogger(logger),
		)
		return router.NewRouter(board, logger, router.WithObserver(m))
	}

	controller := lifetime.New(lifetime.Config{
		WSURL:           cfg.API.WSURL,
		Duration:        cfg.Lifetime.RunDuration(),
		ShutdownTimeout: cfg.Lifetime.ShutdownTimeout,
		ExitOnClose:     cfg.Lifetime.ExitOnClose,
	}, manager, newResolver(cfg, logger), newHandler, logger)

	g, gctx := errgroup.WithContext(ctx)
	feedCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	if cfg.Metrics.Port > 0 {
		srv := metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, m.Registry, logger)
		srv.AddComponent("connections", connectionHealth(manager))
		if err := srv.Listen(); err != nil {
			return err
		}
		g.Go(func() error {
			return srv.Run(feedCtx)
		})
	}

	g.Go(func() error {
		defer stopServer()
		outcome, err := controller.Run(feedCtx)
		if err != nil {
			return err
		}
		logger.Info("tickerboard stopped",
			"state", outcome.Result.State.String(),
			"frames", outcome.Result.Frames,
			"timed_out", outcome.TimedOut,
			"interrupted", outcome.Interrupted,
		)
		return nil
	})

	return g.Wait()
}

func connectionConfig(cfg config.ConnectionsConfig) connection.ManagerConfig {
	return connection.ManagerConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
		Client: connection.ClientConfig{
			HandshakeTimeout: cfg.HandshakeTimeout,
			PingInterval:     cfg.PingInterval,
			PingTimeout:      cfg.PingTimeout,
			WriteTimeout:     cfg.WriteTimeout,
			BufferSize:       cfg.BufferSize,
		},
	}
}

func newAPIClient(cfg config.APIConfig, logger *slog.Logger) *api.Client {
	return api.NewClient(cfg.RestURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Timeout),
		api.WithRetries(cfg.MaxRetries, cfg.RetryBackoff),
		api.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)
}

// subscriptionTemplate is the configured subscription before any catalog lookup.
func subscriptionTemplate(cfg config.SubscriptionConfig) model.SubscriptionRequest {
	return model.SubscriptionRequest{
		Ticket:         lifetime.Ticket(cfg.Ticket),
		Type:           cfg.Type,
		Codes:          cfg.Codes,
		IsOnlySnapshot: cfg.IsOnlySnapshot,
		IsOnlyRealtime: cfg.IsOnlyRealtime,
	}
}

func newResolver(cfg *config.Config, logger *slog.Logger) lifetime.Resolver {
	template := subscriptionTemplate(cfg.Subscription)
	if !cfg.Subscription.AllMarkets {
		return lifetime.Static(template)
	}
	fetcher := market.NewFetcher(newAPIClient(cfg.API, logger), market.WithFetcherLogger(logger))
	return lifetime.AllMarkets(fetcher, cfg.Subscription.Quote, template)
}

// connectionHealth reports healthy while a session is streaming.
func connectionHealth(manager connection.Manager) metrics.HealthFunc {
	return func() metrics.ComponentHealth {
		stats := manager.Stats()
		status := metrics.StatusDegraded
		switch {
		case stats.States[connection.StateStreaming.String()] > 0:
			status = metrics.StatusHealthy
		case stats.Active == 0 && stats.Failed > 0:
			status = metrics.StatusUnhealthy
		}
		return metrics.ComponentHealth{Status: status, Details: stats}
	}
}
