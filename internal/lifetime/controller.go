package lifetime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/upbit-ticker/internal/connection"
)

// Config bounds a run.
type Config struct {
	WSURL           string
	Duration        time.Duration // 0 runs until the parent context is cancelled
	ShutdownTimeout time.Duration
	ExitOnClose     bool // return as soon as the stream ends instead of waiting out Duration
}

// Outcome describes how a run ended.
type Outcome struct {
	Result      connection.Result
	TimedOut    bool // Duration elapsed
	Interrupted bool // parent context cancelled
}

// Controller owns one run of the feed.
type Controller struct {
	cfg        Config
	manager    connection.Manager
	resolver   Resolver
	newHandler func() connection.FrameHandler
	logger     *slog.Logger
}

// New creates a controller. newHandler is called once per submitted
// connection, so every connection gets its own display state.
func New(cfg Config, manager connection.Manager, resolver Resolver, newHandler func() connection.FrameHandler, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	return &Controller{
		cfg:        cfg,
		manager:    manager,
		resolver:   resolver,
		newHandler: newHandler,
		logger:     logger,
	}
}

// Run streams until the duration elapses, the parent context is cancelled,
// or (with ExitOnClose) the stream ends. Ending for any of those reasons is
// not an error; only startup failures are returned.
func (c *Controller) Run(ctx context.Context) (Outcome, error) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if c.cfg.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.Duration)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	if err := c.manager.Start(runCtx); err != nil {
		return Outcome{}, fmt.Errorf("start connection manager: %w", err)
	}
	stopped := false
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		stopCtx, stopCancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
		defer stopCancel()
		if err := c.manager.Stop(stopCtx); err != nil {
			c.logger.Warn("connection manager did not stop cleanly", "error", err)
		}
	}
	defer stop()

	sub, err := c.resolver.Resolve(runCtx)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolve subscription: %w", err)
	}

	pending, err := c.manager.Submit(runCtx, connection.Request{
		URL:          c.cfg.WSURL,
		Subscription: sub.String(),
		Handler:      c.newHandler(),
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("submit connection request: %w", err)
	}

	c.logger.Info("feed started",
		"request_id", pending.ID(),
		"url", c.cfg.WSURL,
		"subscription", sub.Summary(),
		"duration", c.cfg.Duration,
	)

	var out Outcome
	resolved := false

	select {
	case <-pending.Done():
		res, _ := pending.Wait(context.Background())
		out.Result = res
		resolved = true
		c.logResult(res)
		if !c.cfg.ExitOnClose {
			<-runCtx.Done()
		}
	case <-runCtx.Done():
	}

	out.TimedOut = errors.Is(runCtx.Err(), context.DeadlineExceeded)
	out.Interrupted = ctx.Err() != nil

	// Cancelling closes the socket, so the session ends as Terminated
	cancel()
	stop()

	if !resolved {
		waitCtx, waitCancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
		defer waitCancel()
		res, err := pending.Wait(waitCtx)
		if err != nil {
			c.logger.Warn("session did not finish before shutdown timeout", "request_id", pending.ID())
		} else {
			c.logResult(res)
		}
		out.Result = res
	}

	c.logger.Info("feed finished",
		"state", out.Result.State.String(),
		"frames", out.Result.Frames,
		"timed_out", out.TimedOut,
		"interrupted", out.Interrupted,
	)

	return out, nil
}

func (c *Controller) logResult(res connection.Result) {
	if res.Err != nil {
		c.logger.Warn("feed session ended with error",
			"request_id", res.RequestID,
			"state", res.State.String(),
			"error", res.Err,
		)
		return
	}
	c.logger.Info("feed session ended",
		"request_id", res.RequestID,
		"state", res.State.String(),
	)
}
