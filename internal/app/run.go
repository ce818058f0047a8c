package app

import (
	"context"
	"errors"
	"time"

	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/tweak"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Run drives the program until ctx is cancelled or MaxTicks transactions have
// run. The debug channel sources and the HTTP server run alongside the tick
// loop and stop with it.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := engine.Options{Clock: a.clock, Observer: a.metrics}
	if a.config.Debug.Enabled {
		opts.Injector = tweak.NewInjector(a.tweaks, a.program.Targets, a.metrics)
	}
	rt := engine.New(a.program.Program, opts)

	g, gctx := errgroup.WithContext(ctx)
	a.startSources(gctx, g)
	if a.config.HTTPPort > 0 {
		g.Go(func() error { return a.serveHTTP(gctx) })
	}
	g.Go(func() error {
		defer cancel()
		return a.tickLoop(gctx, rt)
	})

	a.logger.Info("Starting program.",
		"nodes", a.program.Program.Len(),
		"tweak_targets", len(a.program.Targets),
		"tick_interval", a.config.TickInterval,
	)
	err := g.Wait()
	a.logger.Info("Program stopped.", "ticks", rt.Ticks(), "transaction_time", rt.TransactionTime())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// tickLoop runs one transaction per limiter token.
func (a *App) tickLoop(ctx context.Context, rt *engine.Runtime) error {
	limiter := newLimiter(a.config.TickInterval)
	for {
		if a.config.MaxTicks > 0 && rt.Ticks() >= a.config.MaxTicks {
			return nil
		}
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		rt.RunTransaction(ctx)
	}
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// startSources feeds the debug channel. A failing source is logged and the
// program keeps running without it.
func (a *App) startSources(ctx context.Context, g *errgroup.Group) {
	dbg := a.config.Debug
	if !dbg.Enabled {
		return
	}
	logger := ctxlog.FromContext(ctx)

	if dbg.Serial != "" {
		g.Go(func() error {
			r, err := tweak.OpenSerial(dbg.Serial)
			if err != nil {
				logger.Warn("Debug serial source unavailable.", "path", dbg.Serial, "error", err)
				return nil
			}
			if err := tweak.Pump(ctx, r, a.tweaks); err != nil {
				logger.Warn("Debug serial source stopped.", "path", dbg.Serial, "error", err)
			}
			return nil
		})
	}

	if dbg.SocketURL != "" {
		src := &tweak.SocketSource{
			URL:                dbg.SocketURL,
			Namespace:          dbg.SocketNamespace,
			Event:              dbg.SocketEvent,
			InsecureSkipVerify: dbg.InsecureSkipVerify,
		}
		g.Go(func() error {
			if err := src.Run(ctx, a.tweaks); err != nil {
				logger.Warn("Debug socket source stopped.", "url", dbg.SocketURL, "error", err)
			}
			return nil
		})
	}
}
