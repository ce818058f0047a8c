package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/xodrun/internal/builder"
	"github.com/vk/xodrun/internal/clock"
	"github.com/vk/xodrun/internal/config"
	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/metrics"
	"github.com/vk/xodrun/internal/registry"
	"github.com/vk/xodrun/internal/tweak"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	config    *Config
	logger    *slog.Logger
	registry  *registry.Registry
	program   *builder.Result
	metrics   *metrics.Collector
	tweaks    *tweak.LineBuffer
	clock     clock.Source
	sessionID string
}

// NewApp is the constructor for the main application. Logs go to logW and
// watch lines to outW. When no modules are given the core libraries are
// registered. The program is loaded and built before NewApp returns.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	sessionID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("session_id", sessionID)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	prog, err := loader.Load(ctx, cfg.ProgramPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	logger.Debug("Program loaded and translated into unified model.", "nodes", len(prog.Nodes))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "patches", reg.Len())

	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	res, err := builder.Build(ctx, prog, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}

	return &App{
		config:    cfg,
		logger:    logger,
		registry:  reg,
		program:   res,
		metrics:   metrics.New(true),
		tweaks:    tweak.NewLineBuffer(cfg.Debug.QueueSize),
		clock:     clock.NewSystem(),
		sessionID: sessionID,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Program returns the built program.
func (a *App) Program() *builder.Result {
	return a.program
}

// Metrics returns the application's metrics collector.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}

// Tweaks returns the buffer the debug channel feeds. Writing a command line
// to it has the same effect as receiving it on a channel source.
func (a *App) Tweaks() *tweak.LineBuffer {
	return a.tweaks
}

// SessionID identifies this run in logs.
func (a *App) SessionID() string {
	return a.sessionID
}
