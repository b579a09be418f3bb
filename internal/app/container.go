// Package app wires the pipeline core to its infrastructure adapters.
package app

import (
	"context"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/infrastructure/backends"
	"github.com/carohq/cmdai/internal/infrastructure/config"
	"github.com/carohq/cmdai/internal/infrastructure/contextinfo"
	"github.com/carohq/cmdai/internal/infrastructure/executor"
	"github.com/carohq/cmdai/internal/infrastructure/history"
	"github.com/carohq/cmdai/internal/infrastructure/telemetry"
	"github.com/carohq/cmdai/internal/monitor"
	"github.com/carohq/cmdai/internal/pkg/logger"
	"github.com/carohq/cmdai/internal/ports"
	"github.com/carohq/cmdai/internal/safety"
	"github.com/carohq/cmdai/internal/selector"
	"github.com/carohq/cmdai/internal/services"
	"github.com/carohq/cmdai/internal/stream"
)

// Container holds the assembled dependency graph. The CLI is its only
// consumer; tests assemble smaller graphs by hand.
type Container struct {
	Config    domain.Config
	Pipeline  *services.PipelineService
	Registry  *backends.Registry
	Monitor   *monitor.Monitor
	Prober    *monitor.Prober
	Validator *safety.Validator
	Collector ports.ContextCollector
	Executor  ports.CommandExecutor
	History   ports.HistoryRepository
	Logger    ports.Logger

	stopProber context.CancelFunc
}

// BuildContainer constructs the dependency graph from configuration.
// configPath overrides the default config location when non-empty.
func BuildContainer(ctx context.Context, configPath string, verbose bool) (*Container, error) {
	log := logger.New(verbose)

	cfg, err := config.NewFileLoader(configPath).Load(ctx)
	if err != nil {
		return nil, err
	}

	registry, err := backends.NewRegistry(cfg.Backends)
	if err != nil {
		return nil, err
	}

	mon := monitor.New(cfg.Monitor.WindowSize)
	sel := selector.New(registry.Descriptors(), mon, cfg.Selection)
	gen := stream.NewGenerator(registry.Resolve, cfg.Generation.GracePeriod, log)

	validator, err := safety.NewValidator(cfg.Safety, log)
	if err != nil {
		return nil, err
	}

	var historyStore ports.HistoryRepository
	observers := telemetry.MultiObserver{telemetry.NewLogObserver(log)}
	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore("")
		if err != nil {
			log.Warn("history disabled, database unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			historyStore = store
			observers = append(observers, telemetry.NewHistoryObserver(store, log))
		}
	}

	pipeline := &services.PipelineService{
		Selector:  sel,
		Generator: gen,
		Validator: validator,
		Monitor:   mon,
		Observer:  observers,
		Logger:    log,
	}

	proberCtx, stopProber := context.WithCancel(ctx)
	prober := monitor.NewProber(mon, registry.All(), cfg.Monitor.ProbeInterval, log)
	prober.Start(proberCtx)

	return &Container{
		Config:     cfg,
		Pipeline:   pipeline,
		Registry:   registry,
		Monitor:    mon,
		Prober:     prober,
		Validator:  validator,
		Collector:  contextinfo.NewCollector(),
		Executor:   executor.NewLocalExecutor(cfg.Execution.Shell),
		History:    historyStore,
		Logger:     log,
		stopProber: stopProber,
	}, nil
}

// Close stops background work and releases resources.
func (c *Container) Close() {
	if c.stopProber != nil {
		c.stopProber()
	}
	if store, ok := c.History.(*history.SQLiteStore); ok && store != nil {
		_ = store.Close()
	}
}
