// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// (Hexagonal) pattern, these interfaces let the pipeline core stay
// independent of concrete inference engines, storage, and CLI frameworks.
//
// Key architectural concepts:
//   - Ports: interfaces defined here (e.g., Backend, Observer)
//   - Adapters: concrete implementations in the infrastructure layer
//   - Dependency inversion: the core depends on abstractions only
package ports

import (
	"context"

	"github.com/carohq/cmdai/internal/domain"
)

// Backend is the capability interface every concrete inference engine
// implements once: "given a request, produce a command." The core consumes
// engines exclusively through this interface.
type Backend interface {
	// Descriptor reports the engine's immutable identity.
	Descriptor() domain.BackendDescriptor
	// Probe checks availability without issuing a real generation.
	Probe(ctx context.Context) bool
	// Invoke produces the ordered event sequence for one generation.
	// The returned channel is closed after exactly one terminal event.
	// Implementations must observe ctx at every suspension point.
	Invoke(ctx context.Context, req domain.GenerationRequest) <-chan domain.StreamEvent
}

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.cmdai/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ContextCollector gathers the environment snapshot (cwd, shell, platform,
// user) that enriches prompts and informs the context analyzer.
type ContextCollector interface {
	Collect(ctx context.Context) (domain.EnvironmentSnapshot, error)
}

// Observer receives structured telemetry events (selection decision,
// generation terminal event, validation verdict). The core emits and never
// records; the surrounding application owns persistence and logging.
type Observer interface {
	Observe(event domain.TelemetryEvent)
}

// HistoryRepository persists completed pipeline runs.
type HistoryRepository interface {
	Save(record domain.HistoryRecord) error
	Records(limit int, search string) ([]domain.HistoryRecord, error)
	Stats() (domain.HistoryStats, error)
	Clear() error
}

// CommandExecutor runs a validator-cleared command in the configured shell.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// ConfirmationPrompter walks the user through the confirmations a verdict
// requires before execution.
type ConfirmationPrompter interface {
	Confirm(confirmation domain.ConfirmationType, verdict domain.ValidationResult, command string) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external
// services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
