// Package telemetry provides the observer adapters the pipeline reports
// into: structured logging, history persistence, and fan-out composition.
package telemetry

import (
	"time"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// LogObserver forwards every telemetry event to the structured logger.
type LogObserver struct {
	Logger ports.Logger
}

func NewLogObserver(logger ports.Logger) *LogObserver {
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) Observe(event domain.TelemetryEvent) {
	if o.Logger == nil {
		return
	}
	fields := map[string]interface{}{
		"run_id":  event.RunID,
		"backend": event.Backend,
	}
	for k, v := range event.Fields {
		fields[k] = v
	}
	o.Logger.Debug("telemetry "+string(event.Kind), fields)
}

// HistoryObserver persists failed and refused runs as history records.
// Successful runs are saved by the CLI after the execute decision, where
// the executed flag and exit code are known.
type HistoryObserver struct {
	Repo   ports.HistoryRepository
	Logger ports.Logger
}

func NewHistoryObserver(repo ports.HistoryRepository, logger ports.Logger) *HistoryObserver {
	return &HistoryObserver{Repo: repo, Logger: logger}
}

func (o *HistoryObserver) Observe(event domain.TelemetryEvent) {
	if o.Repo == nil || event.Kind != domain.TelemetryOutcome {
		return
	}
	if stringField(event.Fields, "failure") == "" {
		return
	}
	record := domain.HistoryRecord{
		RunID:      event.RunID,
		Timestamp:  event.Timestamp,
		Prompt:     stringField(event.Fields, "prompt"),
		Command:    stringField(event.Fields, "command"),
		Backend:    event.Backend,
		RiskLevel:  domain.RiskLevel(stringField(event.Fields, "risk")),
		Refused:    boolField(event.Fields, "refused"),
		Latency:    time.Duration(int64Field(event.Fields, "latency")) * time.Millisecond,
		TokenCount: int(int64Field(event.Fields, "tokens")),
	}
	if err := o.Repo.Save(record); err != nil && o.Logger != nil {
		o.Logger.Warn("failed to persist run history", map[string]interface{}{
			"run_id": event.RunID,
			"error":  err.Error(),
		})
	}
}

// MultiObserver fans one event out to several observers in order.
type MultiObserver []ports.Observer

func (m MultiObserver) Observe(event domain.TelemetryEvent) {
	for _, o := range m {
		if o != nil {
			o.Observe(event)
		}
	}
}

// NopObserver drops everything. Useful default for tests.
type NopObserver struct{}

func (NopObserver) Observe(domain.TelemetryEvent) {}

func stringField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func boolField(fields map[string]interface{}, key string) bool {
	if v, ok := fields[key].(bool); ok {
		return v
	}
	return false
}

func int64Field(fields map[string]interface{}, key string) int64 {
	switch v := fields[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

var (
	_ ports.Observer = (*LogObserver)(nil)
	_ ports.Observer = (*HistoryObserver)(nil)
	_ ports.Observer = (MultiObserver)(nil)
	_ ports.Observer = NopObserver{}
)
