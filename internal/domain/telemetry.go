package domain

import "time"

// TelemetryKind tags structured events emitted by the pipeline core.
type TelemetryKind string

const (
	TelemetrySelection  TelemetryKind = "selection"
	TelemetryGeneration TelemetryKind = "generation"
	TelemetryValidation TelemetryKind = "validation"
	TelemetryOutcome    TelemetryKind = "outcome"
)

// TelemetryEvent is handed to the injected observer so the surrounding
// application can record it. The core never writes to stdout or files
// directly.
type TelemetryEvent struct {
	Kind      TelemetryKind
	RunID     string
	Timestamp time.Time
	Backend   string
	Fields    map[string]interface{}
}
