package domain

import (
	"context"
	"time"
)

// PipelineRequest is the orchestrator's sole entry-point payload.
// Cancelling Context is the caller-initiated stop; deadline expiry is
// reported as a timeout error instead.
type PipelineRequest struct {
	Context          context.Context
	Prompt           string
	Env              EnvironmentSnapshot
	Deadline         time.Duration // overall budget including fallback retries
	OverrideCritical bool
	PreferredBackend string // optional config/CLI override, empty for ranked choice
}

// PipelineResult pairs one GenerationResult with exactly one
// ValidationResult, plus run bookkeeping.
type PipelineResult struct {
	RunID      string
	Generation GenerationResult
	Validation ValidationResult
	Selection  SelectionResult
	Attempts   int
	Failure    FailureClass
}

// PipelineService exposes the use-case boundary for one pipeline run.
type PipelineService interface {
	Run(req PipelineRequest) (PipelineResult, error)
}
