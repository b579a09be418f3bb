package domain

import "time"

// GenerationRequest carries everything a backend needs to produce a command.
// It is immutable once constructed and owned by the orchestrator for the
// duration of one pipeline run.
type GenerationRequest struct {
	Prompt       string
	Env          EnvironmentSnapshot
	PriorAttempt string // previous candidate when the caller re-enters for refinement
	Deadline     time.Time
}

// StreamEventKind tags the variants of StreamEvent.
type StreamEventKind string

const (
	EventProgress  StreamEventKind = "progress"
	EventPartial   StreamEventKind = "partial"
	EventCompleted StreamEventKind = "completed"
	EventError     StreamEventKind = "error"
	EventCancelled StreamEventKind = "cancelled"
)

// StreamEvent is one element of a generation's ordered event sequence.
// Exactly one field matching Kind is populated. The sequence for a single
// generation is terminated by exactly one of Completed/Error/Cancelled.
type StreamEvent struct {
	Kind     StreamEventKind
	Progress *ProgressUpdate
	Partial  *PartialResult
	Result   *GenerationResult
	Err      *GenerationError
}

// ProgressUpdate reports advancement of an in-flight generation.
type ProgressUpdate struct {
	Percent int
	Message string
}

// PartialResult carries an intermediate command candidate.
type PartialResult struct {
	Command    string
	Confidence float64
}

// Terminal reports whether the event ends the sequence.
func (e StreamEvent) Terminal() bool {
	switch e.Kind {
	case EventCompleted, EventError, EventCancelled:
		return true
	default:
		return false
	}
}

// ProgressEvent builds a progress StreamEvent.
func ProgressEvent(percent int, message string) StreamEvent {
	return StreamEvent{Kind: EventProgress, Progress: &ProgressUpdate{Percent: percent, Message: message}}
}

// PartialEvent builds a partial-result StreamEvent.
func PartialEvent(command string, confidence float64) StreamEvent {
	return StreamEvent{Kind: EventPartial, Partial: &PartialResult{Command: command, Confidence: confidence}}
}

// CompletedEvent builds the successful terminal StreamEvent.
func CompletedEvent(result GenerationResult) StreamEvent {
	return StreamEvent{Kind: EventCompleted, Result: &result}
}

// ErrorEvent builds the failing terminal StreamEvent.
func ErrorEvent(message string, recoverable bool) StreamEvent {
	return StreamEvent{Kind: EventError, Err: &GenerationError{Message: message, Recoverable: recoverable}}
}

// CancelledEvent builds the caller-initiated terminal StreamEvent.
func CancelledEvent() StreamEvent {
	return StreamEvent{Kind: EventCancelled}
}

// GenerationResult is the final output of one generation. Immutable; it
// becomes the input to the safety validator.
type GenerationResult struct {
	Command     string
	Explanation string
	Confidence  float64
	Backend     string
	Elapsed     time.Duration
	TokenCount  int
}
