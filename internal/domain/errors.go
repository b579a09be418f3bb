package domain

import (
	"errors"
	"fmt"
)

// ErrNoBackendAvailable reports that every configured backend is
// unavailable or excluded by policy. Fatal to the pipeline run.
var ErrNoBackendAvailable = errors.New("no backend available")

// ErrCancelled is the normal terminal outcome of a caller-initiated
// cancellation. Not a failure.
var ErrCancelled = errors.New("cancelled by caller")

// GenerationError describes a failed generation attempt. Recoverable
// errors trigger one selector retry against the fallback chain;
// unrecoverable ones surface immediately.
type GenerationError struct {
	Message     string
	Recoverable bool
}

func (e *GenerationError) Error() string {
	if e.Recoverable {
		return fmt.Sprintf("generation failed (recoverable): %s", e.Message)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

// FailureClass distinguishes user-visible pipeline failure modes.
// Callers must present these differently.
type FailureClass string

const (
	// FailureNone marks a successful run.
	FailureNone FailureClass = ""
	// FailureNoBackend means no backend could be reached.
	FailureNoBackend FailureClass = "no_backend"
	// FailureNoCommand means the model produced no usable command.
	FailureNoCommand FailureClass = "no_command"
	// FailureUnsafe means the command was judged unsafe and refused.
	FailureUnsafe FailureClass = "unsafe"
	// FailureCancelled means the caller cancelled the run.
	FailureCancelled FailureClass = "cancelled"
)
