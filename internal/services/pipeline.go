// Package services hosts the pipeline orchestrator: the single entry point
// that turns a natural-language prompt into a validated shell command.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/monitor"
	"github.com/carohq/cmdai/internal/ports"
	"github.com/carohq/cmdai/internal/safety"
	"github.com/carohq/cmdai/internal/selector"
	"github.com/carohq/cmdai/internal/stream"
)

// PipelineService drives one request through selection, streaming
// generation, and validation. Validation never feeds back into generation
// automatically: a caller who wants refinement re-enters the pipeline.
type PipelineService struct {
	Selector  *selector.Selector
	Generator *stream.Generator
	Validator *safety.Validator
	Monitor   *monitor.Monitor
	Observer  ports.Observer
	Logger    ports.Logger

	now func() time.Time
}

// Run executes one pipeline run. Retries against the fallback chain are
// bounded by the chain length and the remaining deadline, whichever is
// exhausted first.
func (s *PipelineService) Run(req domain.PipelineRequest) (domain.PipelineResult, error) {
	if s.Selector == nil || s.Generator == nil || s.Validator == nil || s.Monitor == nil || s.Logger == nil {
		return domain.PipelineResult{}, errors.New("services.PipelineService dependencies not satisfied")
	}
	clock := s.now
	if clock == nil {
		clock = time.Now
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}
	budget := req.Deadline
	if budget <= 0 {
		budget = domain.DefaultPipelineDeadline
	}

	result := domain.PipelineResult{RunID: uuid.NewString()}
	overallDeadline := clock().Add(budget)
	token := stream.NewToken(ctx)
	defer token.Cancel()

	exclude := make(map[string]bool)
	maxAttempts := 0 // resolved after the first selection
	var lastBackend string
	var lastErr error

	for {
		remaining := overallDeadline.Sub(clock())
		if remaining <= 0 {
			break
		}

		sel, err := s.Selector.Select(exclude, req.PreferredBackend)
		if err != nil {
			if errors.Is(err, domain.ErrNoBackendAvailable) && result.Attempts == 0 {
				result.Failure = domain.FailureNoBackend
				s.observeOutcome(result, req.Prompt, "no backend available")
				return result, err
			}
			// Fallbacks exhausted mid-run.
			break
		}
		if maxAttempts == 0 {
			maxAttempts = 1 + len(sel.FallbackChain)
		}
		result.Selection = sel
		result.Attempts++
		lastBackend = sel.Backend
		s.observe(domain.TelemetrySelection, result.RunID, sel.Backend, map[string]interface{}{
			"reason":   sel.Reason,
			"fallback": sel.FallbackChain,
			"attempt":  result.Attempts,
		})

		genReq := domain.GenerationRequest{
			Prompt:   req.Prompt,
			Env:      req.Env,
			Deadline: clock().Add(remaining),
		}

		attemptStart := clock()
		outcome, err := s.consume(result.RunID, sel, genReq, token)
		latency := clock().Sub(attemptStart)

		switch {
		case err == nil && outcome != nil:
			s.Monitor.RecordOutcome(sel.Backend, latency, true)
			return s.finish(result, req, *outcome)

		case errors.Is(err, domain.ErrCancelled):
			s.Monitor.RecordOutcome(sel.Backend, latency, false)
			result.Failure = domain.FailureCancelled
			s.observeOutcome(result, req.Prompt, "cancelled by caller")
			return result, domain.ErrCancelled

		default:
			s.Monitor.RecordOutcome(sel.Backend, latency, false)
			lastErr = err
			var genErr *domain.GenerationError
			if errors.As(err, &genErr) && !genErr.Recoverable {
				result.Failure = domain.FailureNoCommand
				s.observeOutcome(result, req.Prompt, genErr.Message)
				return result, fmt.Errorf("backend %s: %w", sel.Backend, err)
			}
			s.Logger.Warn("generation attempt failed, trying fallback", map[string]interface{}{
				"backend": sel.Backend,
				"error":   err.Error(),
				"attempt": result.Attempts,
			})
			exclude[sel.Backend] = true
		}

		if result.Attempts >= maxAttempts {
			break
		}
	}

	result.Failure = domain.FailureNoCommand
	if lastErr == nil {
		lastErr = errors.New("deadline exhausted before any backend completed")
	}
	s.observeOutcome(result, req.Prompt, lastErr.Error())
	if lastBackend != "" {
		return result, fmt.Errorf("all attempts failed, last backend %s: %w", lastBackend, lastErr)
	}
	return result, lastErr
}

// consume drains one generation's event sequence. Returns the completed
// result, domain.ErrCancelled, or the terminal generation error.
func (s *PipelineService) consume(runID string, sel domain.SelectionResult, req domain.GenerationRequest, token stream.Token) (*domain.GenerationResult, error) {
	events := s.Generator.Generate(sel, req, token)
	for ev := range events {
		switch ev.Kind {
		case domain.EventProgress:
			s.Logger.Debug("generation progress", map[string]interface{}{
				"backend": sel.Backend,
				"percent": ev.Progress.Percent,
				"message": ev.Progress.Message,
			})
		case domain.EventPartial:
			s.Logger.Debug("partial result", map[string]interface{}{
				"backend":    sel.Backend,
				"command":    ev.Partial.Command,
				"confidence": ev.Partial.Confidence,
			})
		case domain.EventCompleted:
			s.observeGeneration(runID, sel.Backend, "completed", ev.Result.Elapsed)
			if ev.Result.Command == "" {
				return nil, &domain.GenerationError{Message: "backend returned an empty command", Recoverable: true}
			}
			result := *ev.Result
			return &result, nil
		case domain.EventError:
			s.observeGeneration(runID, sel.Backend, "error", 0)
			return nil, &domain.GenerationError{Message: ev.Err.Message, Recoverable: ev.Err.Recoverable}
		case domain.EventCancelled:
			s.observeGeneration(runID, sel.Backend, "cancelled", 0)
			return nil, domain.ErrCancelled
		}
	}
	return nil, &domain.GenerationError{Message: "event stream ended without terminal event", Recoverable: true}
}

// finish validates the generated command and assembles the terminal
// result. The validator is never cancelled: once a candidate exists it is
// either validated or discarded outright.
func (s *PipelineService) finish(result domain.PipelineResult, req domain.PipelineRequest, gen domain.GenerationResult) (domain.PipelineResult, error) {
	result.Generation = gen
	result.Validation = s.Validator.Validate(gen.Command, req.Env, req.OverrideCritical)

	s.observe(domain.TelemetryValidation, result.RunID, gen.Backend, map[string]interface{}{
		"risk_level": string(result.Validation.Level),
		"is_safe":    result.Validation.IsSafe,
		"refused":    result.Validation.Refused,
	})

	if result.Validation.Refused {
		result.Failure = domain.FailureUnsafe
		s.observeOutcome(result, req.Prompt, "command judged unsafe")
		return result, nil
	}
	s.observeOutcome(result, req.Prompt, "ok")
	return result, nil
}

func (s *PipelineService) observe(kind domain.TelemetryKind, runID, backend string, fields map[string]interface{}) {
	if s.Observer == nil {
		return
	}
	s.Observer.Observe(domain.TelemetryEvent{
		Kind:      kind,
		RunID:     runID,
		Timestamp: time.Now(),
		Backend:   backend,
		Fields:    fields,
	})
}

func (s *PipelineService) observeGeneration(runID, backend, terminal string, elapsed time.Duration) {
	s.observe(domain.TelemetryGeneration, runID, backend, map[string]interface{}{
		"terminal": terminal,
		"elapsed":  elapsed.String(),
	})
}

func (s *PipelineService) observeOutcome(result domain.PipelineResult, prompt, detail string) {
	s.observe(domain.TelemetryOutcome, result.RunID, result.Selection.Backend, map[string]interface{}{
		"failure":  string(result.Failure),
		"detail":   detail,
		"attempts": result.Attempts,
		"prompt":   prompt,
		"command":  result.Generation.Command,
		"risk":     string(result.Validation.Level),
		"refused":  result.Validation.Refused,
		"latency":  result.Generation.Elapsed.Milliseconds(),
		"tokens":   result.Generation.TokenCount,
	})
}

// Compile-time interface compliance check
var _ domain.PipelineService = (*PipelineService)(nil)
