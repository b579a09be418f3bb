// Package stream drives one backend invocation as a cancellable, ordered
// sequence of progress/partial/terminal events. It owns the cancellation
// handshake: a stop request always yields a Cancelled terminal event
// within the grace period, even if the backend never responds.
package stream

import (
	"context"
	"time"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// Generator runs generations against a resolved backend. The event
// sequence follows the state machine
//
//	Idle -> Running -> {Completed | Error | Cancelled}
//
// with exactly one terminal event per generation.
type Generator struct {
	resolve   func(name string) (ports.Backend, bool)
	grace     time.Duration
	estimator *TokenEstimator
	logger    ports.Logger
	now       func() time.Time
}

// NewGenerator builds a generator. resolve maps a selected backend name to
// its adapter; grace <= 0 falls back to the documented default.
func NewGenerator(resolve func(name string) (ports.Backend, bool), grace time.Duration, logger ports.Logger) *Generator {
	if grace <= 0 {
		grace = domain.DefaultGracePeriod
	}
	return &Generator{
		resolve:   resolve,
		grace:     grace,
		estimator: NewTokenEstimator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Generate starts one generation and returns its event channel. The
// channel is closed after the single terminal event. A deadline elapsing
// with no terminal output yields a recoverable timeout Error, never
// Cancelled; Cancelled is reserved for stops requested through tok.
func (g *Generator) Generate(sel domain.SelectionResult, req domain.GenerationRequest, tok Token) <-chan domain.StreamEvent {
	out := make(chan domain.StreamEvent, 8)
	go g.run(sel, req, tok, out)
	return out
}

func (g *Generator) run(sel domain.SelectionResult, req domain.GenerationRequest, tok Token, out chan<- domain.StreamEvent) {
	defer close(out)
	start := g.now()

	backend, ok := g.resolve(sel.Backend)
	if !ok {
		out <- domain.ErrorEvent("backend "+sel.Backend+" not registered", false)
		return
	}

	// The backend context carries the request deadline but NOT the
	// cancellation token: deadline expiry and caller cancellation must
	// stay distinguishable at the terminal event.
	backendCtx := context.Background()
	var cancelBackend context.CancelFunc
	if !req.Deadline.IsZero() {
		backendCtx, cancelBackend = context.WithDeadline(backendCtx, req.Deadline)
	} else {
		backendCtx, cancelBackend = context.WithCancel(backendCtx)
	}
	defer cancelBackend()

	if tok.Cancelled() {
		out <- domain.CancelledEvent()
		return
	}

	events := backend.Invoke(backendCtx, req)

	var deadlineCh <-chan time.Time
	if !req.Deadline.IsZero() {
		timer := time.NewTimer(time.Until(req.Deadline))
		defer timer.Stop()
		deadlineCh = timer.C
	}

	for {
		select {
		case <-tok.Done():
			cancelBackend()
			g.awaitAcknowledgement(events)
			out <- domain.CancelledEvent()
			return

		case <-deadlineCh:
			cancelBackend()
			out <- domain.ErrorEvent("timeout", true)
			return

		case ev, open := <-events:
			if !open {
				// Backend closed its stream without a terminal event.
				out <- domain.ErrorEvent("backend closed stream without terminal event", true)
				return
			}
			if tok.Cancelled() {
				cancelBackend()
				out <- domain.CancelledEvent()
				return
			}
			if ev.Kind == domain.EventCompleted {
				ev = g.finalize(ev, sel.Backend, req, start)
			}
			out <- ev
			if ev.Terminal() {
				return
			}
		}
	}
}

// awaitAcknowledgement gives the backend the grace period to wind down
// after its context is cancelled. Whatever happens, the caller still gets
// Cancelled: an unresponsive backend is abandoned, not waited on.
func (g *Generator) awaitAcknowledgement(events <-chan domain.StreamEvent) {
	timer := time.NewTimer(g.grace)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			if g.logger != nil {
				g.logger.Warn("backend ignored cancellation, forcing teardown", nil)
			}
			return
		case _, open := <-events:
			if !open {
				return
			}
		}
	}
}

// finalize stamps elapsed time, backend name, and a token-count estimate
// onto a completed result when the backend did not report them.
func (g *Generator) finalize(ev domain.StreamEvent, backend string, req domain.GenerationRequest, start time.Time) domain.StreamEvent {
	result := *ev.Result
	if result.Backend == "" {
		result.Backend = backend
	}
	if result.Elapsed == 0 {
		result.Elapsed = g.now().Sub(start)
	}
	if result.TokenCount == 0 {
		result.TokenCount = g.estimator.Estimate(req.Prompt + result.Command + result.Explanation)
	}
	return domain.CompletedEvent(result)
}
