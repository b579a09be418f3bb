package stream

import "context"

// Token is the per-run cooperative cancellation handle. It is created by
// the orchestrator and passed by value through every suspension point;
// the generator polls it before and after each emitted event.
type Token struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewToken derives a cancellation token from the caller's context, so a
// caller-side cancel propagates into the run.
func NewToken(parent context.Context) Token {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return Token{ctx: ctx, cancel: cancel}
}

// Cancel requests a cooperative stop. Safe to call more than once.
func (t Token) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Done exposes the cancellation signal for select loops.
func (t Token) Done() <-chan struct{} {
	if t.ctx == nil {
		return nil
	}
	return t.ctx.Done()
}

// Cancelled reports whether a stop has been requested.
func (t Token) Cancelled() bool {
	if t.ctx == nil {
		return false
	}
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Context returns the underlying context for deriving backend deadlines.
func (t Token) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}
