package engine

import (
	"context"

	"github.com/hupe1980/agentcell/core"
)

// Handle tracks one asynchronous execution. It exposes completion,
// cancellation and the terminal outcome.
type Handle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	outcome core.ExecutionOutcome
}

// RunAsync starts the action in the background and returns a handle.
// Cancelling the handle cancels the worker's context; retries stop at
// the next decision point.
func (e *Engine) RunAsync(
	ctx context.Context,
	action core.Action,
	params map[string]any,
	execCtx map[string]any,
	opts map[string]any,
) *Handle {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer cancel()
		h.outcome = e.Run(runCtx, action, params, execCtx, opts)
		close(h.done)
	}()

	return h
}

// Done returns a channel closed when the execution reaches a terminal
// outcome.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the execution completes or the context is done.
func (h *Handle) Wait(ctx context.Context) (core.ExecutionOutcome, error) {
	select {
	case <-h.done:
		return h.outcome, nil
	case <-ctx.Done():
		return core.ExecutionOutcome{}, ctx.Err()
	}
}

// Outcome returns the terminal outcome. It must only be called after
// Done is closed; before that the outcome is not yet populated.
func (h *Handle) Outcome() core.ExecutionOutcome { return h.outcome }

// Cancel aborts the execution. The terminal outcome becomes a timeout
// error unless the action already finished.
func (h *Handle) Cancel() { h.cancel() }
