package engine

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/hupe1980/agentcell/core"
)

// workerResult carries the raw outcome of one worker goroutine.
type workerResult struct {
	result     any
	directives []core.Directive
	err        error
}

// runIsolated executes the action body in its own monitored goroutine.
// A panic inside the body is recovered and converted into an execution
// error; exceeding the deadline (or parent cancellation) yields a timeout
// error and cancels the body's context so descendants stop too. With
// timeout <= 0 no deadline applies but the worker stays cancellable.
func runIsolated(
	ctx context.Context,
	action core.Action,
	params map[string]any,
	execCtx map[string]any,
	timeout time.Duration,
) (any, []core.Directive, *core.Error) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan workerResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- workerResult{
					err: core.Errorf(core.KindExecution, "action %q panicked: %v", action.Name(), r).
						WithContext("stack", string(debug.Stack())),
				}
			}
		}()

		result, directives, err := action.Run(runCtx, params, execCtx)
		done <- workerResult{result: result, directives: directives, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			// A body that surfaces its own context error was cancelled or
			// timed out, not faulty.
			if errors.Is(res.err, context.DeadlineExceeded) || errors.Is(res.err, context.Canceled) {
				return nil, res.directives, core.WrapError(core.KindTimeout, "action "+action.Name()+" interrupted", res.err)
			}
			return nil, res.directives, core.AsError(res.err)
		}
		return res.result, res.directives, nil
	case <-runCtx.Done():
		// The body keeps the goroutine until it observes runCtx; the
		// buffered channel lets it exit without a reader.
		cause := runCtx.Err()
		if errors.Is(cause, context.DeadlineExceeded) {
			return nil, nil, core.Errorf(core.KindTimeout, "action %q exceeded deadline", action.Name()).
				WithContext("timeout_ms", timeout.Milliseconds())
		}
		return nil, nil, core.WrapError(core.KindTimeout, "action "+action.Name()+" cancelled", cause)
	}
}

// sleepBackoff waits for the given delay or until the context is done.
func sleepBackoff(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
