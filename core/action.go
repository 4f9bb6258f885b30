package core

import (
	"context"

	"github.com/hupe1980/agentcell/schema"
)

// Action defines the contract for executable units of work.
//
// Actions can be registered with agents and referenced by instructions in
// the pending queue. Implementations should:
//   - Provide stable, descriptive names (snake_case recommended)
//   - Respect context cancellation; long-running bodies must watch ctx
//   - Return errors instead of panicking (panics are recovered and
//     converted at the worker boundary, but explicit errors carry intent)
//   - Be safe for repeated invocation: retries re-run the body with the
//     same params
//
// Optional capability interfaces (ParamsValidator, OutputValidator,
// Compensator) extend an action with declared contracts and failure
// handling; the execution engine detects them via type assertion.
type Action interface {
	// Name returns the unique identifier for this action.
	Name() string

	// Run executes the action body. params carry the instruction's
	// validated parameters, execCtx the instruction context shared by the
	// caller. The returned directives, if any, describe state and queue
	// mutations to apply after the run.
	Run(ctx context.Context, params map[string]any, execCtx map[string]any) (any, []Directive, error)
}

// ParamsValidator is implemented by actions that declare an input contract.
// Params are validated before the body runs; violations are validation
// errors and are never retried.
type ParamsValidator interface {
	ParamsSchema() schema.Schema
}

// OutputValidator is implemented by actions that declare an output
// contract. Map results are validated after a graceful return.
type OutputValidator interface {
	OutputSchema() schema.Schema
}

// Compensator is implemented by actions that declare a compensation
// handler. On terminal failure (after retries are exhausted) the handler is
// invoked with the original params and the terminal cause, inside its own
// time-boxed worker.
type Compensator interface {
	Compensate(ctx context.Context, params map[string]any, cause error, execCtx map[string]any) error
}

// ActionFunc adapts an ordinary function to the Action interface.
type ActionFunc struct {
	name string
	fn   func(ctx context.Context, params map[string]any, execCtx map[string]any) (any, []Directive, error)
}

// NewActionFunc creates an Action from a name and a function.
func NewActionFunc(
	name string,
	fn func(ctx context.Context, params map[string]any, execCtx map[string]any) (any, []Directive, error),
) *ActionFunc {
	return &ActionFunc{name: name, fn: fn}
}

// Name returns the action's identifier.
func (a *ActionFunc) Name() string { return a.name }

// Run invokes the wrapped function.
func (a *ActionFunc) Run(ctx context.Context, params map[string]any, execCtx map[string]any) (any, []Directive, error) {
	return a.fn(ctx, params, execCtx)
}
