package runner

import (
	"context"

	"github.com/hupe1980/agentcell/agent"
	"github.com/hupe1980/agentcell/core"
)

// Chain drains the pending queue sequentially. Map results are threaded
// into the next instruction's params; explicit instruction params win
// over threaded values. Directives are applied after each step, so an
// enqueue directive extends the running chain. The cycle stops at the
// first unrecoverable failure, preserving directives produced so far.
type Chain struct{}

// NewChain creates a queue-draining runner.
func NewChain() *Chain { return &Chain{} }

// Name returns the strategy identifier.
func (r *Chain) Name() string { return "chain" }

// Run executes pending instructions until the queue is empty, a step
// fails or the step bound is hit.
func (r *Chain) Run(ctx context.Context, s *agent.State, optFns ...func(o *Options)) (*agent.State, []core.Directive, *core.Error) {
	opts := resolveOptions(optFns)

	if err := runBeforeRun(s); err != nil {
		return finishWithError(s, nil, err, opts.Logger)
	}

	var (
		all   []core.Directive
		carry map[string]any
		steps int
	)

	for s.PendingLen() > 0 {
		if err := ctx.Err(); err != nil {
			cause := core.WrapError(core.KindTimeout, "chain cancelled", err).
				WithContext("steps", steps)
			return finishWithError(s, all, cause, opts.Logger)
		}

		if steps >= opts.MaxSteps {
			cause := core.Errorf(core.KindExecution, "chain exceeded %d steps", opts.MaxSteps).
				WithContext("pending", s.PendingLen())
			return finishWithError(s, all, cause, opts.Logger)
		}

		ins, _ := s.DequeueInstruction()
		steps++

		params := threadParams(ins.Params, carry)

		outcome := opts.Engine.Run(ctx, ins.Action, params, ins.Context, engineOpts(ins))
		if !outcome.OK() {
			all = append(all, outcome.Directives...)
			cause := outcome.Err.WithContext("step", steps)
			return finishWithError(s, all, cause, opts.Logger)
		}

		s.LastResult = outcome.Result
		all = append(all, outcome.Directives...)

		if opts.ApplyDirectives && len(outcome.Directives) > 0 {
			if _, err := agent.Apply(s, outcome.Directives, func(o *agent.ApplyOptions) {
				o.Supervisor = opts.Supervisor
				o.Logger = opts.Logger
			}); err != nil {
				return finishWithError(s, all, err.WithContext("step", steps), opts.Logger)
			}
		}

		if m, ok := outcome.Result.(map[string]any); ok {
			carry = m
		} else {
			carry = nil
		}
	}

	if err := runAfterRun(s, s.LastResult, all); err != nil {
		return finishWithError(s, all, err, opts.Logger)
	}

	opts.Logger.Debug("Chain completed", "agent_id", s.ID, "steps", steps, "directives", len(all))

	return s, all, nil
}

// threadParams merges the previous step's map result under the explicit
// instruction params. Explicit params win.
func threadParams(params map[string]any, carry map[string]any) map[string]any {
	if len(carry) == 0 {
		return params
	}
	merged := make(map[string]any, len(carry)+len(params))
	for k, v := range carry {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return merged
}
