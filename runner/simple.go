package runner

import (
	"context"

	"github.com/hupe1980/agentcell/agent"
	"github.com/hupe1980/agentcell/core"
)

// Simple executes exactly one pending instruction per cycle. An empty
// queue is a no-op success.
type Simple struct{}

// NewSimple creates a single-step runner.
func NewSimple() *Simple { return &Simple{} }

// Name returns the strategy identifier.
func (r *Simple) Name() string { return "simple" }

// Run dequeues the head instruction, executes it, applies its directives
// and records the result on the state.
func (r *Simple) Run(ctx context.Context, s *agent.State, optFns ...func(o *Options)) (*agent.State, []core.Directive, *core.Error) {
	opts := resolveOptions(optFns)

	if err := runBeforeRun(s); err != nil {
		return finishWithError(s, nil, err, opts.Logger)
	}

	ins, ok := s.DequeueInstruction()
	if !ok {
		return s, nil, nil
	}

	outcome := opts.Engine.Run(ctx, ins.Action, ins.Params, ins.Context, engineOpts(ins))
	if !outcome.OK() {
		return finishWithError(s, outcome.Directives, outcome.Err, opts.Logger)
	}

	s.LastResult = outcome.Result

	if opts.ApplyDirectives && len(outcome.Directives) > 0 {
		if _, err := agent.Apply(s, outcome.Directives, func(o *agent.ApplyOptions) {
			o.Supervisor = opts.Supervisor
			o.Logger = opts.Logger
		}); err != nil {
			return finishWithError(s, outcome.Directives, err, opts.Logger)
		}
	}

	if err := runAfterRun(s, outcome.Result, outcome.Directives); err != nil {
		return finishWithError(s, outcome.Directives, err, opts.Logger)
	}

	return s, outcome.Directives, nil
}
