package runner

import (
	"context"

	"github.com/hupe1980/agentcell/agent"
	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/engine"
	"github.com/hupe1980/agentcell/logging"
)

// Runner executes pending instructions against an agent state. A run
// cycle returns the (possibly substituted) state, every directive the
// cycle produced in emission order, and the terminal error if the cycle
// failed without recovery.
type Runner interface {
	// Name returns the strategy identifier.
	Name() string

	// Run executes one cycle over the agent's pending queue.
	Run(ctx context.Context, s *agent.State, optFns ...func(o *Options)) (*agent.State, []core.Directive, *core.Error)
}

// Options configures a run cycle.
type Options struct {
	// Engine executes individual instructions. Defaults to engine.New().
	Engine *engine.Engine
	// ApplyDirectives controls whether returned directives are applied to
	// the state as part of the cycle. Enabled by default; disable to
	// inspect directives without mutating state.
	ApplyDirectives bool
	// Supervisor handles spawn and kill directives during application.
	Supervisor core.Supervisor
	// Logger receives run cycle logs.
	Logger logging.Logger
	// MaxSteps bounds a chain cycle; enqueue directives can otherwise
	// extend the queue indefinitely. Zero means the default of 100.
	MaxSteps int
}

func resolveOptions(optFns []func(o *Options)) Options {
	opts := Options{
		ApplyDirectives: true,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Engine == nil {
		opts.Engine = engine.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 100
	}
	return opts
}

// engineOpts builds the per-call engine options for one instruction.
func engineOpts(ins core.Instruction) map[string]any {
	opts := make(map[string]any, len(ins.Options)+1)
	for k, v := range ins.Options {
		opts[k] = v
	}
	opts["instruction_id"] = ins.ID
	return opts
}

// runBeforeRun invokes the before-run hook with a panic guard.
func runBeforeRun(s *agent.State) (herr *core.Error) {
	defer func() {
		if r := recover(); r != nil {
			herr = core.Errorf(core.KindExecution, "before-run hook panicked: %v", r)
		}
	}()
	if err := s.Behavior().OnBeforeRun(s); err != nil {
		return core.WrapError(core.KindExecution, "before-run hook failed", err)
	}
	return nil
}

// runAfterRun invokes the after-run hook with a panic guard.
func runAfterRun(s *agent.State, result any, directives []core.Directive) (herr *core.Error) {
	defer func() {
		if r := recover(); r != nil {
			herr = core.Errorf(core.KindExecution, "after-run hook panicked: %v", r)
		}
	}()
	if err := s.Behavior().OnAfterRun(s, result, directives); err != nil {
		return core.WrapError(core.KindExecution, "after-run hook failed", err)
	}
	return nil
}

// finishWithError routes an unrecoverable failure through the behavior's
// error hook. The hook may substitute a recovered state, turning the
// cycle into a success; otherwise the cause propagates.
func finishWithError(s *agent.State, directives []core.Directive, cause *core.Error, logger logging.Logger) (*agent.State, []core.Directive, *core.Error) {
	recovered, rerr := runOnError(s, cause)
	if rerr == nil && recovered != nil {
		logger.Info("Run recovered by error hook", "agent_id", s.ID, "cause", cause.Error())
		return recovered, directives, nil
	}
	if rerr == nil {
		rerr = cause
	}
	logger.Error("Run failed", "agent_id", s.ID, "error", rerr.Error())
	return s, directives, rerr
}

func runOnError(s *agent.State, cause *core.Error) (recovered *agent.State, herr *core.Error) {
	defer func() {
		if r := recover(); r != nil {
			recovered = nil
			herr = core.Errorf(core.KindExecution, "error hook panicked: %v", r)
		}
	}()
	return s.Behavior().OnError(s, cause)
}
