// Package agentcell provides an agent execution engine: schema-validated
// agent state, instruction planning, isolated action execution with retry
// and compensation, and directive-based state mutation.
//
// The Cell type is the top-level façade. It owns one agent state, drives
// it through the plan/run/apply lifecycle with a selectable run strategy,
// and serializes all access so the single-owner model of agent.State
// holds. The underlying packages (agent, engine, runner) remain usable
// directly for hosts that need finer control.
package agentcell

import (
	"context"
	"sync"

	"github.com/hupe1980/agentcell/agent"
	"github.com/hupe1980/agentcell/config"
	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/engine"
	"github.com/hupe1980/agentcell/logging"
	"github.com/hupe1980/agentcell/registry"
	"github.com/hupe1980/agentcell/runner"
)

// Options holds overrides passed to New().
type Options struct {
	// Config supplies engine and runner settings. Defaults to
	// config.Default().
	Config *config.Config
	// Engine overrides the engine built from Config.
	Engine *engine.Engine
	// Runner overrides the strategy selected by Config.
	Runner runner.Runner
	// Supervisor fulfills spawn and kill directives.
	Supervisor core.Supervisor
	// Registry, when set, receives the behavior's info on construction.
	Registry *registry.InMemory
	// Logger receives lifecycle logs.
	Logger logging.Logger
	// Observer receives execution events from the engine built from
	// Config. Ignored when Engine is set.
	Observer core.Observer
	// AgentID overrides the generated agent identifier.
	AgentID string
}

// Cell binds one agent state to an execution engine and a run strategy.
// All methods are safe for concurrent use; the cell serializes access to
// the state it owns.
type Cell struct {
	mu         sync.Mutex
	state      *agent.State
	phase      runner.Phase
	engine     *engine.Engine
	runner     runner.Runner
	supervisor core.Supervisor
	logger     logging.Logger
}

// New constructs a Cell around the given behavior and agent config. The
// initial state is built from the behavior's schema defaults merged with
// agentConfig; violations surface as a config_error.
func New(behavior agent.Behavior, agentConfig map[string]any, optFns ...func(o *Options)) (*Cell, *core.Error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, core.AsError(err)
	}

	eng := opts.Engine
	if eng == nil {
		eng = engine.New(cfg.EngineOptions(), func(o *engine.Options) {
			o.Observer = opts.Observer
			o.Logger = opts.Logger
		})
	}

	run := opts.Runner
	if run == nil {
		if cfg.Runner.Strategy == "simple" {
			run = runner.NewSimple()
		} else {
			run = runner.NewChain()
		}
	}

	stateOpts := []func(o *agent.Options){
		func(o *agent.Options) { o.Logger = opts.Logger },
	}
	if opts.AgentID != "" {
		stateOpts = append(stateOpts, func(o *agent.Options) { o.ID = opts.AgentID })
	}

	state, serr := agent.New(behavior, agentConfig, stateOpts...)
	if serr != nil {
		return nil, serr
	}

	if opts.Registry != nil {
		if err := opts.Registry.Register(agent.Info(behavior)); err != nil {
			return nil, core.AsError(err)
		}
	}

	return &Cell{
		state:      state,
		phase:      runner.PhaseIdle,
		engine:     eng,
		runner:     run,
		supervisor: opts.Supervisor,
		logger:     opts.Logger,
	}, nil
}

// ID returns the agent identifier.
func (c *Cell) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ID
}

// Phase returns the current lifecycle phase.
func (c *Cell) Phase() runner.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Snapshot returns a deep copy of the agent's state map.
func (c *Cell) Snapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.StateMap()
}

// Result returns the result of the most recently executed instruction.
func (c *Cell) Result() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.LastResult
}

// PendingLen returns the number of queued instructions.
func (c *Cell) PendingLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.PendingLen()
}

// Set deep-merges attrs into the agent state and validates the result.
func (c *Cell) Set(attrs map[string]any, optFns ...func(o *agent.SetOptions)) *core.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.state.Set(attrs, optFns...)
	return err
}

// Plan normalizes the planning input and enqueues the resulting
// instructions. Planning is allowed from the idle and failed phases; a
// failed agent re-enters the loop through a new plan.
func (c *Cell) Plan(input any, planCtx map[string]any) *core.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.transition(runner.PhasePlanning); err != nil {
		return err
	}

	if _, err := c.state.Plan(input, planCtx); err != nil {
		c.phase = runner.PhaseIdle
		return err
	}

	c.phase = runner.PhaseIdle
	return nil
}

// Run executes one cycle of the configured strategy over the pending
// queue, then applies the collected directives. An empty queue is a
// no-op success. On an unrecovered failure the cell still applies the
// directives accumulated by the steps that completed, then enters the
// failed phase; a subsequent Plan or Reset leaves it.
func (c *Cell) Run(ctx context.Context) (any, *core.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.transition(runner.PhaseRunning); err != nil {
		return nil, err
	}

	// The runner collects directives; the cell applies them afterwards in
	// its own phase so enqueue directives land between cycles, not inside
	// one.
	next, directives, err := c.runner.Run(ctx, c.state,
		func(o *runner.Options) {
			o.Engine = c.engine
			o.ApplyDirectives = false
			o.Supervisor = c.supervisor
			o.Logger = c.logger
		},
	)
	if next != nil {
		c.state = next
	}

	// Directives from completed steps are applied even when a later step
	// failed: partial progress is preserved, not rolled back.
	if len(directives) > 0 {
		if terr := c.transition(runner.PhaseApplyingDirectives); terr != nil {
			c.phase = runner.PhaseFailed
			return nil, terr
		}
		if _, aerr := agent.Apply(c.state, directives, func(o *agent.ApplyOptions) {
			o.Supervisor = c.supervisor
			o.Logger = c.logger
		}); aerr != nil {
			c.phase = runner.PhaseFailed
			if err != nil {
				c.logger.Error("Directive application failed after run failure", "agent_id", c.state.ID, "error", aerr.Error())
				return nil, err
			}
			return nil, aerr
		}
	}

	if err != nil {
		c.phase = runner.PhaseFailed
		return nil, err
	}

	c.phase = runner.PhaseIdle
	return c.state.LastResult, nil
}

// RunPlan plans the input and immediately runs the resulting cycle.
func (c *Cell) RunPlan(ctx context.Context, input any, planCtx map[string]any) (any, *core.Error) {
	if err := c.Plan(input, planCtx); err != nil {
		return nil, err
	}
	return c.Run(ctx)
}

// Reset returns a failed cell to idle. Resetting an idle cell is a
// no-op; any other phase is rejected.
func (c *Cell) Reset() *core.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == runner.PhaseIdle {
		return nil
	}
	return c.transition(runner.PhaseIdle)
}

func (c *Cell) transition(next runner.Phase) *core.Error {
	if !c.phase.CanTransition(next) {
		return core.Errorf(core.KindConfig, "illegal phase transition %s -> %s", c.phase, next)
	}
	c.phase = next
	return nil
}
