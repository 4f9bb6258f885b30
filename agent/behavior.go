package agent

import (
	"fmt"

	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/schema"
)

// Behavior is the callback table bound to a State. It declares the state
// schema, the action set the agent may execute, and lifecycle hooks
// bracketing validation, planning and runs.
//
// BaseBehavior provides no-op defaults for every hook; embed it and
// override what you need, or build a behavior with NewBehavior and
// functional options.
type Behavior interface {
	// Name returns the behavior's unique identifier.
	Name() string

	// Description returns a human-readable description of the behavior.
	Description() string

	// Schema declares the agent's state fields. May be empty.
	Schema() schema.Schema

	// Actions returns the actions registered at construction, in order.
	Actions() []core.Action

	// OnBeforeValidate runs before declared-field checks and may transform
	// the candidate values.
	OnBeforeValidate(s *State, values map[string]any) (map[string]any, error)

	// OnAfterValidate runs after declared-field checks and may transform
	// the accepted values.
	OnAfterValidate(s *State, values map[string]any) (map[string]any, error)

	// OnBeforePlan runs before normalized instructions are enqueued and
	// may transform them.
	OnBeforePlan(s *State, instructions []core.Instruction) ([]core.Instruction, error)

	// OnBeforeRun runs before a runner cycle starts.
	OnBeforeRun(s *State) error

	// OnAfterRun runs after a successful runner cycle.
	OnAfterRun(s *State, result any, directives []core.Directive) error

	// OnError runs on an unrecoverable run failure. Returning a non-nil
	// state with a nil error substitutes a recovered state; the default
	// propagates the cause unchanged.
	OnError(s *State, cause *core.Error) (*State, *core.Error)
}

// BaseBehavior bundles identity, schema and action storage plus no-op hook
// implementations. Embed it in concrete behavior types and override the
// hooks that matter.
type BaseBehavior struct {
	name        string
	description string
	schema      schema.Schema
	actions     []core.Action
}

// NewBaseBehavior constructs a BaseBehavior with a generated description
// (customizable via SetDescription).
func NewBaseBehavior(name string) BaseBehavior {
	return BaseBehavior{name: name, description: fmt.Sprintf("Behavior %s", name)}
}

// Name returns the behavior's identifier.
func (b *BaseBehavior) Name() string { return b.name }

// Description returns the behavior's description.
func (b *BaseBehavior) Description() string { return b.description }

// SetDescription updates the behavior's description.
func (b *BaseBehavior) SetDescription(desc string) { b.description = desc }

// Schema returns the declared state schema.
func (b *BaseBehavior) Schema() schema.Schema { return b.schema }

// SetSchema replaces the declared state schema.
func (b *BaseBehavior) SetSchema(s schema.Schema) { b.schema = s }

// Actions returns a shallow copy of the declared action set.
func (b *BaseBehavior) Actions() []core.Action {
	out := make([]core.Action, len(b.actions))
	copy(out, b.actions)
	return out
}

// SetActions replaces the declared action set.
func (b *BaseBehavior) SetActions(actions ...core.Action) { b.actions = actions }

// OnBeforeValidate returns the values unchanged.
func (b *BaseBehavior) OnBeforeValidate(_ *State, values map[string]any) (map[string]any, error) {
	return values, nil
}

// OnAfterValidate returns the values unchanged.
func (b *BaseBehavior) OnAfterValidate(_ *State, values map[string]any) (map[string]any, error) {
	return values, nil
}

// OnBeforePlan returns the instructions unchanged.
func (b *BaseBehavior) OnBeforePlan(_ *State, instructions []core.Instruction) ([]core.Instruction, error) {
	return instructions, nil
}

// OnBeforeRun is a no-op.
func (b *BaseBehavior) OnBeforeRun(_ *State) error { return nil }

// OnAfterRun is a no-op.
func (b *BaseBehavior) OnAfterRun(_ *State, _ any, _ []core.Directive) error { return nil }

// OnError propagates the cause unchanged.
func (b *BaseBehavior) OnError(_ *State, cause *core.Error) (*State, *core.Error) {
	return nil, cause
}

// CustomBehavior is a Behavior assembled from functional options, the
// construction-time alternative to embedding BaseBehavior.
type CustomBehavior struct {
	BaseBehavior

	beforeValidate func(s *State, values map[string]any) (map[string]any, error)
	afterValidate  func(s *State, values map[string]any) (map[string]any, error)
	beforePlan     func(s *State, instructions []core.Instruction) ([]core.Instruction, error)
	beforeRun      func(s *State) error
	afterRun       func(s *State, result any, directives []core.Directive) error
	onError        func(s *State, cause *core.Error) (*State, *core.Error)
}

// BehaviorOption customizes a CustomBehavior during construction.
type BehaviorOption func(*CustomBehavior)

// NewBehavior builds a Behavior from functional options. Hooks left unset
// keep their no-op defaults.
func NewBehavior(name string, opts ...BehaviorOption) *CustomBehavior {
	cb := &CustomBehavior{BaseBehavior: NewBaseBehavior(name)}
	for _, o := range opts {
		o(cb)
	}
	return cb
}

// WithDescription sets the behavior description.
func WithDescription(desc string) BehaviorOption {
	return func(cb *CustomBehavior) { cb.SetDescription(desc) }
}

// WithSchema sets the declared state schema.
func WithSchema(s schema.Schema) BehaviorOption {
	return func(cb *CustomBehavior) { cb.SetSchema(s) }
}

// WithActions sets the declared action set.
func WithActions(actions ...core.Action) BehaviorOption {
	return func(cb *CustomBehavior) { cb.SetActions(actions...) }
}

// WithBeforeValidate overrides the before-validate hook.
func WithBeforeValidate(fn func(s *State, values map[string]any) (map[string]any, error)) BehaviorOption {
	return func(cb *CustomBehavior) { cb.beforeValidate = fn }
}

// WithAfterValidate overrides the after-validate hook.
func WithAfterValidate(fn func(s *State, values map[string]any) (map[string]any, error)) BehaviorOption {
	return func(cb *CustomBehavior) { cb.afterValidate = fn }
}

// WithBeforePlan overrides the before-plan hook.
func WithBeforePlan(fn func(s *State, instructions []core.Instruction) ([]core.Instruction, error)) BehaviorOption {
	return func(cb *CustomBehavior) { cb.beforePlan = fn }
}

// WithBeforeRun overrides the before-run hook.
func WithBeforeRun(fn func(s *State) error) BehaviorOption {
	return func(cb *CustomBehavior) { cb.beforeRun = fn }
}

// WithAfterRun overrides the after-run hook.
func WithAfterRun(fn func(s *State, result any, directives []core.Directive) error) BehaviorOption {
	return func(cb *CustomBehavior) { cb.afterRun = fn }
}

// WithOnError overrides the error hook.
func WithOnError(fn func(s *State, cause *core.Error) (*State, *core.Error)) BehaviorOption {
	return func(cb *CustomBehavior) { cb.onError = fn }
}

// OnBeforeValidate runs the configured hook or the no-op default.
func (cb *CustomBehavior) OnBeforeValidate(s *State, values map[string]any) (map[string]any, error) {
	if cb.beforeValidate != nil {
		return cb.beforeValidate(s, values)
	}
	return cb.BaseBehavior.OnBeforeValidate(s, values)
}

// OnAfterValidate runs the configured hook or the no-op default.
func (cb *CustomBehavior) OnAfterValidate(s *State, values map[string]any) (map[string]any, error) {
	if cb.afterValidate != nil {
		return cb.afterValidate(s, values)
	}
	return cb.BaseBehavior.OnAfterValidate(s, values)
}

// OnBeforePlan runs the configured hook or the no-op default.
func (cb *CustomBehavior) OnBeforePlan(s *State, instructions []core.Instruction) ([]core.Instruction, error) {
	if cb.beforePlan != nil {
		return cb.beforePlan(s, instructions)
	}
	return cb.BaseBehavior.OnBeforePlan(s, instructions)
}

// OnBeforeRun runs the configured hook or the no-op default.
func (cb *CustomBehavior) OnBeforeRun(s *State) error {
	if cb.beforeRun != nil {
		return cb.beforeRun(s)
	}
	return cb.BaseBehavior.OnBeforeRun(s)
}

// OnAfterRun runs the configured hook or the no-op default.
func (cb *CustomBehavior) OnAfterRun(s *State, result any, directives []core.Directive) error {
	if cb.afterRun != nil {
		return cb.afterRun(s, result, directives)
	}
	return cb.BaseBehavior.OnAfterRun(s, result, directives)
}

// OnError runs the configured hook or the propagate-unchanged default.
func (cb *CustomBehavior) OnError(s *State, cause *core.Error) (*State, *core.Error) {
	if cb.onError != nil {
		return cb.onError(s, cause)
	}
	return cb.BaseBehavior.OnError(s, cause)
}

// Info summarizes a behavior for registry diagnostics.
func Info(b Behavior) core.BehaviorInfo {
	actions := b.Actions()
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name()
	}
	return core.BehaviorInfo{
		Name:        b.Name(),
		Description: b.Description(),
		ActionNames: names,
	}
}
