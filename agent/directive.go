package agent

import (
	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/internal/util"
	"github.com/hupe1980/agentcell/logging"
)

// ApplyOptions holds collaborator overrides passed to Apply().
type ApplyOptions struct {
	// Supervisor fulfills Spawn/Kill directives. Required only when such
	// directives are present.
	Supervisor core.Supervisor
	// Logger receives application logs. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Apply mutates the state from the given directives, strictly in slice
// order. Application is sequential and non-transactional: on the first
// failing directive it stops and returns the state as mutated so far
// together with a directive_error whose context records the failing index.
//
// Set/Update/Delete/Reset address the state map by dot-separated path.
// Enqueue appends normalized instructions to the pending queue.
// Register/DeregisterAction mutate the ordered action set. Spawn/Kill are
// forwarded to the supervision collaborator and are otherwise opaque.
func Apply(s *State, directives []core.Directive, optFns ...func(o *ApplyOptions)) (*State, *core.Error) {
	opts := ApplyOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	for i, d := range directives {
		if err := applyOne(s, d, &opts); err != nil {
			return s, err.WithContext("directive_index", i).WithContext("applied", i)
		}
	}

	return s, nil
}

func applyOne(s *State, d core.Directive, opts *ApplyOptions) *core.Error {
	switch dv := d.(type) {
	case core.SetState:
		if err := util.SetPath(s.state, dv.Path, dv.Value); err != nil {
			return core.WrapError(core.KindDirective, "set directive failed", err)
		}
		s.dirty = true

	case core.UpdateState:
		if dv.Fn == nil {
			return core.NewError(core.KindDirective, "update directive has no function")
		}
		current, _ := util.GetPath(s.state, dv.Path)
		next, err := runUpdateFn(dv.Fn, current)
		if err != nil {
			return err
		}
		if perr := util.SetPath(s.state, dv.Path, next); perr != nil {
			return core.WrapError(core.KindDirective, "update directive failed", perr)
		}
		s.dirty = true

	case core.DeleteState:
		util.DeletePath(s.state, dv.Path)
		s.dirty = true

	case core.ResetState:
		if field, declared := s.behavior.Schema()[dv.Path]; declared && field.Default != nil {
			if err := util.SetPath(s.state, dv.Path, field.Default); err != nil {
				return core.WrapError(core.KindDirective, "reset directive failed", err)
			}
		} else {
			util.DeletePath(s.state, dv.Path)
		}
		s.dirty = true

	case core.Enqueue:
		instructions, err := Normalize(dv.Instructions, nil, nil)
		if err != nil {
			return core.WrapError(core.KindDirective, "enqueue directive failed", err)
		}
		s.EnqueueInstructions(instructions)

	case core.RegisterAction:
		if dv.Action == nil {
			return core.NewError(core.KindDirective, "register directive has no action")
		}
		s.RegisterAction(dv.Action)

	case core.DeregisterAction:
		s.DeregisterAction(dv.Name)

	case core.Spawn:
		if opts.Supervisor == nil {
			return core.NewError(core.KindDirective, "spawn directive requires a supervisor")
		}
		ref, err := opts.Supervisor.Spawn(dv.Spec)
		if err != nil {
			return core.WrapError(core.KindDirective, "spawn directive failed", err)
		}
		opts.Logger.Debug("agent.directive.spawn", "agent_id", s.ID, "ref", ref)

	case core.Kill:
		if opts.Supervisor == nil {
			return core.NewError(core.KindDirective, "kill directive requires a supervisor")
		}
		if err := opts.Supervisor.Kill(dv.Ref); err != nil {
			return core.WrapError(core.KindDirective, "kill directive failed", err)
		}

	default:
		return core.Errorf(core.KindDirective, "unknown directive type %T", d)
	}

	return nil
}

// runUpdateFn shields the applier from panics in user update functions.
func runUpdateFn(fn func(any) any, current any) (next any, derr *core.Error) {
	defer func() {
		if r := recover(); r != nil {
			next = nil
			derr = core.Errorf(core.KindDirective, "update directive panicked: %v", r)
		}
	}()
	return fn(current), nil
}
