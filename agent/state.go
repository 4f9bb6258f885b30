package agent

import (
	"dario.cat/mergo"

	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/internal/util"
	"github.com/hupe1980/agentcell/logging"
)

// State is the schema-validated state container for one agent. It bundles
// the validated state map, the agent configuration, the FIFO queue of
// pending instructions and the ordered set of registered actions.
//
// A State is created once via New, bound to a Behavior, and exclusively
// owned by one logical actor at a time. Methods are not synchronized; the
// owner serializes access.
type State struct {
	// ID uniquely identifies the agent instance.
	ID string

	// LastResult holds the result of the most recently executed
	// instruction.
	LastResult any

	behavior Behavior
	state    map[string]any
	config   map[string]any
	dirty    bool
	pending  *core.Queue
	actions  []core.Action
	strict   bool
	logger   logging.Logger
}

// Options holds overrides passed to New().
type Options struct {
	// ID overrides the generated agent identifier.
	ID string
	// StrictValidation rejects unknown state keys on every validation.
	StrictValidation bool
	// Logger receives state lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
}

// New constructs a State bound to the given behavior. Initial state is
// built from the schema defaults deep-merged with config (config wins) and
// validated; violations surface as a config_error. Actions declared by the
// behavior are registered in order.
func New(behavior Behavior, config map[string]any, optFns ...func(o *Options)) (*State, *core.Error) {
	opts := Options{
		ID:     util.NewID(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if behavior == nil {
		return nil, core.NewError(core.KindConfig, "behavior must not be nil")
	}

	initial := behavior.Schema().Defaults()
	if len(config) > 0 {
		if err := mergo.Merge(&initial, util.DeepCopyMap(config), mergo.WithOverride); err != nil {
			return nil, core.WrapError(core.KindConfig, "failed to merge config", err)
		}
	}

	s := &State{
		ID:       opts.ID,
		behavior: behavior,
		state:    initial,
		config:   util.DeepCopyMap(config),
		pending:  core.NewQueue(0),
		strict:   opts.StrictValidation,
		logger:   opts.Logger,
	}
	if s.config == nil {
		s.config = map[string]any{}
	}

	for _, a := range behavior.Actions() {
		s.RegisterAction(a)
	}

	if _, err := s.Validate(); err != nil {
		return nil, core.WrapError(core.KindConfig, "initial state violates schema", err)
	}
	s.dirty = false

	return s, nil
}

// Behavior returns the callback table bound to this state.
func (s *State) Behavior() Behavior { return s.behavior }

// Value resolves a dot-separated path in the state map.
func (s *State) Value(path string) (any, bool) { return util.GetPath(s.state, path) }

// StateMap returns a deep copy of the state map.
func (s *State) StateMap() map[string]any { return util.DeepCopyMap(s.state) }

// Config returns a deep copy of the agent configuration.
func (s *State) Config() map[string]any { return util.DeepCopyMap(s.config) }

// Dirty reports whether the state has unreset mutations.
func (s *State) Dirty() bool { return s.dirty }

// ResetDirty clears the dirty flag. This is the only way the flag is
// cleared.
func (s *State) ResetDirty() { s.dirty = false }

// Set deep-merges attrs into the state map and validates the result.
// Empty attrs is a no-op success: state and dirty flag stay unchanged.
// Validation runs against the merged candidate first, so a failed Set
// leaves the state untouched. On success the state is replaced and dirty
// is set.
func (s *State) Set(attrs map[string]any, optFns ...func(o *SetOptions)) (*State, *core.Error) {
	opts := SetOptions{Strict: s.strict}
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(attrs) == 0 {
		return s, nil
	}

	merged := util.DeepCopyMap(s.state)
	if merged == nil {
		merged = map[string]any{}
	}
	if err := mergo.Merge(&merged, util.DeepCopyMap(attrs), mergo.WithOverride); err != nil {
		return s, core.WrapError(core.KindValidation, "failed to merge attributes", err)
	}

	validated, verr := s.runValidation(merged, opts.Strict)
	if verr != nil {
		return s, verr
	}

	s.state = validated
	s.dirty = true
	s.logger.Debug("agent.state.set", "agent_id", s.ID, "keys", len(attrs))

	return s, nil
}

// SetOptions holds overrides passed to Set().
type SetOptions struct {
	// Strict rejects unknown keys for this call.
	Strict bool
}

// Validate re-validates the current state map: pre-hook, declared-field
// checks (unknown fields bypass checking unless strict), post-hook. Hook
// transformations are applied on success. Validation failure is
// non-retryable.
func (s *State) Validate(optFns ...func(o *ValidateOptions)) (*State, *core.Error) {
	opts := ValidateOptions{Strict: s.strict}
	for _, fn := range optFns {
		fn(&opts)
	}

	validated, err := s.runValidation(util.DeepCopyMap(s.state), opts.Strict)
	if err != nil {
		return s, err
	}

	s.state = validated

	return s, nil
}

// ValidateOptions holds overrides passed to Validate().
type ValidateOptions struct {
	// Strict rejects unknown keys for this call.
	Strict bool
}

// runValidation pushes candidate values through the before hook, schema
// checks and the after hook. Hook panics are converted to typed errors;
// no fault escapes this boundary.
func (s *State) runValidation(values map[string]any, strict bool) (result map[string]any, verr *core.Error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			verr = core.Errorf(core.KindValidation, "validation hook panicked: %v", r)
		}
	}()

	if values == nil {
		values = map[string]any{}
	}

	values, err := s.behavior.OnBeforeValidate(s, values)
	if err != nil {
		return nil, core.WrapError(core.KindValidation, "before-validate hook failed", err)
	}

	if err := s.behavior.Schema().Validate(values, strict); err != nil {
		return nil, core.WrapError(core.KindValidation, "state violates schema", err)
	}

	values, err = s.behavior.OnAfterValidate(s, values)
	if err != nil {
		return nil, core.WrapError(core.KindValidation, "after-validate hook failed", err)
	}

	return values, nil
}

// Plan normalizes the planning input, validates it against the registered
// action set, runs the before-plan hook and enqueues the instructions in
// FIFO order. Sets dirty on success.
func (s *State) Plan(input any, planCtx map[string]any) (*State, *core.Error) {
	instructions, err := Normalize(input, planCtx, nil)
	if err != nil {
		return s, err
	}

	if err := ValidateAllowedActions(instructions, s.actions); err != nil {
		return s, err
	}

	instructions, herr := s.runBeforePlan(instructions)
	if herr != nil {
		return s, herr
	}

	s.EnqueueInstructions(instructions)
	s.logger.Debug("agent.state.plan", "agent_id", s.ID, "enqueued", len(instructions), "pending", s.pending.Len())

	return s, nil
}

func (s *State) runBeforePlan(instructions []core.Instruction) (result []core.Instruction, perr *core.Error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			perr = core.Errorf(core.KindExecution, "before-plan hook panicked: %v", r)
		}
	}()

	out, err := s.behavior.OnBeforePlan(s, instructions)
	if err != nil {
		return nil, core.WrapError(core.KindExecution, "before-plan hook failed", err)
	}
	return out, nil
}

// EnqueueInstructions appends canonical instructions to the pending queue,
// assigning IDs where missing, and sets dirty.
func (s *State) EnqueueInstructions(instructions []core.Instruction) {
	for i := range instructions {
		if instructions[i].ID == "" {
			instructions[i].ID = util.NewID()
		}
	}
	s.pending.EnqueueAll(instructions)
	if len(instructions) > 0 {
		s.dirty = true
	}
}

// DequeueInstruction removes and returns the head of the pending queue.
func (s *State) DequeueInstruction() (core.Instruction, bool) {
	in, ok := s.pending.Dequeue()
	if ok {
		s.dirty = true
	}
	return in, ok
}

// PendingLen returns the number of queued instructions.
func (s *State) PendingLen() int { return s.pending.Len() }

// PendingInstructions returns a defensive copy of the queue in FIFO order.
func (s *State) PendingInstructions() []core.Instruction { return s.pending.Snapshot() }

// RegisterAction adds an action to the registered set. A new registration
// takes priority over an older one with the same name: the old entry is
// replaced and the action moves to the front of the ordering.
func (s *State) RegisterAction(a core.Action) {
	if a == nil {
		return
	}
	s.DeregisterAction(a.Name())
	s.actions = append([]core.Action{a}, s.actions...)
	s.dirty = true
}

// DeregisterAction removes the named action from the registered set.
func (s *State) DeregisterAction(name string) {
	for i, existing := range s.actions {
		if existing.Name() == name {
			s.actions = append(s.actions[:i], s.actions[i+1:]...)
			s.dirty = true
			return
		}
	}
}

// Actions returns a shallow copy of the registered action set in priority
// order.
func (s *State) Actions() []core.Action {
	out := make([]core.Action, len(s.actions))
	copy(out, s.actions)
	return out
}

// ActionNames returns the registered action names in priority order.
func (s *State) ActionNames() []string {
	out := make([]string, len(s.actions))
	for i, a := range s.actions {
		out[i] = a.Name()
	}
	return out
}

// Clone returns a deep copy of the state safe for independent mutation.
// The behavior reference and action implementations are shared.
func (s *State) Clone() *State {
	clone := &State{
		ID:         s.ID,
		LastResult: s.LastResult,
		behavior:   s.behavior,
		state:      util.DeepCopyMap(s.state),
		config:     util.DeepCopyMap(s.config),
		dirty:      s.dirty,
		pending:    s.pending.Clone(),
		actions:    make([]core.Action, len(s.actions)),
		strict:     s.strict,
		logger:     s.logger,
	}
	copy(clone.actions, s.actions)
	return clone
}
