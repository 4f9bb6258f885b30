package core

// Directive is a declarative state or queue mutation emitted by a runner
// or an action's execution outcome. Directives are applied strictly in
// slice order by the directive applier; application is sequential and
// non-transactional.
//
// The set of directive types is closed: the unexported marker method keeps
// external packages from introducing variants the applier cannot handle.
type Directive interface {
	isDirective()
}

// SetState writes a value at a dot-separated path in the agent's state.
type SetState struct {
	Path  string
	Value any
}

// UpdateState replaces the value at a path with Fn(current). Fn receives
// nil when the path does not exist yet.
type UpdateState struct {
	Path string
	Fn   func(current any) any
}

// DeleteState removes the value at a path.
type DeleteState struct {
	Path string
}

// ResetState restores a declared top-level field to its schema default, or
// removes the value when no default is declared.
type ResetState struct {
	Path string
}

// Enqueue appends instructions to the agent's pending queue. Entries are
// normalized at apply time, so any planning shorthand is accepted.
type Enqueue struct {
	Instructions []any
}

// RegisterAction adds an action to the agent's registered set. A new
// registration takes priority over an older one with the same name.
type RegisterAction struct {
	Action Action
}

// DeregisterAction removes an action from the agent's registered set.
type DeregisterAction struct {
	Name string
}

// Spawn forwards a child process spec to the supervision collaborator.
// The spec is opaque to the applier.
type Spawn struct {
	Spec SpawnSpec
}

// Kill forwards a termination request to the supervision collaborator.
type Kill struct {
	Ref string
}

func (SetState) isDirective()         {}
func (UpdateState) isDirective()      {}
func (DeleteState) isDirective()      {}
func (ResetState) isDirective()       {}
func (Enqueue) isDirective()          {}
func (RegisterAction) isDirective()   {}
func (DeregisterAction) isDirective() {}
func (Spawn) isDirective()            {}
func (Kill) isDirective()             {}
