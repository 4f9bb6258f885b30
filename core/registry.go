package core

// BehaviorInfo describes a registered behavior for diagnostics.
type BehaviorInfo struct {
	Name        string
	Description string
	ActionNames []string
	Metadata    map[string]any
}

// Registry exposes behavior lookup for diagnostics and introspection. It
// is never required for correctness of execution.
type Registry interface {
	Lookup(name string) (BehaviorInfo, bool)
}
