// Package registry provides an in-memory behavior registry for
// diagnostics and discovery within a single process.
package registry

import (
	"sort"
	"sync"

	"github.com/hupe1980/agentcell/core"
)

// InMemory is a thread-safe behavior registry. It satisfies
// core.Registry.
type InMemory struct {
	mu        sync.RWMutex
	behaviors map[string]core.BehaviorInfo
}

// NewInMemory creates an empty registry.
func NewInMemory() *InMemory {
	return &InMemory{behaviors: map[string]core.BehaviorInfo{}}
}

// Register adds or replaces a behavior entry. An empty name is rejected.
func (r *InMemory) Register(info core.BehaviorInfo) error {
	if info.Name == "" {
		return core.NewError(core.KindConfig, "behavior info requires a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.behaviors[info.Name] = info

	return nil
}

// Deregister removes the named behavior entry. Unknown names are a
// no-op.
func (r *InMemory) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.behaviors, name)
}

// Lookup returns the behavior entry for the given name.
func (r *InMemory) Lookup(name string) (core.BehaviorInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.behaviors[name]
	return info, ok
}

// Names returns all registered behavior names, sorted.
func (r *InMemory) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.behaviors))
	for name := range r.behaviors {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
