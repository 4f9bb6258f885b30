// Package supervision provides an in-process supervisor that runs spawn
// directives as monitored goroutines.
package supervision

import (
	"context"
	"sync"

	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/internal/util"
	"github.com/hupe1980/agentcell/logging"
)

// child tracks one supervised goroutine.
type child struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// InMemory runs each spawned spec as a goroutine tied to a cancellable
// context. Kill cancels the child's context and waits for it to exit.
// It satisfies core.Supervisor.
type InMemory struct {
	mu       sync.Mutex
	children map[string]*child
	baseCtx  context.Context
	logger   logging.Logger
}

// Options holds overrides passed to NewInMemory().
type Options struct {
	// Context is the parent context for all children. Defaults to
	// context.Background().
	Context context.Context
	// Logger receives supervision logs.
	Logger logging.Logger
}

// NewInMemory creates a supervisor with no children.
func NewInMemory(optFns ...func(o *Options)) *InMemory {
	opts := Options{
		Context: context.Background(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemory{
		children: map[string]*child{},
		baseCtx:  opts.Context,
		logger:   opts.Logger,
	}
}

// Spawn starts the spec's run function in a monitored goroutine and
// returns the child reference. A panic in the child is contained and
// logged; it never reaches the caller.
func (s *InMemory) Spawn(spec core.SpawnSpec) (string, error) {
	if spec.Run == nil {
		return "", core.NewError(core.KindConfig, "spawn spec requires a run function")
	}

	ref := util.NewID()
	ctx, cancel := context.WithCancel(s.baseCtx)
	c := &child{name: spec.Name, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.children[ref] = c
	s.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Supervised child panicked", "ref", ref, "name", spec.Name, "panic", r)
			}
			// Remove before signalling done so Kill observes the updated
			// child set once it returns.
			s.remove(ref)
			close(c.done)
		}()

		spec.Run(ctx)
	}()

	s.logger.Debug("Spawned child", "ref", ref, "name", spec.Name)

	return ref, nil
}

// Kill cancels the referenced child and waits for it to exit. Killing an
// unknown (or already finished) reference is an error.
func (s *InMemory) Kill(ref string) error {
	s.mu.Lock()
	c, ok := s.children[ref]
	s.mu.Unlock()

	if !ok {
		return core.Errorf(core.KindDirective, "unknown child reference %q", ref)
	}

	c.cancel()
	<-c.done

	s.logger.Debug("Killed child", "ref", ref, "name", c.name)

	return nil
}

// Active returns the number of running children.
func (s *InMemory) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.children)
}

// Shutdown cancels every child and waits for all of them, or until the
// context is done.
func (s *InMemory) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	pending := make([]*child, 0, len(s.children))
	for _, c := range s.children {
		c.cancel()
		pending = append(pending, c)
	}
	s.mu.Unlock()

	for _, c := range pending {
		select {
		case <-c.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (s *InMemory) remove(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.children, ref)
}
