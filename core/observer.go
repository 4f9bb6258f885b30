package core

import "time"

// StartEvent is emitted before each execution attempt of an action.
type StartEvent struct {
	Action        string
	InstructionID string
	Attempt       int
	// ParamKeys summarizes the params without leaking their values.
	ParamKeys []string
}

// CompleteEvent is emitted after a successful execution attempt.
type CompleteEvent struct {
	Action         string
	InstructionID  string
	Attempt        int
	Duration       time.Duration
	DirectiveCount int
}

// ErrorEvent is emitted after a failed execution attempt.
type ErrorEvent struct {
	Action        string
	InstructionID string
	Attempt       int
	Duration      time.Duration
	Kind          ErrorKind
	// WillRetry reports whether the engine will attempt the action again.
	WillRetry bool
	// Compensated reports whether a compensation handler ran successfully
	// for a terminal failure.
	Compensated bool
}

// Observer receives execution lifecycle events. Implementations must be
// fast and must not panic; the engine calls them synchronously on the
// execution path. Wire format and transport are out of scope — only the
// event shape is a contract.
type Observer interface {
	ActionStarted(ev StartEvent)
	ActionCompleted(ev CompleteEvent)
	ActionFailed(ev ErrorEvent)
}

// NoOpObserver discards all events. Useful for testing or when
// observability is disabled.
type NoOpObserver struct{}

// ActionStarted discards the event.
func (NoOpObserver) ActionStarted(StartEvent) {}

// ActionCompleted discards the event.
func (NoOpObserver) ActionCompleted(CompleteEvent) {}

// ActionFailed discards the event.
func (NoOpObserver) ActionFailed(ErrorEvent) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

// ActionStarted forwards the event to all observers.
func (m MultiObserver) ActionStarted(ev StartEvent) {
	for _, o := range m {
		o.ActionStarted(ev)
	}
}

// ActionCompleted forwards the event to all observers.
func (m MultiObserver) ActionCompleted(ev CompleteEvent) {
	for _, o := range m {
		o.ActionCompleted(ev)
	}
}

// ActionFailed forwards the event to all observers.
func (m MultiObserver) ActionFailed(ev ErrorEvent) {
	for _, o := range m {
		o.ActionFailed(ev)
	}
}
