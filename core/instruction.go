package core

// Instruction is the canonical unit of queued work: an action reference
// plus its parameters, shared context and per-call options. Instructions
// are produced by normalization and consumed in FIFO order by runners.
type Instruction struct {
	// ID uniquely identifies the instruction once enqueued. Normalization
	// leaves an empty ID untouched so it stays pure; the queue owner
	// assigns IDs at enqueue time.
	ID string

	// Action is the work to execute.
	Action Action

	// Params are the action inputs, validated against the action's
	// declared contract if present.
	Params map[string]any

	// Context carries caller-shared data handed to the action body.
	Context map[string]any

	// Options tune execution per instruction (timeout, max_retries,
	// initial_backoff, compensation).
	Options map[string]any
}

// ActionParams pairs an action with parameters, the shorthand planning
// input for "run this action with these params".
type ActionParams struct {
	Action Action
	Params map[string]any
}
