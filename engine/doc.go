// Package engine implements the execution engine that runs one action at a
// time with contract validation, worker isolation, retry with exponential
// backoff, hard timeouts and compensating failure handling.
//
// Every action body runs inside an isolated, monitored worker goroutine:
// a crash in action code cannot corrupt the caller's control state, a hard
// wall-clock timeout can force termination, and cancellation is available
// through the async handle. Raw faults never escape the worker boundary —
// they are converted into typed execution errors.
package engine
