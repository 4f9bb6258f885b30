// Package runner implements execution strategies that drive an agent's
// pending instruction queue through the execution engine.
//
// Two strategies ship with the package: Simple executes exactly one
// pending instruction per cycle, Chain drains the queue sequentially and
// threads each map result into the next instruction's params. Both
// bracket the cycle with the behavior's before-run and after-run hooks
// and route unrecoverable failures through the error hook, which may
// substitute a recovered state.
package runner
