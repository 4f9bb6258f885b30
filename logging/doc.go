// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug
// any structured logger. It also offers a richer AgentLogger with
// contextual helpers (agent, run, component) and domain specific logging
// helpers for actions and run cycles.
package logging
