// Package core provides the foundational domain types and small interfaces
// used across agentcell. It defines the core abstractions for:
//
//   - Actions (units of executable work with optional param/output contracts)
//   - Instructions (normalized, queued invocations of an action)
//   - Directives (declarative state and queue mutations emitted by runs)
//   - ExecutionOutcome (the typed result of executing one action)
//   - Error (the typed error taxonomy shared by every layer)
//   - Observer / Supervisor / Registry (injectable collaborators)
//   - Queue (the explicit FIFO ring buffer backing pending work)
//
// The package intentionally keeps implementation concerns (state containers,
// execution engines, runner strategies) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
