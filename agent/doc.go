// Package agent provides the schema-validated state container at the heart
// of agentcell, together with the behavior abstraction that customizes it.
//
// A State bundles an agent's validated key/value state, its configuration,
// a FIFO queue of pending instructions and an ordered set of registered
// actions. One concrete State type serves every agent; per-agent
// customization happens through the Behavior interface (schema, action
// set, lifecycle hooks) rather than through generated types.
//
// The package also contains the instruction normalizer, which converts
// planning shorthand into canonical instructions, and the directive
// applier, which mutates a State from the declarative directives produced
// by runs.
//
// Ownership model: a State is exclusively owned and mutated by one logical
// owner at a time. Methods are not internally synchronized; concurrent
// callers must serialize through the owner.
package agent
