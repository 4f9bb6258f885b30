// Package schema provides declarative validation for string-keyed value maps.
// A Schema describes the declared fields of an agent's state or an action's
// parameters: their types, defaults and constraints. Validation checks only
// declared fields; unknown keys pass through untouched unless strict mode is
// requested. Schemas can be written literally or derived from Go structs via
// reflection (FromStruct).
package schema
