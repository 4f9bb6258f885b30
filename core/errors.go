package core

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes failures so callers and the retry policy can react
// without string matching.
type ErrorKind string

const (
	// KindValidation marks schema or contract violations. Never retried.
	KindValidation ErrorKind = "validation_error"
	// KindConfig marks configuration problems (bad defaults, disallowed
	// actions). Never retried, surfaced immediately.
	KindConfig ErrorKind = "config_error"
	// KindExecution marks failures inside an action body, including
	// recovered panics. Retried per policy.
	KindExecution ErrorKind = "execution_error"
	// KindTimeout marks a worker that exceeded its deadline or was
	// cancelled. Retried per policy.
	KindTimeout ErrorKind = "timeout"
	// KindCompensation marks a failed or timed-out compensation handler.
	// Terminal; never retried.
	KindCompensation ErrorKind = "compensation_error"
	// KindDirective marks a directive that could not be applied. Surfaced
	// after partially-applied directives, no rollback.
	KindDirective ErrorKind = "directive_error"
)

// Retryable reports whether the retry policy may re-attempt failures of
// this kind.
func (k ErrorKind) Retryable() bool {
	return k == KindExecution || k == KindTimeout
}

// Error is the typed error value returned by every agentcell layer. Lower
// layers never let raw faults escape; they are converted into an Error
// before crossing a package boundary.
type Error struct {
	Kind    ErrorKind      `json:"kind"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	Parent  error          `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Parent != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Parent)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the parent error to errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Parent }

// WithContext returns the error with the key/value pair added to its
// context map. The receiver is mutated and returned for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	e.Context[key] = value
	return e
}

// NewError constructs an Error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf constructs an Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError constructs an Error wrapping a parent cause.
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Parent: cause}
}

// AsError converts an arbitrary error into a typed *Error. A nil input
// returns nil; an existing *Error is returned as-is; anything else becomes
// an execution_error wrapping the cause.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return WrapError(KindExecution, err.Error(), err)
}

// KindOf extracts the ErrorKind from an error chain. Untyped errors report
// KindExecution; nil reports the empty kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindExecution
}
