package core

// ExecutionOutcome is the typed result of executing one action: either a
// success carrying a result, or a failure carrying a typed error. Both
// variants may carry directives describing follow-up mutations.
type ExecutionOutcome struct {
	Result     any
	Directives []Directive
	Err        *Error
}

// Success builds a successful outcome.
func Success(result any) ExecutionOutcome {
	return ExecutionOutcome{Result: result}
}

// SuccessWith builds a successful outcome carrying directives.
func SuccessWith(result any, directives ...Directive) ExecutionOutcome {
	return ExecutionOutcome{Result: result, Directives: directives}
}

// Failure builds a failed outcome.
func Failure(err *Error) ExecutionOutcome {
	return ExecutionOutcome{Err: err}
}

// FailureWith builds a failed outcome preserving already-produced
// directives for inspection.
func FailureWith(err *Error, directives ...Directive) ExecutionOutcome {
	return ExecutionOutcome{Err: err, Directives: directives}
}

// OK reports whether the outcome is a success.
func (o ExecutionOutcome) OK() bool { return o.Err == nil }
