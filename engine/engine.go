package engine

import (
	"context"
	"sort"
	"time"

	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/logging"
	"github.com/hupe1980/agentcell/schema"
)

// Options configures an Engine.
type Options struct {
	// MaxRetries is the number of re-attempts after a retryable failure.
	MaxRetries int
	// Timeout is the per-attempt deadline. Zero disables the deadline;
	// the worker stays cancellable through the caller's context.
	Timeout time.Duration
	// InitialBackoff is the delay before the first retry; it doubles per
	// attempt up to MaxBackoff.
	InitialBackoff time.Duration
	// MaxBackoff caps the retry delay. Clamped to BackoffCap.
	MaxBackoff time.Duration
	// CompensationEnabled controls whether compensation handlers run on
	// terminal failure.
	CompensationEnabled bool
	// CompensationTimeout bounds the compensation handler. Zero means the
	// effective action timeout applies.
	CompensationTimeout time.Duration
	// Observer receives execution lifecycle events.
	Observer core.Observer
	// Logger receives execution logs.
	Logger logging.Logger
}

// Engine executes actions with validation, worker isolation, retry and
// compensation. An Engine is stateless between calls and safe for
// concurrent use.
type Engine struct {
	opts Options
}

// New creates a new execution engine.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxRetries:          1,
		Timeout:             30 * time.Second,
		InitialBackoff:      250 * time.Millisecond,
		MaxBackoff:          BackoffCap,
		CompensationEnabled: true,
		Observer:            core.NoOpObserver{},
		Logger:              logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Engine{opts: opts}
}

// callSettings are the engine options resolved for one Run call, after
// per-instruction overrides.
type callSettings struct {
	timeout       time.Duration
	retry         RetryPolicy
	compensate    bool
	compTimeout   time.Duration
	instructionID string
}

func (e *Engine) resolveCall(opts map[string]any) callSettings {
	call := callSettings{
		timeout: e.opts.Timeout,
		retry: RetryPolicy{
			MaxRetries:     e.opts.MaxRetries,
			InitialBackoff: e.opts.InitialBackoff,
			MaxBackoff:     e.opts.MaxBackoff,
		},
		compensate:  e.opts.CompensationEnabled,
		compTimeout: e.opts.CompensationTimeout,
	}

	if d, ok := optDuration(opts, "timeout"); ok {
		call.timeout = d
	}
	if n, ok := optInt(opts, "max_retries"); ok && n >= 0 {
		call.retry.MaxRetries = n
	}
	if d, ok := optDuration(opts, "initial_backoff"); ok && d > 0 {
		call.retry.InitialBackoff = d
	}
	if d, ok := optDuration(opts, "max_backoff"); ok && d > 0 {
		call.retry.MaxBackoff = d
	}
	if b, ok := opts["compensation"].(bool); ok {
		call.compensate = b
	}
	if d, ok := optDuration(opts, "compensation_timeout"); ok && d > 0 {
		call.compTimeout = d
	}
	if id, ok := opts["instruction_id"].(string); ok {
		call.instructionID = id
	}

	return call
}

// Run executes a single action to a terminal outcome: param validation,
// attempt loop with backoff, output validation and compensation on
// terminal failure. opts carries per-call overrides keyed "timeout",
// "max_retries", "initial_backoff", "max_backoff", "compensation",
// "compensation_timeout" and "instruction_id"; durations accept
// time.Duration or a number of milliseconds.
func (e *Engine) Run(
	ctx context.Context,
	action core.Action,
	params map[string]any,
	execCtx map[string]any,
	opts map[string]any,
) core.ExecutionOutcome {
	if action == nil {
		return core.Failure(core.NewError(core.KindConfig, "no action to execute"))
	}

	call := e.resolveCall(opts)

	if params == nil {
		params = map[string]any{}
	}
	if execCtx == nil {
		execCtx = map[string]any{}
	}

	// Contract validation happens before any attempt; violations are
	// terminal and skip the retry loop and compensation entirely.
	if pv, ok := action.(core.ParamsValidator); ok {
		validated, verr := applySchema(pv.ParamsSchema(), params, "invalid params for action "+action.Name())
		if verr != nil {
			verr = verr.WithContext("action", action.Name())
			e.opts.Observer.ActionFailed(core.ErrorEvent{
				Action:        action.Name(),
				InstructionID: call.instructionID,
				Kind:          verr.Kind,
			})
			e.opts.Logger.Error("Param validation failed", "action", action.Name(), "error", verr.Error())
			return core.Failure(verr)
		}
		params = validated
	}

	attempts := call.retry.MaxRetries + 1

	var (
		lastErr  *core.Error
		lastDirs []core.Directive
		lastDur  time.Duration
		attempt  int
	)

	for attempt = 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := call.retry.Delay(attempt - 2)
			e.opts.Logger.Debug("Retrying action", "action", action.Name(), "attempt", attempt, "backoff", delay)
			if err := sleepBackoff(ctx, delay); err != nil {
				lastErr = core.WrapError(core.KindTimeout, "backoff interrupted", err)
				break
			}
		}

		e.opts.Observer.ActionStarted(core.StartEvent{
			Action:        action.Name(),
			InstructionID: call.instructionID,
			Attempt:       attempt,
			ParamKeys:     paramKeys(params),
		})

		start := time.Now()
		result, directives, runErr := runIsolated(ctx, action, params, execCtx, call.timeout)
		lastDur = time.Since(start)

		if runErr == nil {
			runErr = validateOutput(action, result)
		}

		if runErr == nil {
			e.opts.Observer.ActionCompleted(core.CompleteEvent{
				Action:         action.Name(),
				InstructionID:  call.instructionID,
				Attempt:        attempt,
				Duration:       lastDur,
				DirectiveCount: len(directives),
			})
			e.opts.Logger.Debug("Action completed", "action", action.Name(), "attempt", attempt, "duration", lastDur)
			return core.SuccessWith(result, directives...)
		}

		lastErr = runErr
		lastDirs = directives

		willRetry := attempt < attempts && call.retry.ShouldRetry(runErr.Kind) && ctx.Err() == nil
		if !willRetry {
			break
		}

		e.opts.Observer.ActionFailed(core.ErrorEvent{
			Action:        action.Name(),
			InstructionID: call.instructionID,
			Attempt:       attempt,
			Duration:      lastDur,
			Kind:          runErr.Kind,
			WillRetry:     true,
		})
		e.opts.Logger.Warn("Action attempt failed", "action", action.Name(), "attempt", attempt, "error", runErr.Error())
	}

	lastErr = lastErr.WithContext("action", action.Name()).WithContext("attempts", attempt)

	compensated := false
	// Every failure reaching this point came out of an attempt that ran
	// the body, so side effects may exist and compensation applies — this
	// includes output contract violations.
	if comp, ok := action.(core.Compensator); ok && call.compensate {
		if cerr := e.runCompensation(ctx, comp, action, params, lastErr, execCtx, call); cerr != nil {
			e.opts.Observer.ActionFailed(core.ErrorEvent{
				Action:        action.Name(),
				InstructionID: call.instructionID,
				Attempt:       attempt,
				Duration:      lastDur,
				Kind:          cerr.Kind,
			})
			e.opts.Logger.Error("Compensation failed", "action", action.Name(), "error", cerr.Error())
			return core.FailureWith(cerr.WithContext("compensated", false), lastDirs...)
		}
		compensated = true
		lastErr = lastErr.WithContext("compensated", true)
	}

	e.opts.Observer.ActionFailed(core.ErrorEvent{
		Action:        action.Name(),
		InstructionID: call.instructionID,
		Attempt:       attempt,
		Duration:      lastDur,
		Kind:          lastErr.Kind,
		Compensated:   compensated,
	})
	e.opts.Logger.Error("Action failed", "action", action.Name(), "attempts", attempt, "error", lastErr.Error())

	return core.FailureWith(lastErr, lastDirs...)
}

// runCompensation invokes the compensation handler inside its own
// time-boxed worker. Compensation runs at most once per terminal failure.
func (e *Engine) runCompensation(
	ctx context.Context,
	comp core.Compensator,
	action core.Action,
	params map[string]any,
	cause *core.Error,
	execCtx map[string]any,
	call callSettings,
) *core.Error {
	timeout := call.compTimeout
	if timeout <= 0 {
		timeout = call.timeout
	}

	// The parent context may already be cancelled; compensation still has
	// to run, so it gets a fresh context bounded by its own deadline.
	compCtx := ctx
	if ctx.Err() != nil {
		compCtx = context.Background()
	}

	wrapped := core.NewActionFunc(action.Name()+":compensate", func(ctx context.Context, p map[string]any, ec map[string]any) (any, []core.Directive, error) {
		return nil, nil, comp.Compensate(ctx, p, cause, ec)
	})

	if _, _, err := runIsolated(compCtx, wrapped, params, execCtx, timeout); err != nil {
		// The handler's failure is the parent chain; the terminal failure
		// being compensated for stays visible in the context.
		return core.WrapError(core.KindCompensation, "compensation failed for action "+action.Name(), err).
			WithContext("cause", cause.Error())
	}
	return nil
}

// validateOutput checks a successful map result against the action's
// declared output contract, if any.
func validateOutput(action core.Action, result any) *core.Error {
	ov, ok := action.(core.OutputValidator)
	if !ok {
		return nil
	}
	values, ok := result.(map[string]any)
	if !ok {
		// Non-map results are not subject to the output contract.
		return nil
	}
	if err := ov.OutputSchema().Validate(values, false); err != nil {
		return core.WrapError(core.KindValidation, "invalid output from action "+action.Name(), err)
	}
	return nil
}

// applySchema merges schema defaults under the given values and validates
// the result.
func applySchema(s schema.Schema, values map[string]any, msg string) (map[string]any, *core.Error) {
	merged := s.Defaults()
	for k, v := range values {
		merged[k] = v
	}
	if err := s.Validate(merged, false); err != nil {
		return nil, core.WrapError(core.KindValidation, msg, err)
	}
	return merged, nil
}

func paramKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func optDuration(opts map[string]any, key string) (time.Duration, bool) {
	switch v := opts[key].(type) {
	case time.Duration:
		return v, true
	case int:
		return time.Duration(v) * time.Millisecond, true
	case int64:
		return time.Duration(v) * time.Millisecond, true
	case float64:
		return time.Duration(v * float64(time.Millisecond)), true
	default:
		return 0, false
	}
}

func optInt(opts map[string]any, key string) (int, bool) {
	switch v := opts[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
