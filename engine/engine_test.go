package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/schema"
)

func sleeperAction(name string, d time.Duration) core.Action {
	return core.NewActionFunc(name, func(ctx context.Context, _ map[string]any, _ map[string]any) (any, []core.Directive, error) {
		select {
		case <-time.After(d):
			return "done", nil, nil
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	})
}

// flakyAction fails until the configured attempt succeeds.
type flakyAction struct {
	succeedOn int
	runs      int
}

func (a *flakyAction) Name() string { return "flaky" }

func (a *flakyAction) Run(context.Context, map[string]any, map[string]any) (any, []core.Directive, error) {
	a.runs++
	if a.runs < a.succeedOn {
		return nil, nil, errors.New("transient failure")
	}
	return "recovered", nil, nil
}

// compAction always fails and records compensation invocations.
type compAction struct {
	compErr       error
	runs          int
	compensations int
	compCause     error
}

func (a *compAction) Name() string { return "reserve" }

func (a *compAction) Run(context.Context, map[string]any, map[string]any) (any, []core.Directive, error) {
	a.runs++
	return nil, nil, errors.New("downstream unavailable")
}

func (a *compAction) Compensate(_ context.Context, _ map[string]any, cause error, _ map[string]any) error {
	a.compensations++
	a.compCause = cause
	return a.compErr
}

// validatedAction declares a params contract.
type validatedAction struct {
	runs     int
	lastMode any
}

func (a *validatedAction) Name() string { return "validated" }

func (a *validatedAction) ParamsSchema() schema.Schema {
	return schema.Schema{
		"count": {Type: schema.TypeInteger, Required: true},
		"mode":  {Type: schema.TypeString, Default: "fast"},
	}
}

func (a *validatedAction) Run(_ context.Context, params map[string]any, _ map[string]any) (any, []core.Directive, error) {
	a.runs++
	a.lastMode = params["mode"]
	return params["count"], nil, nil
}

// emitterAction declares an output contract.
type emitterAction struct {
	result map[string]any
}

func (a *emitterAction) Name() string { return "emitter" }

func (a *emitterAction) OutputSchema() schema.Schema {
	return schema.Schema{"value": {Type: schema.TypeInteger, Required: true}}
}

func (a *emitterAction) Run(context.Context, map[string]any, map[string]any) (any, []core.Directive, error) {
	return a.result, nil, nil
}

// recordingObserver captures lifecycle events for assertions.
type recordingObserver struct {
	starts    []core.StartEvent
	completes []core.CompleteEvent
	failures  []core.ErrorEvent
}

func (r *recordingObserver) ActionStarted(ev core.StartEvent) { r.starts = append(r.starts, ev) }

func (r *recordingObserver) ActionCompleted(ev core.CompleteEvent) {
	r.completes = append(r.completes, ev)
}

func (r *recordingObserver) ActionFailed(ev core.ErrorEvent) { r.failures = append(r.failures, ev) }

func fastEngine(optFns ...func(o *Options)) *Engine {
	base := []func(o *Options){
		func(o *Options) { o.InitialBackoff = time.Millisecond },
	}
	return New(append(base, optFns...)...)
}

func TestRun_Success(t *testing.T) {
	action := core.NewActionFunc("greet", func(context.Context, map[string]any, map[string]any) (any, []core.Directive, error) {
		return "hello", []core.Directive{core.SetState{Path: "greeted", Value: true}}, nil
	})

	outcome := New().Run(context.Background(), action, nil, nil, nil)

	require.True(t, outcome.OK())
	assert.Equal(t, "hello", outcome.Result)
	require.Len(t, outcome.Directives, 1)
}

func TestRun_TimeoutEnforced(t *testing.T) {
	e := fastEngine(func(o *Options) { o.MaxRetries = 0 })

	start := time.Now()
	outcome := e.Run(context.Background(), sleeperAction("slow", 500*time.Millisecond), nil, nil,
		map[string]any{"timeout": 100})
	elapsed := time.Since(start)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindTimeout, outcome.Err.Kind)
	// The deadline fires at ~100ms; the body's 500ms sleep must not leak
	// into the caller.
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	assert.Less(t, elapsed, 300*time.Millisecond)
}

func TestRun_ZeroTimeoutDisablesDeadline(t *testing.T) {
	e := fastEngine(func(o *Options) { o.MaxRetries = 0 })

	outcome := e.Run(context.Background(), sleeperAction("quick", 20*time.Millisecond), nil, nil,
		map[string]any{"timeout": 0})

	require.True(t, outcome.OK())
	assert.Equal(t, "done", outcome.Result)
}

func TestRun_RetrySucceedsOnThirdAttempt(t *testing.T) {
	action := &flakyAction{succeedOn: 3}
	e := fastEngine()

	outcome := e.Run(context.Background(), action, nil, nil, map[string]any{"max_retries": 3})

	require.True(t, outcome.OK())
	assert.Equal(t, "recovered", outcome.Result)
	assert.Equal(t, 3, action.runs)
}

func TestRun_RetriesExhausted(t *testing.T) {
	action := &flakyAction{succeedOn: 100}
	e := fastEngine(func(o *Options) { o.MaxRetries = 2 })

	outcome := e.Run(context.Background(), action, nil, nil, nil)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindExecution, outcome.Err.Kind)
	assert.Equal(t, 3, action.runs)
	assert.Equal(t, 3, outcome.Err.Context["attempts"])
}

func TestRun_NonRetryableKindStopsLoop(t *testing.T) {
	runs := 0
	action := core.NewActionFunc("misconfigured", func(context.Context, map[string]any, map[string]any) (any, []core.Directive, error) {
		runs++
		return nil, nil, core.NewError(core.KindConfig, "bad wiring")
	})
	e := fastEngine(func(o *Options) { o.MaxRetries = 5 })

	outcome := e.Run(context.Background(), action, nil, nil, nil)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindConfig, outcome.Err.Kind)
	assert.Equal(t, 1, runs)
}

func TestRun_ParamValidationFailsFast(t *testing.T) {
	action := &validatedAction{}

	outcome := New().Run(context.Background(), action, map[string]any{"mode": "slow"}, nil, nil)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindValidation, outcome.Err.Kind)
	// The body never ran: contract violations skip execution and retry.
	assert.Equal(t, 0, action.runs)
}

func TestRun_ParamDefaultsApplied(t *testing.T) {
	action := &validatedAction{}

	outcome := New().Run(context.Background(), action, map[string]any{"count": 2}, nil, nil)

	require.True(t, outcome.OK())
	assert.Equal(t, 2, outcome.Result)
	assert.Equal(t, "fast", action.lastMode)
}

func TestRun_PanicBecomesExecutionError(t *testing.T) {
	action := core.NewActionFunc("crasher", func(context.Context, map[string]any, map[string]any) (any, []core.Directive, error) {
		panic("boom")
	})
	e := fastEngine(func(o *Options) { o.MaxRetries = 0 })

	outcome := e.Run(context.Background(), action, nil, nil, nil)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindExecution, outcome.Err.Kind)
	assert.Contains(t, outcome.Err.Message, "panicked")
	assert.NotEmpty(t, outcome.Err.Context["stack"])
}

func TestRun_CompensationRunsOnceOnTerminalFailure(t *testing.T) {
	action := &compAction{}
	e := fastEngine(func(o *Options) { o.MaxRetries = 2 })

	outcome := e.Run(context.Background(), action, nil, nil, nil)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindExecution, outcome.Err.Kind)
	assert.Equal(t, true, outcome.Err.Context["compensated"])
	assert.Equal(t, 3, action.runs)
	// Compensation fires exactly once, after retries are exhausted.
	assert.Equal(t, 1, action.compensations)
	assert.ErrorContains(t, action.compCause, "downstream unavailable")
}

func TestRun_CompensationFailureIsCompensationError(t *testing.T) {
	action := &compAction{compErr: errors.New("undo failed")}
	e := fastEngine(func(o *Options) { o.MaxRetries = 0 })

	outcome := e.Run(context.Background(), action, nil, nil, nil)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindCompensation, outcome.Err.Kind)
	assert.Equal(t, false, outcome.Err.Context["compensated"])
	// The outcome names both failures: the handler's in the chain and the
	// terminal failure it was compensating for in the context.
	assert.ErrorContains(t, outcome.Err, "undo failed")
	assert.Contains(t, outcome.Err.Context["cause"], "downstream unavailable")
}

func TestNew_NegativeMaxRetriesClamped(t *testing.T) {
	runs := 0
	action := core.NewActionFunc("broken", func(context.Context, map[string]any, map[string]any) (any, []core.Directive, error) {
		runs++
		return nil, nil, errors.New("nope")
	})
	e := New(func(o *Options) { o.MaxRetries = -1 })

	outcome := e.Run(context.Background(), action, nil, nil, nil)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindExecution, outcome.Err.Kind)
	assert.Equal(t, 1, runs)
}

func TestRun_CompensationDisabledPerCall(t *testing.T) {
	action := &compAction{}
	e := fastEngine(func(o *Options) { o.MaxRetries = 0 })

	outcome := e.Run(context.Background(), action, nil, nil, map[string]any{"compensation": false})

	require.False(t, outcome.OK())
	assert.Equal(t, 0, action.compensations)
	assert.NotContains(t, outcome.Err.Context, "compensated")
}

func TestRun_OutputContractViolation(t *testing.T) {
	action := &emitterAction{result: map[string]any{"value": "not-an-int"}}
	e := fastEngine(func(o *Options) { o.MaxRetries = 0 })

	outcome := e.Run(context.Background(), action, nil, nil, nil)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindValidation, outcome.Err.Kind)
}

func TestRun_OutputContractSatisfied(t *testing.T) {
	action := &emitterAction{result: map[string]any{"value": 42}}

	outcome := New().Run(context.Background(), action, nil, nil, nil)

	require.True(t, outcome.OK())
}

func TestRun_ObserverSeesAttemptLifecycle(t *testing.T) {
	obs := &recordingObserver{}
	action := &flakyAction{succeedOn: 3}
	e := fastEngine(func(o *Options) {
		o.MaxRetries = 3
		o.Observer = obs
	})

	outcome := e.Run(context.Background(), action, map[string]any{"x": 1}, nil,
		map[string]any{"instruction_id": "ins-1"})

	require.True(t, outcome.OK())
	require.Len(t, obs.starts, 3)
	assert.Equal(t, 1, obs.starts[0].Attempt)
	assert.Equal(t, []string{"x"}, obs.starts[0].ParamKeys)
	assert.Equal(t, "ins-1", obs.starts[0].InstructionID)

	require.Len(t, obs.failures, 2)
	assert.True(t, obs.failures[0].WillRetry)
	assert.True(t, obs.failures[1].WillRetry)

	require.Len(t, obs.completes, 1)
	assert.Equal(t, 3, obs.completes[0].Attempt)
}

func TestRun_NilAction(t *testing.T) {
	outcome := New().Run(context.Background(), nil, nil, nil, nil)

	require.False(t, outcome.OK())
	assert.Equal(t, core.KindConfig, outcome.Err.Kind)
}

func TestRunAsync_WaitReturnsOutcome(t *testing.T) {
	e := fastEngine()

	h := e.RunAsync(context.Background(), sleeperAction("quick", 5*time.Millisecond), nil, nil, nil)

	outcome, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.OK())
	assert.Equal(t, "done", outcome.Result)
}

func TestRunAsync_CancelAbortsExecution(t *testing.T) {
	e := fastEngine(func(o *Options) { o.MaxRetries = 0 })

	h := e.RunAsync(context.Background(), sleeperAction("slow", time.Second), nil, nil, nil)
	time.Sleep(10 * time.Millisecond)
	h.Cancel()

	outcome, err := h.Wait(context.Background())
	require.NoError(t, err)
	require.False(t, outcome.OK())
	assert.Equal(t, core.KindTimeout, outcome.Err.Kind)
}

func TestRunAsync_WaitHonorsContext(t *testing.T) {
	e := fastEngine()
	h := e.RunAsync(context.Background(), sleeperAction("slow", time.Second), nil, nil, nil)
	defer h.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
