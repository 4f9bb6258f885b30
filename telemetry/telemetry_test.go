package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/agentcell/core"
)

func TestPrometheusObserver_RecordsSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)

	obs.ActionCompleted(core.CompleteEvent{Action: "work", Attempt: 1, Duration: 10 * time.Millisecond})

	assert.Equal(t, float64(1), testutil.ToFloat64(obs.executions.WithLabelValues("work", "success")))
	assert.Equal(t, float64(0), testutil.ToFloat64(obs.retries.WithLabelValues("work")))
}

func TestPrometheusObserver_RecordsRetriedSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)

	obs.ActionFailed(core.ErrorEvent{Action: "work", Attempt: 1, Kind: core.KindExecution, WillRetry: true})
	obs.ActionFailed(core.ErrorEvent{Action: "work", Attempt: 2, Kind: core.KindTimeout, WillRetry: true})
	obs.ActionCompleted(core.CompleteEvent{Action: "work", Attempt: 3})

	assert.Equal(t, float64(2), testutil.ToFloat64(obs.retries.WithLabelValues("work")))
	assert.Equal(t, float64(1), testutil.ToFloat64(obs.executions.WithLabelValues("work", "success")))
}

func TestPrometheusObserver_RecordsTerminalFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)

	obs.ActionFailed(core.ErrorEvent{Action: "reserve", Attempt: 3, Kind: core.KindExecution, Compensated: true})

	assert.Equal(t, float64(1), testutil.ToFloat64(obs.executions.WithLabelValues("reserve", "execution_error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(obs.compensations.WithLabelValues("reserve", "success")))
}

func TestPrometheusObserver_RecordsCompensationFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)

	obs.ActionFailed(core.ErrorEvent{Action: "reserve", Attempt: 1, Kind: core.KindCompensation})

	assert.Equal(t, float64(1), testutil.ToFloat64(obs.compensations.WithLabelValues("reserve", "failure")))
}

func TestLogObserver_NilLoggerIsSafe(t *testing.T) {
	obs := NewLogObserver(nil)

	obs.ActionStarted(core.StartEvent{Action: "work"})
	obs.ActionCompleted(core.CompleteEvent{Action: "work"})
	obs.ActionFailed(core.ErrorEvent{Action: "work"})
}
