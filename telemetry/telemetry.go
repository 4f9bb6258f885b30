// Package telemetry provides execution observers: a Prometheus-backed
// recorder and a logging observer. Both plug into the engine through the
// core.Observer interface; transport and scraping are up to the host
// application.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/logging"
)

// PrometheusObserver records execution lifecycle events as Prometheus
// metrics. It satisfies core.Observer.
type PrometheusObserver struct {
	executions    *prometheus.CounterVec
	retries       *prometheus.CounterVec
	compensations *prometheus.CounterVec
	durations     *prometheus.HistogramVec
}

// NewPrometheusObserver registers the metric vectors with the given
// registerer under the "agentcell" namespace. Passing nil uses the
// default registerer.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusObserver{
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcell",
			Name:      "action_executions_total",
			Help:      "Total action execution attempts by terminal status.",
		}, []string{"action", "status"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcell",
			Name:      "action_retries_total",
			Help:      "Total retried action attempts.",
		}, []string{"action"}),
		compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcell",
			Name:      "action_compensations_total",
			Help:      "Total compensation runs by result.",
		}, []string{"action", "result"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentcell",
			Name:      "action_duration_seconds",
			Help:      "Duration of action execution attempts.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action", "status"}),
	}
}

// ActionStarted is a no-op; starts are implied by completion counters.
func (p *PrometheusObserver) ActionStarted(core.StartEvent) {}

// ActionCompleted records a successful attempt.
func (p *PrometheusObserver) ActionCompleted(ev core.CompleteEvent) {
	p.executions.WithLabelValues(ev.Action, "success").Inc()
	p.durations.WithLabelValues(ev.Action, "success").Observe(ev.Duration.Seconds())
}

// ActionFailed records a failed attempt, distinguishing retried attempts
// from terminal failures.
func (p *PrometheusObserver) ActionFailed(ev core.ErrorEvent) {
	if ev.WillRetry {
		p.retries.WithLabelValues(ev.Action).Inc()
		return
	}

	p.executions.WithLabelValues(ev.Action, string(ev.Kind)).Inc()
	p.durations.WithLabelValues(ev.Action, "failure").Observe(ev.Duration.Seconds())

	if ev.Compensated {
		p.compensations.WithLabelValues(ev.Action, "success").Inc()
	} else if ev.Kind == core.KindCompensation {
		p.compensations.WithLabelValues(ev.Action, "failure").Inc()
	}
}

// LogObserver logs execution lifecycle events through the module logger.
// It satisfies core.Observer.
type LogObserver struct {
	logger logging.Logger
}

// NewLogObserver creates an observer writing to the given logger.
func NewLogObserver(logger logging.Logger) *LogObserver {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &LogObserver{logger: logger}
}

// ActionStarted logs the attempt start.
func (o *LogObserver) ActionStarted(ev core.StartEvent) {
	o.logger.Debug("Action started", "action", ev.Action, "instruction_id", ev.InstructionID, "attempt", ev.Attempt)
}

// ActionCompleted logs the successful attempt.
func (o *LogObserver) ActionCompleted(ev core.CompleteEvent) {
	o.logger.Info("Action completed", "action", ev.Action, "instruction_id", ev.InstructionID,
		"attempt", ev.Attempt, "duration", ev.Duration, "directives", ev.DirectiveCount)
}

// ActionFailed logs the failed attempt at warn level when a retry
// follows, error level otherwise.
func (o *LogObserver) ActionFailed(ev core.ErrorEvent) {
	if ev.WillRetry {
		o.logger.Warn("Action attempt failed, retrying", "action", ev.Action,
			"instruction_id", ev.InstructionID, "attempt", ev.Attempt, "kind", string(ev.Kind))
		return
	}
	o.logger.Error("Action failed", "action", ev.Action, "instruction_id", ev.InstructionID,
		"attempt", ev.Attempt, "kind", string(ev.Kind), "compensated", ev.Compensated)
}
