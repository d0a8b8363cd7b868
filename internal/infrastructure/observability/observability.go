package observability

import (
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Telemetry is the bundle handed to every use case, worker and handler.
type Telemetry struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics instruments
}

// instruments serves registered metrics by key and no-ops for anything unregistered,
// so a missing registration never panics at a call site.
type instruments struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m instruments) Counter(name observability.MetricKey) observability.Counter {
	if c := m.counters[name]; c != nil {
		return c
	}
	return observability.NopCounter()
}

func (m instruments) Histogram(name observability.MetricKey) observability.Histogram {
	if h := m.histograms[name]; h != nil {
		return h
	}
	return observability.NopHistogram()
}

// New bundles tracer, logger and instruments. Nil parts fall back to no-ops.
func New(
	tracer observability.Tracer,
	logger observability.Logger,
	counters map[observability.MetricKey]observability.Counter,
	histograms map[observability.MetricKey]observability.Histogram,
) *Telemetry {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Telemetry{
		tracer:  tracer,
		logger:  logger,
		metrics: instruments{counters: counters, histograms: histograms},
	}
}

// NewForService builds the production bundle: spans from the global otel provider, logs through
// base and every checkout metric registered on reg.
func NewForService(serviceName string, base *zap.Logger, reg prometheus.Registerer) *Telemetry {
	counters, histograms := RegisterDefaultMetrics(prometrics.New(reg, "", ""))
	return New(oteltrace.New(serviceName), zaplogger.New(base), counters, histograms)
}

func (t *Telemetry) Tracer() observability.Tracer { return t.tracer }

func (t *Telemetry) Logger() observability.Logger { return t.logger }

func (t *Telemetry) Metrics() observability.Metrics { return t.metrics }
