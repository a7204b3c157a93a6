// Package observability assembles the Observability provider from the
// tracing, logging and Prometheus adapters.
package observability

import (
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
)

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics instruments
}

func (p *provider) Tracer() observability.Tracer   { return p.tracer }
func (p *provider) Logger() observability.Logger   { return p.logger }
func (p *provider) Metrics() observability.Metrics { return p.metrics }

// instruments is immutable once built; lookups need no locking.
type instruments struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m instruments) Counter(key observability.MetricKey) observability.Counter {
	if c := m.counters[key]; c != nil {
		return c
	}
	return observability.NopCounter()
}

func (m instruments) Histogram(key observability.MetricKey) observability.Histogram {
	if h := m.histograms[key]; h != nil {
		return h
	}
	return observability.NopHistogram()
}

// New assembles a provider. Nil tracer or logger fall back to no-ops and
// keys missing from the maps resolve to no-op instruments.
func New(
	tracer observability.Tracer,
	logger observability.Logger,
	counters map[observability.MetricKey]observability.Counter,
	histograms map[observability.MetricKey]observability.Histogram,
) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	m := instruments{
		counters:   make(map[observability.MetricKey]observability.Counter, len(counters)),
		histograms: make(map[observability.MetricKey]observability.Histogram, len(histograms)),
	}
	for k, v := range counters {
		m.counters[k] = v
	}
	for k, v := range histograms {
		m.histograms[k] = v
	}
	return &provider{tracer: tracer, logger: logger, metrics: m}
}

// NewStandard registers the metric set every component reports into and
// assembles the provider around it.
func NewStandard(tracer observability.Tracer, logger observability.Logger, reg prometrics.Registry) observability.Observability {
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: reg.Counter(string(observability.MUsecaseRequests),
			"Total number of use case invocations.", "use_case", "outcome"),
		observability.MHTTPRequests: reg.Counter(string(observability.MHTTPRequests),
			"Total number of HTTP requests.", "method", "route", "status"),
		observability.MExternalRequests: reg.Counter(string(observability.MExternalRequests),
			"Calls to external collaborators.", "peer", "endpoint", "outcome"),
		observability.MEventsForwarded: reg.Counter(string(observability.MEventsForwarded),
			"Domain events forwarded to the broker.", "event", "outcome"),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: reg.Histogram(string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.", prometheus.DefBuckets, "use_case"),
		observability.MHTTPRequestDuration: reg.Histogram(string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.", prometheus.DefBuckets, "method", "route", "status"),
		observability.MExternalRequestDuration: reg.Histogram(string(observability.MExternalRequestDuration),
			"Duration of external calls in seconds.", prometheus.DefBuckets, "peer", "endpoint"),
	}
	return New(tracer, logger, counters, histograms)
}
