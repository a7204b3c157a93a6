// Package prometrics backs the metric ports with Prometheus vectors.
package prometrics

import (
	"errors"
	"sync"

	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
)

type Registry interface {
	Counter(name, help string, labelKeys ...string) observability.Counter
	Histogram(name, help string, buckets []float64, labelKeys ...string) observability.Histogram
}

type registry struct {
	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
	namespace  string
	subsystem  string
	reg        prometheus.Registerer
}

// New registers on prometheus.DefaultRegisterer.
func New(namespace, subsystem string) Registry {
	return NewWithRegisterer(namespace, subsystem, prometheus.DefaultRegisterer)
}

func NewWithRegisterer(namespace, subsystem string, reg prometheus.Registerer) Registry {
	return &registry{
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
		namespace:  namespace,
		subsystem:  subsystem,
		reg:        reg,
	}
}

// Counter returns the vector registered under name, creating it on first use.
// A vector already present on the underlying registerer is adopted.
func (r *registry) Counter(name, help string, labelKeys ...string) observability.Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: name, Help: help,
	}, labelKeys)
	if err := r.reg.Register(cv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
		cv = are.ExistingCollector.(*prometheus.CounterVec)
	}
	c := &counter{v: cv, keys: labelKeys}
	r.counters[name] = c
	return c
}

func (r *registry) Histogram(name, help string, buckets []float64, labelKeys ...string) observability.Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: name, Help: help, Buckets: buckets,
	}, labelKeys)
	if err := r.reg.Register(hv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
		hv = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	h := &histogram{v: hv, keys: labelKeys}
	r.histograms[name] = h
	return h
}

type counter struct {
	v    *prometheus.CounterVec
	keys []string
}

func (c *counter) Add(d float64, labels ...observability.Label) {
	c.v.With(labelSet(c.keys, labels)).Add(d)
}

func (c *counter) Bind(labels ...observability.Label) observability.BoundCounter {
	return c.v.With(labelSet(c.keys, labels))
}

type histogram struct {
	v    *prometheus.HistogramVec
	keys []string
}

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	h.v.With(labelSet(h.keys, labels)).Observe(v)
}

func (h *histogram) Bind(labels ...observability.Label) observability.BoundHistogram {
	return h.v.With(labelSet(h.keys, labels))
}

// labelSet maps labels onto the declared keys. Missing keys get an empty
// value and undeclared labels are dropped, so With never panics.
func labelSet(keys []string, labels []observability.Label) prometheus.Labels {
	set := make(prometheus.Labels, len(keys))
	for _, k := range keys {
		set[k] = ""
	}
	for _, l := range labels {
		if _, ok := set[l.Key]; ok {
			set[l.Key] = l.Value
		}
	}
	return set
}
