package prometrics

import (
	"testing"

	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterRegistersOnceAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer("", "", reg)

	c := r.Counter("usecase_requests_total", "help", "use_case", "outcome")
	again := r.Counter("usecase_requests_total", "help", "use_case", "outcome")

	c.Add(1, observability.L("use_case", "order.create"), observability.L("outcome", "success"))
	again.Bind(observability.L("use_case", "order.create"), observability.L("outcome", "success")).Add(2)

	n, err := testutil.GatherAndCount(reg, "usecase_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cv := c.(*counter).v
	assert.Equal(t, 3.0, testutil.ToFloat64(cv.WithLabelValues("order.create", "success")))
}

func TestHistogramObserves(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer("fd", "", reg)

	h := r.Histogram("usecase_duration_seconds", "help", prometheus.DefBuckets, "use_case")
	h.Observe(0.2, observability.L("use_case", "order.cancel"))

	n, err := testutil.GatherAndCount(reg, "fd_usecase_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLabelDriftDoesNotPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewWithRegisterer("", "", reg).Counter("events_forwarded_total", "help", "event", "outcome")

	assert.NotPanics(t, func() {
		c.Add(1, observability.L("event", "order.created"), observability.L("unexpected", "x"))
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(c.(*counter).v.WithLabelValues("order.created", "")))
}

func TestAdoptsCollectorRegisteredElsewhere(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewWithRegisterer("", "", reg).Counter("http_requests_total", "help", "method")
	second := NewWithRegisterer("", "", reg).Counter("http_requests_total", "help", "method")

	first.Add(1, observability.L("method", "GET"))
	second.Add(1, observability.L("method", "GET"))

	assert.Equal(t, 2.0, testutil.ToFloat64(first.(*counter).v.WithLabelValues("GET")))
}
