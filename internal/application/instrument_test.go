package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEntry struct {
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]recordedEntry
	fixed   []observability.Field
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]recordedEntry{}}
}

func (l *recordingLogger) With(fields ...observability.Field) observability.Logger {
	return &recordingLogger{mu: l.mu, entries: l.entries, fixed: append(append([]observability.Field(nil), l.fixed...), fields...)}
}
func (l *recordingLogger) Debug(msg string, f ...observability.Field) { l.add(msg, f) }
func (l *recordingLogger) Info(msg string, f ...observability.Field)  { l.add(msg, f) }
func (l *recordingLogger) Warn(msg string, f ...observability.Field)  { l.add(msg, f) }
func (l *recordingLogger) Error(msg string, f ...observability.Field) { l.add(msg, f) }

func (l *recordingLogger) add(msg string, fs []observability.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := map[string]any{}
	for _, f := range append(append([]observability.Field(nil), l.fixed...), fs...) {
		m[f.Key] = f.Value
	}
	*l.entries = append(*l.entries, recordedEntry{msg: msg, fields: m})
}

type countingCounter struct {
	observability.Counter
	mu    sync.Mutex
	calls []map[string]string
}

func (c *countingCounter) Add(_ float64, labels ...observability.Label) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := map[string]string{}
	for _, l := range labels {
		m[l.Key] = l.Value
	}
	c.calls = append(c.calls, m)
}

type testObs struct {
	log     observability.Logger
	counter *countingCounter
}

func (o testObs) Tracer() observability.Tracer   { return observability.NopTracer() }
func (o testObs) Logger() observability.Logger   { return o.log }
func (o testObs) Metrics() observability.Metrics { return o }
func (o testObs) Counter(k observability.MetricKey) observability.Counter {
	if k == observability.MUsecaseRequests {
		return o.counter
	}
	return observability.NopCounter()
}
func (o testObs) Histogram(observability.MetricKey) observability.Histogram {
	return observability.NopHistogram()
}

func TestDoLogsSuccess(t *testing.T) {
	log := newRecordingLogger()
	counter := &countingCounter{}
	in := NewInstrument("order-service", testObs{log: log, counter: counter})

	err := in.Do(context.Background(), "order.create", "CreateOrder", func(ctx context.Context, run *Run) error {
		run.Field("order_id", "o1")
		return nil
	})
	require.NoError(t, err)

	require.Len(t, *log.entries, 1)
	e := (*log.entries)[0]
	assert.Equal(t, "use_case_done", e.msg)
	assert.Equal(t, "success", e.fields["outcome"])
	assert.Equal(t, "OK", e.fields["status"])
	assert.Equal(t, "order.create", e.fields["use_case"])
	assert.Equal(t, "order-service", e.fields["service"])
	assert.Equal(t, "o1", e.fields["order_id"])

	require.Len(t, counter.calls, 1)
	assert.Equal(t, "success", counter.calls[0]["outcome"])
}

func TestDoDerivesStatusFromErrorKind(t *testing.T) {
	log := newRecordingLogger()
	in := NewInstrument("svc", testObs{log: log, counter: &countingCounter{}})

	err := in.Do(context.Background(), "order.cancel", "CancelOrder", func(ctx context.Context, run *Run) error {
		return errs.NotFound("gone")
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	e := (*log.entries)[0]
	assert.Equal(t, "error", e.fields["outcome"])
	assert.Equal(t, "NOT_FOUND", e.fields["status"])
	assert.Equal(t, "gone", e.fields["error"])
}

func TestDoKeepsExplicitStatus(t *testing.T) {
	log := newRecordingLogger()
	in := NewInstrument("svc", testObs{log: log, counter: &countingCounter{}})

	_ = in.Do(context.Background(), "x", "X", func(ctx context.Context, run *Run) error {
		run.Status("PAYMENT_FAILED")
		return errors.New("boom")
	})
	assert.Equal(t, "PAYMENT_FAILED", (*log.entries)[0].fields["status"])
}

func TestNilObservabilityIsSafe(t *testing.T) {
	in := NewInstrument("svc", nil)
	assert.NoError(t, in.Do(context.Background(), "x", "X", func(context.Context, *Run) error { return nil }))
	assert.NoError(t, in.External("stripe", "refund", func() error { return nil }))
}
