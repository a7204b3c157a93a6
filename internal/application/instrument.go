package application

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/outbox"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	spanPrefix     = "UC."
	publishPeer    = "outbox"
	publishTimeout = 300 * time.Millisecond
)

// Instrument wraps use case bodies with a span, RED metrics and a single
// use_case_done log entry.
type Instrument struct {
	tel          observability.Observability
	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewInstrument(service string, tel observability.Observability) *Instrument {
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()
	return &Instrument{
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

// Run is one use case invocation.
type Run struct {
	Span       trace.Span
	statusText string
	fields     []observability.Field
}

// Status overrides the status text reported for this run.
func (r *Run) Status(text string) { r.statusText = text }

// Field attaches an extra field to the use_case_done entry.
func (r *Run) Field(k string, v any) { r.fields = append(r.fields, observability.F(k, v)) }

// Logger returns the request-scoped logger tagged with the use case.
func (in *Instrument) Logger(ctx context.Context, useCase string) observability.Logger {
	return logctx.FromOr(ctx, in.log).With(observability.F("use_case", useCase))
}

// Do executes fn as useCase. When fn fails without setting a status, the
// status text is derived from the error kind.
func (in *Instrument) Do(ctx context.Context, useCase, spanName string, fn func(ctx context.Context, run *Run) error, attrs ...attribute.KeyValue) (err error) {
	logger := in.Logger(ctx, useCase)

	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tel.Tracer().Start(ctx, spanPrefix+spanName, attrs...)
	run := &Run{Span: span}
	start := time.Now()

	defer func() {
		lat := time.Since(start).Seconds()
		outcome := "success"
		statusText := run.statusText
		if err != nil {
			outcome = "error"
			if statusText == "" {
				statusText = errs.Code(err)
			}
		} else if statusText == "" {
			statusText = "OK"
		}

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		in.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
		in.durHistogram.Observe(lat,
			observability.L("use_case", useCase),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		fields = append(fields, run.fields...)
		if err != nil {
			fields = append(fields, observability.Err(err))
		}

		logger.Info("use_case_done", fields...)
	}()

	return fn(ctx, run)
}

// External records a call to an outside collaborator under peer/endpoint.
func (in *Instrument) External(peer, endpoint string, fn func() error) error {
	start := time.Now()
	err := fn()
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	in.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	in.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
	return err
}

// Publish emits e after the use case committed. A failed publish never fails
// the run; it is recorded as event_publish_error.
func (in *Instrument) Publish(ctx context.Context, run *Run, pub outbox.Publisher, e outbox.Event) {
	if pub == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := in.External(publishPeer, e.EventName(), func() error {
		return pub.Publish(pubCtx, e)
	})
	if err != nil {
		run.Field("event_publish_error", err.Error())
		return
	}
	run.Span.AddEvent(e.EventName())
}
