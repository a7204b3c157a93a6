package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/Zhima-Mochi/fooddelivery/internal/domain/outbox"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability/logctx"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	componentOutbox = "outbox"

	defaultQueueSize      = 1024
	defaultConcurrency    = 8
	defaultHandlerTimeout = 30 * time.Second

	// Wildcard subscribers receive every event.
	Wildcard = "*"
)

var ErrBusStopped = errors.New("outbox: bus stopped")

type Options struct {
	QueueSize      int
	Concurrency    int
	HandlerTimeout time.Duration
}

// envelope keeps the publisher's span so handlers log under the same trace.
type envelope struct {
	event   domoutbox.Event
	span    trace.SpanContext
	eventID string
}

// Bus is an in-process, non-durable fanout of domain events. Events are
// dispatched after the publishing transaction committed; a crash between
// commit and dispatch loses them.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]domoutbox.Handler

	// state guards stopped; publishers hold it shared while enqueuing.
	state     sync.RWMutex
	queue     chan envelope
	stopped   bool
	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	opts      Options
	log       observability.Logger
}

func NewBus(logger observability.Logger, opts Options) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = defaultHandlerTimeout
	}
	return &Bus{
		subs:  make(map[string][]domoutbox.Handler),
		queue: make(chan envelope, opts.QueueSize),
		done:  make(chan struct{}),
		opts:  opts,
		log:   logger.With(observability.F("component", componentOutbox)),
	}
}

var (
	_ domoutbox.Publisher  = (*Bus)(nil)
	_ domoutbox.Subscriber = (*Bus)(nil)
)

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

// Start launches the dispatch loop. It returns immediately.
func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		go b.dispatchLoop(context.WithoutCancel(ctx))
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop rejects new events, drains the queue and waits for the dispatch loop
// until ctx expires.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		// never started: nothing will drain, so close done here
		b.startOnce.Do(func() { close(b.done) })

		b.state.Lock()
		b.stopped = true
		close(b.queue)
		b.state.Unlock()

		select {
		case <-b.done:
		case <-ctx.Done():
			logctx.FromOr(ctx, b.log).Warn("event_bus_drain_aborted", observability.F("pending", len(b.queue)))
		}
		logctx.FromOr(ctx, b.log).Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	env := envelope{event: e, span: trace.SpanContextFromContext(ctx), eventID: uuid.NewString()}
	logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))

	b.state.RLock()
	defer b.state.RUnlock()
	if b.stopped {
		return ErrBusStopped
	}
	select {
	case b.queue <- env:
		logger.Debug("event_enqueued", observability.F("event_id", env.eventID))
		return nil
	case <-ctx.Done():
		logger.Warn("event_enqueue_aborted", observability.Err(ctx.Err()))
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for env := range b.queue {
		b.fanout(ctx, env)
	}
}

func (b *Bus) handlers(name string) []domoutbox.Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domoutbox.Handler, 0, len(b.subs[name])+len(b.subs[Wildcard]))
	out = append(out, b.subs[name]...)
	return append(out, b.subs[Wildcard]...)
}

func (b *Bus) fanout(ctx context.Context, env envelope) {
	name := env.event.EventName()
	handlers := b.handlers(name)
	if len(handlers) == 0 {
		b.log.Debug("event_dropped_no_subscriber", observability.F("event", name))
		return
	}

	if env.span.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, env.span)
	}
	ctx = eventContext(ctx, b.log, env.span, map[string]string{
		"event":    name,
		"event_id": env.eventID,
	})
	logger := logctx.FromOr(ctx, b.log)

	sem := make(chan struct{}, b.opts.Concurrency)
	var wg sync.WaitGroup
	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, b.opts.HandlerTimeout)
			defer cancel()
			if err := h(hctx, env.event); err != nil {
				logger.Warn("event_handler_error", observability.Err(err))
			}
		}()
	}
	wg.Wait()

	logger.Debug("event_fanned_out", observability.F("handlers", len(handlers)))
}

// eventContext attaches a logger carrying the trace identifiers and the
// supplied low-cardinality attributes.
func eventContext(ctx context.Context, base observability.Logger, sc trace.SpanContext, attrs map[string]string) context.Context {
	fields := make([]observability.Field, 0, len(attrs)+2)
	if sc.TraceID().IsValid() {
		fields = append(fields, observability.F("trace_id", sc.TraceID().String()))
	}
	if sc.SpanID().IsValid() {
		fields = append(fields, observability.F("span_id", sc.SpanID().String()))
	}
	for k, v := range attrs {
		if v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}
	return logctx.With(ctx, base.With(fields...))
}

// LogSink records every event it receives as a structured log line.
func LogSink(ctx context.Context, e domoutbox.Event) error {
	logger := logctx.From(ctx)
	if logger == nil {
		return nil
	}
	logger.Info("domain_event", observability.F("aggregate_id", domoutbox.KeyOf(e)))
	return nil
}
