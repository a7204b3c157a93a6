package order

import (
	"context"
	"errors"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/application"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/fooddelivery/internal/domain/outbox"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/persistence"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService       = "order-service"
	useCaseOrderCreate = "order.create"
	spanPrefix         = "UC."
	publishPeer        = "outbox"
	publishTimeout     = 300 * time.Millisecond

	// maxAttempts bounds retries after a lost optimistic-concurrency race.
	maxAttempts = 3
)

// CreateOrderUseCase reserves stock and stores the order in one transaction.
type CreateOrderUseCase struct {
	orders      domain.Repository
	stores      StoreReader
	partners    PartnerReader
	products    catalog.ProductRepository
	tx          persistence.Transactor
	idGenerator application.IDGenerator
	publisher   domoutbox.Publisher
	now         application.Clock
	tel         observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewCreateOrderUseCase(
	orders domain.Repository,
	stores StoreReader,
	partners PartnerReader,
	products catalog.ProductRepository,
	tx persistence.Transactor,
	idGen application.IDGenerator,
	publisher domoutbox.Publisher,
	clock application.Clock,
	tel observability.Observability,
) *CreateOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	if clock == nil {
		clock = application.UTCClock
	}
	metricsProvider := tel.Metrics()

	return &CreateOrderUseCase{
		orders:       orders,
		stores:       stores,
		partners:     partners,
		products:     products,
		tx:           tx,
		idGenerator:  idGen,
		publisher:    publisher,
		now:          clock,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   metricsProvider.Counter(observability.MUsecaseRequests),
		durHistogram: metricsProvider.Histogram(observability.MUsecaseDuration),
		extCounter:   metricsProvider.Counter(observability.MExternalRequests),
		extHistogram: metricsProvider.Histogram(observability.MExternalRequestDuration),
	}
}

type CreateOrderInput struct {
	CustomerID      string
	StoreID         string
	Items           []ItemRequest
	Address         string
	PaymentIntentID string
}

type CreateOrderResult struct {
	Order  *domain.Order
	Status domain.Status
}

// Execute validates the basket, reserves stock and inserts the order. Either
// every reservation and the order commit, or nothing does.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseOrderCreate))

	var (
		created    *domain.Order
		store      *catalog.Store
		attempts   int
		publishErr error
	)

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.customer_id", cmd.CustomerID),
		attribute.String("order.store_id", cmd.StoreID),
		attribute.Int("order.lines", len(cmd.Items)),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			outcome = "error"
			if statusText == "OK" {
				statusText = errs.Code(err)
			}
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderCreate),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat,
			observability.L("use_case", useCaseOrderCreate),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("attempts", attempts),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if created != nil {
			fields = append(fields, observability.F("order_id", created.ID))
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.Err(err))
		}

		logger.Info("use_case_done", fields...)
	}()

	if cmd.CustomerID == "" {
		statusText = "CUSTOMER_ID_REQUIRED"
		return nil, errs.Validation("Customer ID is required.")
	}
	if verr := validateRequest(cmd.StoreID, cmd.Items); verr != nil {
		statusText = "VALIDATION_FAILED"
		return nil, verr
	}

	for attempts = 1; attempts <= maxAttempts; attempts++ {
		if cerr := ctx.Err(); cerr != nil {
			statusText = "CONTEXT_CANCELED"
			return nil, cerr
		}
		created, store, err = uc.attempt(ctx, cmd)
		if !errors.Is(err, errs.ErrConcurrentUpdate) {
			break
		}
		span.AddEvent("order.create_retry", trace.WithAttributes(attribute.Int("attempt", attempts)))
	}
	if attempts > maxAttempts {
		attempts = maxAttempts
	}
	if err != nil {
		created = nil
		return nil, wrapRepositoryError(err)
	}

	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		pubStart := time.Now()
		pubOutcome := "success"

		publishErr = uc.publisher.Publish(pubCtx, domain.NewCreatedEvent(created, created.CreatedAt))
		if publishErr != nil {
			pubOutcome = "error"
			statusText = "EVENT_PUBLISH_FAILED"
		}
		cancel()

		uc.extCounter.Add(1,
			observability.L("peer", publishPeer),
			observability.L("endpoint", domain.EventCreated),
			observability.L("outcome", pubOutcome),
		)
		uc.extHistogram.Observe(time.Since(pubStart).Seconds(),
			observability.L("peer", publishPeer),
			observability.L("endpoint", domain.EventCreated),
		)
	}

	span.SetAttributes(
		attribute.String("order.id", created.ID),
		attribute.String("order.total_price", created.TotalPrice.String()),
	)
	span.AddEvent("order.created", trace.WithAttributes(attribute.String("order.id", created.ID)))

	return &CreateOrderResult{Order: created, Status: domain.StatusOf(created, store, created.CreatedAt)}, nil
}

func (uc *CreateOrderUseCase) attempt(ctx context.Context, cmd CreateOrderInput) (*domain.Order, *catalog.Store, error) {
	var (
		created *domain.Order
		store   *catalog.Store
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := uc.now()
		b, err := resolveBasket(ctx, uc.stores, uc.partners, uc.products, uc.idGenerator, cmd.StoreID, cmd.Items, now)
		if err != nil {
			return err
		}
		for _, p := range b.products {
			if err := uc.products.Update(ctx, p); err != nil {
				return err
			}
		}
		o := domain.New(uc.idGenerator.NewID(), cmd.CustomerID, b.store, b.items, cmd.Address, cmd.PaymentIntentID, now)
		if err := uc.orders.Insert(ctx, o); err != nil {
			return err
		}
		created, store = o, b.store
		return nil
	})
	return created, store, err
}
