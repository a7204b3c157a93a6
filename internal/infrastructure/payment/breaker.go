package payment

import (
	"context"
	"errors"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	dompay "github.com/Zhima-Mochi/fooddelivery/internal/domain/payment"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"github.com/sony/gobreaker/v2"
)

var ErrProviderUnavailable = errs.New(errs.ErrUnavailable, "Payment provider is temporarily unavailable")

type BreakerConfig struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
	HalfOpenMax uint32
}

// Breaker trips after MaxFailures consecutive provider failures and rejects
// calls with ErrProviderUnavailable until OpenTimeout elapses.
type Breaker struct {
	next dompay.Gateway
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreaker(next dompay.Gateway, cfg BreakerConfig, log observability.Logger) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "payment"
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax == 0 {
		cfg.HalfOpenMax = 1
	}
	if log == nil {
		log = observability.NopLogger()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenMax,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errs.IsKind(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit_state_changed",
				observability.F("breaker", name),
				observability.F("from", from.String()),
				observability.F("to", to.String()),
			)
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

var _ dompay.Gateway = (*Breaker)(nil)

func (b *Breaker) CreateCheckoutSession(ctx context.Context, req dompay.CheckoutRequest) (*dompay.Session, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.CreateCheckoutSession(ctx, req)
	})
	if err != nil {
		return nil, translate(err)
	}
	return out.(*dompay.Session), nil
}

func (b *Breaker) Refund(ctx context.Context, req dompay.RefundRequest) (*dompay.Refund, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.Refund(ctx, req)
	})
	if err != nil {
		return nil, translate(err)
	}
	return out.(*dompay.Refund), nil
}

func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrProviderUnavailable
	}
	return err
}
