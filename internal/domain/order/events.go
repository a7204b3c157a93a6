package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventCreated  = "order.created"
	EventCanceled = "order.canceled"
	EventRefunded = "order.refunded"
)

// CreatedEvent is emitted once an order and its stock reservations are committed.
type CreatedEvent struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	StoreID    string          `json:"store_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      int             `json:"items"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (CreatedEvent) EventName() string { return EventCreated }
func (e CreatedEvent) AggregateID() string { return e.OrderID }

func NewCreatedEvent(o *Order, now time.Time) CreatedEvent {
	return CreatedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		StoreID:    o.StoreID,
		TotalPrice: o.TotalPrice,
		Items:      len(o.Items),
		OccurredAt: now,
	}
}

// CanceledEvent is emitted after a cancellation restocked the order's products.
type CanceledEvent struct {
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	StoreID    string    `json:"store_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (CanceledEvent) EventName() string { return EventCanceled }
func (e CanceledEvent) AggregateID() string { return e.OrderID }

func NewCanceledEvent(o *Order, now time.Time) CanceledEvent {
	return CanceledEvent{OrderID: o.ID, CustomerID: o.CustomerID, StoreID: o.StoreID, OccurredAt: now}
}

// RefundedEvent is emitted after the payment gateway acknowledged a refund.
type RefundedEvent struct {
	OrderID         string          `json:"order_id"`
	CustomerID      string          `json:"customer_id"`
	PaymentIntentID string          `json:"payment_intent_id"`
	RefundID        string          `json:"refund_id"`
	Amount          decimal.Decimal `json:"amount"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

func (RefundedEvent) EventName() string { return EventRefunded }
func (e RefundedEvent) AggregateID() string { return e.OrderID }

func NewRefundedEvent(o *Order, refundID string, now time.Time) RefundedEvent {
	return RefundedEvent{
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		PaymentIntentID: o.PaymentIntentID,
		RefundID:        refundID,
		Amount:          o.TotalPrice,
		OccurredAt:      now,
	}
}
