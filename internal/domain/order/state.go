package order

import (
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Deadline is the instant the order counts as delivered. A missing store
// yields the creation time.
func Deadline(o *Order, s *catalog.Store) time.Time {
	if s == nil {
		return o.CreatedAt
	}
	return o.CreatedAt.Add(s.DeliveryWindow())
}

// StatusOf derives the lifecycle status at now. Completion is never stored.
func StatusOf(o *Order, s *catalog.Store, now time.Time) Status {
	switch {
	case o.IsCanceled:
		return StatusCanceled
	case !now.Before(Deadline(o, s)):
		return StatusCompleted
	default:
		return StatusPending
	}
}

// Cancel moves a pending order to canceled. It fails once the delivery
// deadline has passed or when the order is already canceled.
func (o *Order) Cancel(s *catalog.Store, now time.Time) error {
	if o.IsCanceled {
		return ErrAlreadyCanceled
	}
	if now.After(Deadline(o, s)) {
		return ErrAlreadyCompleted
	}
	o.IsCanceled = true
	o.UpdatedAt = now
	return nil
}

// EnsureCancelable runs the Cancel checks without mutating o.
func (o *Order) EnsureCancelable(s *catalog.Store, now time.Time) error {
	return o.Clone().Cancel(s, now)
}
