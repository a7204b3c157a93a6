package order

import (
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errs.NotFound("Order with this id doesn't exist")
	ErrNotCreator       = errs.NotAuthorized("Only the creator can perform this action.")
	ErrAlreadyCompleted = errs.New(errs.ErrOrderAlreadyCompleted, "Cannot cancel the order because it has already been completed.")
	ErrAlreadyCanceled  = errs.Conflict("Order has already been canceled.")
	ErrMixedStores      = errs.New(errs.ErrIncompatibleItems, "All items in one order must be from the same store")
)

// Item is a line of an order. Product fields are copied at order time and do
// not follow later product edits.
type Item struct {
	ID                 string
	ProductID          string
	Quantity           int
	ProductName        string
	ProductDescription string
	ProductImage       string
	ProductPrice       decimal.Decimal
	TotalPrice         decimal.Decimal
}

// NewItem snapshots p for qty units.
func NewItem(id string, p *catalog.Product, qty int) Item {
	return Item{
		ID:                 id,
		ProductID:          p.ID,
		Quantity:           qty,
		ProductName:        p.Name,
		ProductDescription: p.Description,
		ProductImage:       p.Image,
		ProductPrice:       p.Price,
		TotalPrice:         p.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// Order is immutable after creation except for IsCanceled.
type Order struct {
	ID              string
	CustomerID      string
	StoreID         string
	// PartnerID is the store owner at order time; it outlives the store.
	PartnerID       string
	Items           []Item
	ItemsPrice      decimal.Decimal
	DeliveryFee     decimal.Decimal
	TotalPrice      decimal.Decimal
	Address         string
	PaymentIntentID string
	IsCanceled      bool
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New prices items against store and stamps the order with now.
func New(id, customerID string, store *catalog.Store, items []Item, address, paymentIntentID string, now time.Time) *Order {
	itemsPrice := decimal.Zero
	for _, it := range items {
		itemsPrice = itemsPrice.Add(it.TotalPrice)
	}
	return &Order{
		ID:              id,
		CustomerID:      customerID,
		StoreID:         store.ID,
		PartnerID:       store.PartnerID,
		Items:           append([]Item(nil), items...),
		ItemsPrice:      itemsPrice,
		DeliveryFee:     store.DeliveryFee,
		TotalPrice:      itemsPrice.Add(store.DeliveryFee),
		Address:         address,
		PaymentIntentID: paymentIntentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (o *Order) EnsureCreator(customerID string) error {
	if o.CustomerID != customerID {
		return ErrNotCreator
	}
	return nil
}

// ReceivedBy reports whether partnerID owned the store when o was placed.
func (o *Order) ReceivedBy(partnerID string) bool {
	return partnerID != "" && o.PartnerID == partnerID
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]Item(nil), o.Items...)
	return &c
}
