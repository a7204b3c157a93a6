package catalog

import (
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/shopspring/decimal"
)

// Product belongs to exactly one store. Products are soft-deleted so that order
// items keep a valid reference. Version guards concurrent stock mutations.
type Product struct {
	ID            string
	StoreID       string
	Name          string
	Description   string
	Price         decimal.Decimal
	Quantity      int
	Image         string
	ImagePublicID string
	IsDeleted     bool
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ProductDetails struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

func NewProduct(id, storeID string, d ProductDetails, now time.Time) *Product {
	p := &Product{ID: id, StoreID: storeID, CreatedAt: now}
	p.Apply(d, now)
	return p
}

func (p *Product) Apply(d ProductDetails, now time.Time) {
	p.Name = d.Name
	p.Description = d.Description
	p.Price = d.Price
	p.Quantity = d.Quantity
	p.UpdatedAt = now
}

// Reserve takes qty units out of stock. Quantity never drops below zero.
func (p *Product) Reserve(qty int, now time.Time) error {
	if qty <= 0 {
		return errs.Validation("Quantity for product ID %s must be greater than zero.", p.ID)
	}
	if p.Quantity < qty {
		return errs.New(errs.ErrInsufficientQuantity, "Not enough products available. Available quantity: %d", p.Quantity)
	}
	p.Quantity -= qty
	p.UpdatedAt = now
	return nil
}

func (p *Product) Restock(qty int, now time.Time) {
	if qty <= 0 {
		return
	}
	p.Quantity += qty
	p.UpdatedAt = now
}

func (p *Product) SoftDelete(now time.Time) {
	p.IsDeleted = true
	p.UpdatedAt = now
}

func (p *Product) SetImage(url, publicID string, now time.Time) {
	p.Image = url
	p.ImagePublicID = publicID
	p.UpdatedAt = now
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
