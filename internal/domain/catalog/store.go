package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coordinate is one vertex of a store's delivery area. The area is stored as
// supplied; it is not used to restrict deliveries.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Store struct {
	ID                    string
	PartnerID             string
	Name                  string
	Description           string
	Address               string
	City                  string
	PostalCode            string
	Phone                 string
	Category              string
	DeliveryTimeInMinutes int
	DeliveryFee           decimal.Decimal
	Image                 string
	ImagePublicID         string
	Coordinates           []Coordinate
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// StoreDetails holds the partner-editable fields of a store.
type StoreDetails struct {
	Name                  string
	Description           string
	Address               string
	City                  string
	PostalCode            string
	Phone                 string
	Category              string
	DeliveryTimeInMinutes int
	DeliveryFee           decimal.Decimal
	Coordinates           []Coordinate
}

func NewStore(id, partnerID string, d StoreDetails, now time.Time) *Store {
	s := &Store{ID: id, PartnerID: partnerID, CreatedAt: now}
	s.Apply(d, now)
	return s
}

func (s *Store) Apply(d StoreDetails, now time.Time) {
	s.Name = d.Name
	s.Description = d.Description
	s.Address = d.Address
	s.City = d.City
	s.PostalCode = d.PostalCode
	s.Phone = d.Phone
	s.Category = d.Category
	s.DeliveryTimeInMinutes = d.DeliveryTimeInMinutes
	s.DeliveryFee = d.DeliveryFee
	s.Coordinates = append([]Coordinate(nil), d.Coordinates...)
	s.UpdatedAt = now
}

func (s *Store) OwnedBy(partnerID string) bool {
	return s != nil && partnerID != "" && s.PartnerID == partnerID
}

// DeliveryWindow is how long after creation an order from this store is considered delivered.
func (s *Store) DeliveryWindow() time.Duration {
	return time.Duration(s.DeliveryTimeInMinutes) * time.Minute
}

func (s *Store) SetImage(url, publicID string, now time.Time) {
	s.Image = url
	s.ImagePublicID = publicID
	s.UpdatedAt = now
}

func (s *Store) Clone() *Store {
	if s == nil {
		return nil
	}
	c := *s
	c.Coordinates = append([]Coordinate(nil), s.Coordinates...)
	return &c
}
