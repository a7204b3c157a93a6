package catalog

import (
	"testing"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveAndRestock(t *testing.T) {
	now := time.Now()
	p := NewProduct("p1", "s1", ProductDetails{Name: "Pizza", Price: decimal.NewFromInt(10), Quantity: 5}, now)

	require.NoError(t, p.Reserve(2, now))
	assert.Equal(t, 3, p.Quantity)

	p.Restock(2, now)
	assert.Equal(t, 5, p.Quantity)
}

func TestReserveRejectsOversell(t *testing.T) {
	p := NewProduct("p1", "s1", ProductDetails{Quantity: 1}, time.Now())

	err := p.Reserve(2, time.Now())
	assert.ErrorIs(t, err, errs.ErrInsufficientQuantity)
	assert.Equal(t, "Not enough products available. Available quantity: 1", err.Error())
	assert.Equal(t, 1, p.Quantity)
}

func TestReserveRejectsNonPositive(t *testing.T) {
	p := NewProduct("p1", "s1", ProductDetails{Quantity: 1}, time.Now())
	assert.ErrorIs(t, p.Reserve(0, time.Now()), errs.ErrValidation)
}

func TestStoreOwnershipAndWindow(t *testing.T) {
	s := NewStore("s1", "partner-1", StoreDetails{Name: "Luigi", DeliveryTimeInMinutes: 30}, time.Now())

	assert.True(t, s.OwnedBy("partner-1"))
	assert.False(t, s.OwnedBy("partner-2"))
	assert.False(t, s.OwnedBy(""))
	assert.Equal(t, 30*time.Minute, s.DeliveryWindow())
}

func TestStoreCloneCopiesCoordinates(t *testing.T) {
	s := NewStore("s1", "p", StoreDetails{Coordinates: []Coordinate{{Latitude: 1, Longitude: 2}}}, time.Now())
	c := s.Clone()
	c.Coordinates[0].Latitude = 9

	assert.Equal(t, 1.0, s.Coordinates[0].Latitude)
}
