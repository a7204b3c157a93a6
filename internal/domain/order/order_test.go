package order

import (
	"testing"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testStore() *catalog.Store {
	return catalog.NewStore("s1", "partner-1", catalog.StoreDetails{
		Name:                  "Luigi",
		DeliveryTimeInMinutes: 30,
		DeliveryFee:           decimal.RequireFromString("2.50"),
	}, t0)
}

func testOrder(t *testing.T) (*Order, *catalog.Store) {
	t.Helper()
	s := testStore()
	p := catalog.NewProduct("p1", s.ID, catalog.ProductDetails{Name: "Pizza", Price: decimal.RequireFromString("10.00"), Quantity: 5}, t0)
	return New("o1", "c1", s, []Item{NewItem("i1", p, 2)}, "Main St 1", "pi_1", t0), s
}

func TestNewComputesTotalsExactly(t *testing.T) {
	s := testStore()
	a := catalog.NewProduct("a", s.ID, catalog.ProductDetails{Price: decimal.RequireFromString("0.10")}, t0)
	b := catalog.NewProduct("b", s.ID, catalog.ProductDetails{Price: decimal.RequireFromString("0.20")}, t0)

	o := New("o1", "c1", s, []Item{NewItem("i1", a, 3), NewItem("i2", b, 1)}, "", "", t0)

	assert.True(t, o.ItemsPrice.Equal(decimal.RequireFromString("0.50")), o.ItemsPrice.String())
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("3.00")), o.TotalPrice.String())
	assert.True(t, o.DeliveryFee.Equal(s.DeliveryFee))
}

func TestItemSnapshotIgnoresLaterEdits(t *testing.T) {
	p := catalog.NewProduct("p1", "s1", catalog.ProductDetails{Name: "Pizza", Price: decimal.NewFromInt(10)}, t0)
	it := NewItem("i1", p, 2)

	p.Apply(catalog.ProductDetails{Name: "Calzone", Price: decimal.NewFromInt(99)}, t0)

	assert.Equal(t, "Pizza", it.ProductName)
	assert.True(t, it.TotalPrice.Equal(decimal.NewFromInt(20)))
}

func TestStatusOf(t *testing.T) {
	o, s := testOrder(t)

	assert.Equal(t, StatusPending, StatusOf(o, s, t0.Add(20*time.Minute)))
	assert.Equal(t, StatusCompleted, StatusOf(o, s, t0.Add(30*time.Minute)))
	assert.Equal(t, StatusCompleted, StatusOf(o, nil, t0))

	o.IsCanceled = true
	assert.Equal(t, StatusCanceled, StatusOf(o, s, t0.Add(40*time.Minute)))
}

func TestCancelWithinWindow(t *testing.T) {
	o, s := testOrder(t)

	require.NoError(t, o.Cancel(s, t0.Add(20*time.Minute)))
	assert.True(t, o.IsCanceled)
	assert.ErrorIs(t, o.Cancel(s, t0.Add(21*time.Minute)), errs.ErrConflict)
}

func TestCancelAfterDeadline(t *testing.T) {
	o, s := testOrder(t)

	err := o.Cancel(s, t0.Add(40*time.Minute))
	assert.ErrorIs(t, err, errs.ErrOrderAlreadyCompleted)
	assert.False(t, o.IsCanceled)
}

func TestEnsureCancelableDoesNotMutate(t *testing.T) {
	o, s := testOrder(t)

	require.NoError(t, o.EnsureCancelable(s, t0))
	assert.False(t, o.IsCanceled)
}

func TestEnsureCreator(t *testing.T) {
	o, _ := testOrder(t)
	assert.NoError(t, o.EnsureCreator("c1"))
	assert.ErrorIs(t, o.EnsureCreator("c2"), errs.ErrNotAuthorized)
}
