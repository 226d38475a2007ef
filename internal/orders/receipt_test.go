package orders

import (
	"testing"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceipt_GroupsCheckoutBatch(t *testing.T) {
	f := newFixture(t)
	_, inv := f.product(t, f.caller.StoreID, 50)
	_, inv2 := f.product(t, f.caller.StoreID, 50)

	first := f.order(t, "ana@shop.test", inv.ID, 2)
	f.clock.Advance(60 * time.Second)
	second := f.order(t, "ana@shop.test", inv2.ID, 3)
	f.clock.Advance(61 * time.Second)
	third := f.order(t, "ana@shop.test", inv.ID, 1)
	f.clock.Advance(5 * time.Minute)
	f.order(t, "ana@shop.test", inv.ID, 7)

	// same customer, different creator
	colleague := f.caller
	colleague.UserID = 99
	f.clock.Advance(-5 * time.Minute)
	_, err := f.svc.Create(t.Context(), colleague, CreateOrder{Contact: "ana@shop.test", InventoryID: inv.ID, Quantity: 4})
	require.NoError(t, err)

	r, err := f.svc.Receipt(t.Context(), f.caller, first.ID)
	require.NoError(t, err)

	require.Len(t, r.Lines, 2)
	assert.Equal(t, first.ID, r.Lines[0].OrderID)
	assert.Equal(t, second.ID, r.Lines[1].OrderID)
	assert.True(t, decimal.RequireFromString("5.00").Equal(r.Lines[0].Subtotal))
	assert.True(t, decimal.RequireFromString("7.50").Equal(r.Lines[1].Subtotal))
	assert.True(t, decimal.RequireFromString("12.50").Equal(r.GrandTotal))
	assert.Equal(t, "ana@shop.test", r.PersonContact)
	assert.Equal(t, "EUR", r.Currency)

	// the middle order's window reaches both neighbours
	r, err = f.svc.Receipt(t.Context(), f.caller, second.ID)
	require.NoError(t, err)
	require.Len(t, r.Lines, 3)
	assert.Equal(t, third.ID, r.Lines[2].OrderID)
}

func TestReceipt_IncludesAllStatuses(t *testing.T) {
	f := newFixture(t)
	_, inv := f.product(t, f.caller.StoreID, 10)
	a := f.order(t, "ana@shop.test", inv.ID, 1)
	b := f.order(t, "ana@shop.test", inv.ID, 1)
	_, err := f.svc.Transition(t.Context(), b.ID, models.StatusCancelled, f.caller)
	require.NoError(t, err)

	r, err := f.svc.Receipt(t.Context(), f.caller, a.ID)
	require.NoError(t, err)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, models.StatusCancelled, r.Lines[1].Status)
}

func TestReceipt_OtherStore(t *testing.T) {
	f := newFixture(t)
	_, inv := f.product(t, f.caller.StoreID, 10)
	o := f.order(t, "ana@shop.test", inv.ID, 1)

	_, err := f.svc.Receipt(t.Context(), f.otherCaller, o.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Receipt(t.Context(), f.caller, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadPath(t *testing.T) {
	f := newFixture(t)
	_, inv := f.product(t, f.caller.StoreID, 10)
	f.product(t, f.otherCaller.StoreID, 10)
	a := f.order(t, "ana@shop.test", inv.ID, 1)
	f.clock.Advance(time.Second)
	b := f.order(t, "bob@shop.test", inv.ID, 1)
	_, err := f.svc.Transition(t.Context(), b.ID, models.StatusConfirmed, f.caller)
	require.NoError(t, err)

	views, total, err := f.svc.List(t.Context(), f.caller, repo.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, b.ID, views[0].ID)
	assert.Equal(t, a.ID, views[1].ID)

	confirmed := models.StatusConfirmed
	views, total, err = f.svc.List(t.Context(), f.caller, repo.OrderFilter{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, b.ID, views[0].ID)

	views, _, err = f.svc.List(t.Context(), f.caller, repo.OrderFilter{Contact: "ana@shop.test"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, a.ID, views[0].ID)

	_, total, err = f.svc.List(t.Context(), f.otherCaller, repo.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	items, err := f.svc.StoreInventory(t.Context(), f.caller)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 9, items[0].Units)

	v, err := f.svc.Get(t.Context(), f.caller, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@shop.test", v.PersonContact)

	_, err = f.svc.Get(t.Context(), f.otherCaller, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
