package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*repo.MemoryStore, *Ledger, auth.Caller) {
	t.Helper()
	s := repo.NewMemoryStore(time.Second)
	st := s.AddStore(models.Store{Name: "Main", LowStockThreshold: 10, Currency: "USD"})
	return s, New(s, zap.NewNop()), auth.Caller{UserID: 1, StoreID: st.ID, Role: auth.RoleAdmin}
}

func createProduct(t *testing.T, s *repo.MemoryStore, storeID, stock int) (models.Product, models.Inventory) {
	t.Helper()
	p, err := repo.NewInMemoryProductRepository(s).Create(models.Product{
		StoreID: storeID, SKU: "SKU-1", Name: "Widget", UnitPrice: decimal.NewFromInt(3), Inventory: stock,
	})
	require.NoError(t, err)

	var inv models.Inventory
	err = s.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
		inv, err = tx.FindInventory(ctx, storeID, p.ID)
		return err
	})
	require.NoError(t, err)
	return p, inv
}

func TestApply_WritesBothCountersAndMovement(t *testing.T) {
	s, _, caller := setup(t)
	p, inv := createProduct(t, s, caller.StoreID, 10)

	orderID := 7
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
		p2, inv2, err := Apply(ctx, tx, p, inv, -4, Entry{Reason: models.MovementOrderConfirmed, OrderID: &orderID})
		require.NoError(t, err)
		assert.Equal(t, 6, p2.Inventory)
		assert.Equal(t, 6, inv2.Units)
		return nil
	})
	require.NoError(t, err)

	stored, err := repo.NewInMemoryProductRepository(s).GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Inventory)

	row, err := repo.NewInMemoryInventoryRepository(s).GetByID(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, row.Units)

	movements, _, err := repo.NewInMemoryMovementRepository(s).GetByProductID(p.ID, repo.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, -4, movements[0].Delta)
	assert.Equal(t, &orderID, movements[0].OrderID)
	assert.Equal(t, models.MovementInitial, movements[1].Reason)
}

func TestApply_InsufficientWritesNothing(t *testing.T) {
	s, _, caller := setup(t)
	p, inv := createProduct(t, s, caller.StoreID, 3)

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
		_, _, err := Apply(ctx, tx, p, inv, -5, Entry{Reason: models.MovementOrderConfirmed})
		return err
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	stored, err := repo.NewInMemoryProductRepository(s).GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Inventory)
}

func TestApply_RejectsForeignRow(t *testing.T) {
	s, _, caller := setup(t)
	p, inv := createProduct(t, s, caller.StoreID, 3)
	inv.ProductID = p.ID + 1

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
		_, _, err := Apply(ctx, tx, p, inv, 1, Entry{Reason: models.MovementRestock})
		return err
	})
	assert.ErrorIs(t, err, ErrMismatchedRow)
}

func TestCheckDrift(t *testing.T) {
	assert.NoError(t, CheckDrift(models.Product{Inventory: 4}, models.Inventory{Units: 4}))
	assert.ErrorIs(t, CheckDrift(models.Product{Inventory: 4}, models.Inventory{Units: 3}), ErrCounterDrift)
}

func TestRestock(t *testing.T) {
	s, l, caller := setup(t)
	p, _ := createProduct(t, s, caller.StoreID, 2)

	product, inv, err := l.Restock(context.Background(), caller, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, product.Inventory)
	assert.Equal(t, 7, inv.Units)

	movements, _, err := repo.NewInMemoryMovementRepository(s).GetByProductID(p.ID, repo.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.MovementRestock, movements[0].Reason)
	assert.Equal(t, 5, movements[0].Delta)
}

func TestRestock_CreatesMissingRow(t *testing.T) {
	s, l, caller := setup(t)
	p := s.AddProduct(models.Product{StoreID: caller.StoreID, SKU: "OLD", Name: "Legacy", Inventory: 4})

	product, inv, err := l.Restock(context.Background(), caller, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, product.Inventory)
	assert.Equal(t, 5, inv.Units)
}

func TestRestock_Rejects(t *testing.T) {
	s, l, caller := setup(t)
	p, _ := createProduct(t, s, caller.StoreID, 2)

	_, _, err := l.Restock(context.Background(), caller, p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, _, err = l.Restock(context.Background(), caller, 999, 1)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	stranger := caller
	stranger.StoreID = caller.StoreID + 1
	_, _, err = l.Restock(context.Background(), stranger, p.ID, 1)
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestBackfill(t *testing.T) {
	s, l, caller := setup(t)
	createProduct(t, s, caller.StoreID, 5)
	legacy := s.AddProduct(models.Product{StoreID: caller.StoreID, SKU: "OLD", Name: "Legacy", Inventory: 8})
	s.AddProduct(models.Product{StoreID: caller.StoreID + 1, SKU: "ELSEWHERE", Name: "Other", Inventory: 1})

	result, err := l.Backfill(context.Background(), caller.StoreID)
	require.NoError(t, err)
	assert.Equal(t, BackfillResult{Created: 1, TotalProducts: 2}, result)

	items, err := repo.NewInMemoryInventoryRepository(s).ListByStore(caller.StoreID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, legacy.ID, items[1].ProductID)
	assert.Equal(t, 8, items[1].Units)

	again, err := l.Backfill(context.Background(), caller.StoreID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
}
