// Package ledger owns the stock counter pair of a product: Product.Inventory
// and the matching Inventory.Units row. Both are always written together
// through a repo.Tx that already holds the product lock.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCounterDrift      = errors.New("stock counters drifted apart")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrMismatchedRow     = errors.New("inventory row does not belong to product")
)

// Entry describes why a delta is applied.
type Entry struct {
	Reason  string
	OrderID *int
	At      time.Time
}

// Apply adds delta to both counters. Either check failing leaves both
// untouched. A movement row is appended in the same transaction.
func Apply(ctx context.Context, tx repo.Tx, product models.Product, inv models.Inventory, delta int, entry Entry) (models.Product, models.Inventory, error) {
	if inv.ProductID != product.ID {
		return product, inv, fmt.Errorf("%w: inventory %d, product %d", ErrMismatchedRow, inv.ID, product.ID)
	}
	if product.Inventory+delta < 0 || inv.Units+delta < 0 {
		return product, inv, fmt.Errorf("%w: product %d has %d (row %d has %d), need %d",
			ErrInsufficientStock, product.ID, product.Inventory, inv.ID, inv.Units, -delta)
	}

	product.Inventory += delta
	inv.Units += delta
	if err := tx.SaveStock(ctx, product.ID, product.Inventory, inv.ID, inv.Units); err != nil {
		return product, inv, fmt.Errorf("failed to save stock: %w", err)
	}

	_, err := tx.LogMovement(ctx, models.Movement{
		ProductID:   product.ID,
		InventoryID: inv.ID,
		OrderID:     entry.OrderID,
		Delta:       delta,
		Reason:      entry.Reason,
		CreatedAt:   entry.At,
	})
	if err != nil {
		return product, inv, err
	}
	return product, inv, nil
}

// CheckDrift reports ErrCounterDrift when the pair disagrees.
func CheckDrift(product models.Product, inv models.Inventory) error {
	if product.Inventory != inv.Units {
		return fmt.Errorf("%w: product %d inventory=%d, row %d units=%d",
			ErrCounterDrift, product.ID, product.Inventory, inv.ID, inv.Units)
	}
	return nil
}
