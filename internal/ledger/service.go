package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/observability"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Ledger runs the stock operations that happen outside order transitions.
type Ledger struct {
	store  repo.TxStore
	logger *zap.Logger
	now    func() time.Time
}

func New(store repo.TxStore, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, logger: logger, now: time.Now}
}

// Restock adds qty units to productID in the caller's store, creating the
// inventory row when missing.
func (l *Ledger) Restock(ctx context.Context, caller auth.Caller, productID, qty int) (models.Product, models.Inventory, error) {
	ctx, span := observability.Tracer().Start(ctx, "ledger.restock")
	defer span.End()
	span.SetAttributes(attribute.Int("product.id", productID), attribute.Int("restock.quantity", qty))

	if qty < 1 {
		return models.Product{}, models.Inventory{}, ErrInvalidQuantity
	}

	var product models.Product
	var inv models.Inventory
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if p.StoreID != caller.StoreID {
			return auth.ErrForbidden
		}

		if p, err = tx.LockProduct(ctx, productID); err != nil {
			return err
		}

		row, err := tx.FindInventory(ctx, caller.StoreID, productID)
		if errors.Is(err, repo.ErrInventoryNotFound) {
			row, err = tx.CreateInventory(ctx, caller.StoreID, productID, p.Inventory)
		}
		if err != nil {
			return err
		}
		if row, err = tx.LockInventory(ctx, row.ID); err != nil {
			return err
		}

		if err := CheckDrift(p, row); err != nil {
			l.logger.Warn("stock counter drift detected", zap.Error(err))
		}

		product, inv, err = Apply(ctx, tx, p, row, qty, Entry{Reason: models.MovementRestock, At: l.now()})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Product{}, models.Inventory{}, err
	}

	l.logger.Info("product restocked",
		zap.Int("product_id", productID),
		zap.Int("quantity", qty),
		zap.Int("inventory", product.Inventory),
		zap.Int("user_id", caller.UserID),
	)
	return product, inv, nil
}

type BackfillResult struct {
	Created       int `json:"created"`
	TotalProducts int `json:"total_products"`
}

// Backfill creates the missing inventory rows of a store's products with
// units equal to the product counter. Existing rows are left alone.
func (l *Ledger) Backfill(ctx context.Context, storeID int) (BackfillResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "ledger.backfill")
	defer span.End()
	span.SetAttributes(attribute.Int("store.id", storeID))

	var result BackfillResult
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		result = BackfillResult{}

		products, err := tx.ListStoreProducts(ctx, storeID)
		if err != nil {
			return err
		}
		result.TotalProducts = len(products)

		for _, p := range products {
			locked, err := tx.LockProduct(ctx, p.ID)
			if err != nil {
				return err
			}
			_, err = tx.FindInventory(ctx, storeID, p.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, repo.ErrInventoryNotFound) {
				return err
			}
			if _, err := tx.CreateInventory(ctx, storeID, p.ID, locked.Inventory); err != nil {
				return fmt.Errorf("failed to create inventory for product %d: %w", p.ID, err)
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return BackfillResult{}, err
	}

	l.logger.Info("inventory backfill finished",
		zap.Int("store_id", storeID),
		zap.Int("created", result.Created),
		zap.Int("total_products", result.TotalProducts),
	)
	return result, nil
}
