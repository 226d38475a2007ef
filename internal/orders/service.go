package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/events"
	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const DefaultReceiptWindow = 120 * time.Second

// Service covers the order lifecycle around the engine: creation and edits
// while pending, product removal, and the read path.
type Service struct {
	*Engine
	orders        repo.OrderRepository
	inventories   repo.InventoryRepository
	stores        repo.StoreRepository
	receiptWindow time.Duration
	hashPassword  func(string) (string, error)
}

func NewService(engine *Engine, orders repo.OrderRepository, inventories repo.InventoryRepository, stores repo.StoreRepository, receiptWindow time.Duration) *Service {
	if receiptWindow <= 0 {
		receiptWindow = DefaultReceiptWindow
	}
	return &Service{
		Engine:        engine,
		orders:        orders,
		inventories:   inventories,
		stores:        stores,
		receiptWindow: receiptWindow,
		hashPassword:  auth.HashPassword,
	}
}

type CreateOrder struct {
	Contact     string
	InventoryID int
	Quantity    int
}

// Create inserts a pending order. The customer is upserted by contact; a new
// one gets a minimal profile derived from the contact. No stock moves.
func (s *Service) Create(ctx context.Context, caller auth.Caller, req CreateOrder) (models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "orders.create")
	defer span.End()

	contact := strings.TrimSpace(req.Contact)
	if contact == "" {
		return models.Order{}, ErrInvalidContact
	}
	if req.Quantity < 1 {
		return models.Order{}, ErrInvalidQuantity
	}

	hash, err := s.hashPassword(contact)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to hash customer password: %w", err)
	}

	var created models.Order
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		inv, err := tx.GetInventory(ctx, req.InventoryID)
		if err != nil {
			return err
		}
		if inv.StoreID != caller.StoreID {
			return fmt.Errorf("%w: inventory %d belongs to store %d", ErrForbidden, inv.ID, inv.StoreID)
		}

		person, err := tx.UpsertPersonByContact(ctx, models.Person{
			Name:         contact,
			Email:        contact + "@example.com",
			Contact:      contact,
			PasswordHash: hash,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert person: %w", err)
		}

		created, err = tx.InsertOrder(ctx, models.Order{
			Status:      models.StatusPending,
			InventoryID: inv.ID,
			CreatedBy:   caller.UserID,
			PersonID:    person.ID,
			Quantity:    req.Quantity,
			CreatedAt:   s.now(),
		})
		return err
	})
	if err != nil {
		err = busy(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Order{}, err
	}
	span.SetAttributes(attribute.Int("order.id", created.ID))

	s.logger.Info("order created",
		zap.Int("order_id", created.ID),
		zap.Int("inventory_id", created.InventoryID),
		zap.Int("quantity", created.Quantity),
		zap.Int("user_id", caller.UserID),
	)

	event := events.NewOrderEvent(events.TypeOrderCreated)
	event.OrderID = created.ID
	event.StoreID = caller.StoreID
	event.InventoryID = created.InventoryID
	event.Quantity = created.Quantity
	event.Status = string(created.Status)
	event.ActorID = caller.UserID
	s.publish(ctx, event)

	return created, nil
}

type EditOrder struct {
	InventoryID *int
	Quantity    *int
}

// Edit changes the line of a pending order.
func (s *Service) Edit(ctx context.Context, caller auth.Caller, orderID int, req EditOrder) (models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "orders.edit", traceOrder(orderID))
	defer span.End()

	if req.Quantity != nil && *req.Quantity < 1 {
		return models.Order{}, ErrInvalidQuantity
	}

	var updated models.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		current, err := tx.GetInventory(ctx, order.InventoryID)
		if err != nil {
			return err
		}
		if current.StoreID != caller.StoreID {
			return fmt.Errorf("%w: order %d belongs to store %d", ErrForbidden, orderID, current.StoreID)
		}

		target := current
		if req.InventoryID != nil && *req.InventoryID != current.ID {
			if target, err = tx.GetInventory(ctx, *req.InventoryID); err != nil {
				return err
			}
			if target.StoreID != caller.StoreID {
				return fmt.Errorf("%w: inventory %d belongs to store %d", ErrForbidden, target.ID, target.StoreID)
			}
		}

		productIDs := []int{current.ProductID}
		if target.ProductID != current.ProductID {
			productIDs = append(productIDs, target.ProductID)
		}
		sort.Ints(productIDs)
		for _, id := range productIDs {
			if _, err := tx.LockProduct(ctx, id); err != nil {
				return err
			}
		}

		if order, err = tx.LockOrder(ctx, orderID); err != nil {
			return err
		}
		if order.Status != models.StatusPending {
			return fmt.Errorf("%w: order %d is %s", ErrNotPending, orderID, order.Status)
		}
		if order.InventoryID != current.ID {
			return fmt.Errorf("%w: order %d moved to inventory %d", ErrBusy, orderID, order.InventoryID)
		}

		qty := order.Quantity
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		updated, err = tx.UpdateOrderLine(ctx, orderID, target.ID, qty, s.now())
		return err
	})
	if err != nil {
		err = busy(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Order{}, err
	}

	s.logger.Info("order edited",
		zap.Int("order_id", orderID),
		zap.Int("inventory_id", updated.InventoryID),
		zap.Int("quantity", updated.Quantity),
		zap.Int("user_id", caller.UserID),
	)

	event := events.NewOrderEvent(events.TypeOrderEdited)
	event.OrderID = updated.ID
	event.StoreID = caller.StoreID
	event.InventoryID = updated.InventoryID
	event.Quantity = updated.Quantity
	event.Status = string(updated.Status)
	event.ActorID = caller.UserID
	s.publish(ctx, event)

	return updated, nil
}

type RemovalResult struct {
	ProductID       int   `json:"product_id"`
	CancelledOrders []int `json:"cancelled_orders"`
}

// RemoveProduct deletes a product of the caller's store. Pending orders are
// cancelled first; confirmed orders block the removal with ErrProductInUse.
// Inventory rows, orders and movements of the product go with it.
func (s *Service) RemoveProduct(ctx context.Context, caller auth.Caller, productID int) (RemovalResult, error) {
	ctx, span := s.tracer.Start(ctx, "orders.remove_product")
	defer span.End()
	span.SetAttributes(attribute.Int("product.id", productID))

	result := RemovalResult{ProductID: productID, CancelledOrders: []int{}}
	var cancelled []models.Order

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if p.StoreID != caller.StoreID {
			return fmt.Errorf("%w: product %d belongs to store %d", ErrForbidden, productID, p.StoreID)
		}
		if _, err := tx.LockProduct(ctx, productID); err != nil {
			return err
		}

		orders, err := tx.ListProductOrders(ctx, productID)
		if err != nil {
			return err
		}

		now := s.now()
		for _, o := range orders {
			locked, err := tx.LockOrder(ctx, o.ID)
			if err != nil {
				return err
			}
			switch locked.Status {
			case models.StatusConfirmed:
				return fmt.Errorf("%w: order %d", ErrProductInUse, locked.ID)
			case models.StatusPending:
				c, err := tx.SaveOrderStatus(ctx, locked.ID, models.StatusCancelled, now)
				if err != nil {
					return err
				}
				cancelled = append(cancelled, c)
			}
		}

		return tx.DeleteProduct(ctx, productID)
	})
	if err != nil {
		err = busy(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RemovalResult{}, err
	}

	for _, o := range cancelled {
		result.CancelledOrders = append(result.CancelledOrders, o.ID)

		event := events.NewOrderEvent(events.TypeOrderStatusChanged)
		event.OrderID = o.ID
		event.StoreID = caller.StoreID
		event.InventoryID = o.InventoryID
		event.Quantity = o.Quantity
		event.PreviousStatus = string(models.StatusPending)
		event.Status = string(models.StatusCancelled)
		event.ActorID = caller.UserID
		s.publish(ctx, event)
	}

	s.logger.Info("product removed",
		zap.Int("product_id", productID),
		zap.Ints("cancelled_orders", result.CancelledOrders),
		zap.Int("user_id", caller.UserID),
	)
	return result, nil
}
