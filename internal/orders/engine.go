package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/events"
	"github.com/rogerio-castellano/order-tracker/internal/ledger"
	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/observability"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Engine applies order status transitions and their stock effects.
// It keeps no state between calls; everything lives behind repo.TxStore.
type Engine struct {
	store     repo.TxStore
	publisher events.Publisher
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

func NewEngine(store repo.TxStore, publisher events.Publisher, logger *zap.Logger, opts ...Option) *Engine {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:     store,
		publisher: publisher,
		logger:    logger,
		tracer:    observability.Tracer(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transition moves an order to newStatus. Locks are taken Product, Inventory,
// Order; the state check runs against the locked order row. Nothing is
// written unless every check passes.
func (e *Engine) Transition(ctx context.Context, orderID int, newStatus models.OrderStatus, caller auth.Caller) (models.Order, error) {
	ctx, span := e.tracer.Start(ctx, "orders.transition", trace.WithAttributes(
		attribute.Int("order.id", orderID),
		attribute.String("order.new_status", string(newStatus)),
		attribute.Int("store.id", caller.StoreID),
	))
	defer span.End()

	newStatus, err := ParseStatus(string(newStatus))
	if err != nil {
		return models.Order{}, err
	}

	var updated models.Order
	var previous models.OrderStatus
	var storeID int

	err = e.store.WithinTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		inv, err := tx.GetInventory(ctx, order.InventoryID)
		if err != nil {
			return err
		}
		if inv.StoreID != caller.StoreID {
			return fmt.Errorf("%w: order %d belongs to store %d", ErrForbidden, orderID, inv.StoreID)
		}
		storeID = inv.StoreID

		product, err := tx.LockProduct(ctx, inv.ProductID)
		if err != nil {
			return err
		}
		if inv, err = tx.LockInventory(ctx, inv.ID); err != nil {
			return err
		}
		if order, err = tx.LockOrder(ctx, orderID); err != nil {
			return err
		}
		if order.InventoryID != inv.ID {
			return fmt.Errorf("%w: order %d moved to inventory %d", ErrBusy, orderID, order.InventoryID)
		}

		if !CanTransition(order.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
		}

		if err := ledger.CheckDrift(product, inv); err != nil {
			e.logger.Warn("stock counter drift detected", zap.Int("order_id", orderID), zap.Error(err))
		}

		now := e.now()
		if delta := stockDelta(order.Status, newStatus, order.Quantity); delta != 0 {
			reason := models.MovementOrderConfirmed
			if delta > 0 {
				reason = models.MovementOrderCancelled
			}
			entry := ledger.Entry{Reason: reason, OrderID: &order.ID, At: now}
			if _, _, err := ledger.Apply(ctx, tx, product, inv, delta, entry); err != nil {
				return err
			}
		}

		previous = order.Status
		updated, err = tx.SaveOrderStatus(ctx, order.ID, newStatus, now)
		return err
	})
	if err != nil {
		err = busy(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Info("order transition rejected",
			zap.Int("order_id", orderID),
			zap.String("status", string(newStatus)),
			zap.Int("user_id", caller.UserID),
			zap.Error(err),
		)
		return models.Order{}, err
	}

	e.logger.Info("order transitioned",
		zap.Int("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("to", string(newStatus)),
		zap.Int("quantity", updated.Quantity),
		zap.Int("user_id", caller.UserID),
	)

	event := events.NewOrderEvent(events.TypeOrderStatusChanged)
	event.OrderID = updated.ID
	event.StoreID = storeID
	event.InventoryID = updated.InventoryID
	event.Quantity = updated.Quantity
	event.PreviousStatus = string(previous)
	event.Status = string(updated.Status)
	event.ActorID = caller.UserID
	e.publish(ctx, event)

	return updated, nil
}

// publish never fails the caller; the transaction is already committed.
func (e *Engine) publish(ctx context.Context, event events.OrderEvent) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Error("failed to publish order event",
			zap.String("type", event.Type),
			zap.Int("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

// busy marks lock timeouts as retryable.
func busy(err error) error {
	if errors.Is(err, repo.ErrLockTimeout) && !errors.Is(err, ErrBusy) {
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return err
}
