package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func traceOrder(id int) trace.SpanStartOption {
	return trace.WithAttributes(attribute.Int("order.id", id))
}

// Get returns an order of the caller's store with its product and customer fields.
func (s *Service) Get(ctx context.Context, caller auth.Caller, orderID int) (models.OrderView, error) {
	_, span := s.tracer.Start(ctx, "orders.get", traceOrder(orderID))
	defer span.End()

	v, err := s.orders.GetView(orderID)
	if err != nil {
		return models.OrderView{}, err
	}
	if v.StoreID != caller.StoreID {
		return models.OrderView{}, fmt.Errorf("%w: order %d belongs to store %d", ErrForbidden, orderID, v.StoreID)
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, caller auth.Caller, of repo.OrderFilter) ([]models.OrderView, int, error) {
	_, span := s.tracer.Start(ctx, "orders.list")
	defer span.End()

	return s.orders.List(caller.StoreID, of)
}

// StoreInventory lists the caller's inventory rows with product SKU, name and price.
func (s *Service) StoreInventory(ctx context.Context, caller auth.Caller) ([]models.InventoryItem, error) {
	_, span := s.tracer.Start(ctx, "orders.store_inventory")
	defer span.End()

	return s.inventories.ListByStore(caller.StoreID)
}

type ReceiptLine struct {
	OrderID     int                `json:"order_id"`
	Status      models.OrderStatus `json:"status"`
	InventoryID int                `json:"inventory_id"`
	SKU         string             `json:"sku"`
	ProductName string             `json:"product_name"`
	Quantity    int                `json:"quantity"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	CreatedAt   time.Time          `json:"created_at"`
}

type Receipt struct {
	OrderID       int             `json:"order_id"`
	PersonID      int             `json:"person_id"`
	PersonName    string          `json:"person_name"`
	PersonContact string          `json:"person_contact"`
	PersonEmail   string          `json:"person_email"`
	PersonAddress string          `json:"person_address"`
	CreatedAt     time.Time       `json:"created_at"`
	Currency      string          `json:"currency"`
	Lines         []ReceiptLine   `json:"lines"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// Receipt groups the checkout batch of an order: orders from the same
// creator for the same customer in the caller's store created within the
// receipt window either side of the base order. Proximity in time is the
// only grouping signal.
func (s *Service) Receipt(ctx context.Context, caller auth.Caller, orderID int) (Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "orders.receipt", traceOrder(orderID))
	defer span.End()

	base, err := s.Get(ctx, caller, orderID)
	if err != nil {
		return Receipt{}, err
	}

	from := base.CreatedAt.Add(-s.receiptWindow)
	to := base.CreatedAt.Add(s.receiptWindow)
	batch, err := s.orders.ListBatch(caller.StoreID, base.CreatedBy, base.PersonID, from, to)
	if err != nil {
		return Receipt{}, err
	}

	currency := models.DefaultCurrency
	if s.stores != nil {
		store, err := s.stores.GetByID(caller.StoreID)
		if err != nil && !errors.Is(err, repo.ErrStoreNotFound) {
			return Receipt{}, err
		}
		if err == nil && store.Currency != "" {
			currency = store.Currency
		}
	}

	r := Receipt{
		OrderID:       base.ID,
		PersonID:      base.PersonID,
		PersonName:    base.PersonName,
		PersonContact: base.PersonContact,
		PersonEmail:   base.PersonEmail,
		PersonAddress: base.PersonAddress,
		CreatedAt:     base.CreatedAt,
		Currency:      currency,
		Lines:         make([]ReceiptLine, 0, len(batch)),
		GrandTotal:    decimal.Zero,
	}
	for _, v := range batch {
		subtotal := v.UnitPrice.Mul(decimal.NewFromInt(int64(v.Quantity)))
		r.Lines = append(r.Lines, ReceiptLine{
			OrderID:     v.ID,
			Status:      v.Status,
			InventoryID: v.InventoryID,
			SKU:         v.SKU,
			ProductName: v.ProductName,
			Quantity:    v.Quantity,
			UnitPrice:   v.UnitPrice,
			Subtotal:    subtotal,
			CreatedAt:   v.CreatedAt,
		})
		r.GrandTotal = r.GrandTotal.Add(subtotal)
	}
	return r, nil
}
