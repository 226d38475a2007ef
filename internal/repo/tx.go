package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

// TxStore runs fn inside one transaction. fn's error rolls everything back;
// row locks taken through Tx are released when WithinTx returns.
type TxStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the transactional view used by the stock ledger and order engine.
// Get* methods read without locking. Lock* methods take an exclusive row
// lock and fail with ErrLockTimeout when the wait exceeds the store's bound.
// Callers lock in the fixed order Product, Inventory, Order.
type Tx interface {
	GetProduct(ctx context.Context, id int) (models.Product, error)
	GetInventory(ctx context.Context, id int) (models.Inventory, error)
	FindInventory(ctx context.Context, storeID, productID int) (models.Inventory, error)
	GetOrder(ctx context.Context, id int) (models.Order, error)

	LockProduct(ctx context.Context, id int) (models.Product, error)
	LockInventory(ctx context.Context, id int) (models.Inventory, error)
	LockOrder(ctx context.Context, id int) (models.Order, error)

	// SaveStock writes both counters of a product's stock pair.
	SaveStock(ctx context.Context, productID, productInventory, inventoryID, units int) error
	CreateInventory(ctx context.Context, storeID, productID, units int) (models.Inventory, error)
	LogMovement(ctx context.Context, m models.Movement) (models.Movement, error)

	InsertOrder(ctx context.Context, o models.Order) (models.Order, error)
	UpdateOrderLine(ctx context.Context, id, inventoryID, quantity int, at time.Time) (models.Order, error)
	SaveOrderStatus(ctx context.Context, id int, status models.OrderStatus, at time.Time) (models.Order, error)
	// UpsertPersonByContact inserts p or, when its contact exists, returns the stored person.
	UpsertPersonByContact(ctx context.Context, p models.Person) (models.Person, error)

	ListStoreProducts(ctx context.Context, storeID int) ([]models.Product, error)
	ListProductOrders(ctx context.Context, productID int) ([]models.Order, error)
	DeleteProduct(ctx context.Context, id int) error
}
