package repo

import (
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// ProductRepository covers product details. Stock counters only change
// through a Tx.
type ProductRepository interface {
	// Create inserts the product together with its inventory row and an initial movement.
	Create(product models.Product) (models.Product, error)
	GetByID(id int) (models.Product, error)
	GetBySKU(storeID int, sku string) (models.Product, error)
	Filter(storeID int, pf ProductFilter) ([]models.Product, int, error)
	UpdateDetails(product models.Product) (models.Product, error)
}

type InventoryRepository interface {
	GetByID(id int) (models.Inventory, error)
	ListByStore(storeID int) ([]models.InventoryItem, error)
}

type OrderRepository interface {
	GetView(id int) (models.OrderView, error)
	List(storeID int, of OrderFilter) ([]models.OrderView, int, error)
	// ListBatch returns the store's orders by createdBy for personID created
	// in [from, to], oldest first.
	ListBatch(storeID, createdBy, personID int, from, to time.Time) ([]models.OrderView, error)
}

type MovementRepository interface {
	GetByProductID(productID int, mf MovementFilter) ([]models.Movement, int, error)
}

type UserRepository interface {
	GetByUsername(username string) (models.User, error)
	GetByID(id int) (models.User, error)
	// RegisterStore creates the store, the owner's person and the admin user at once.
	RegisterStore(store models.Store, person models.Person, user models.User) (models.Store, models.User, error)
	CreateUser(person models.Person, user models.User) (models.User, error)
}

// PersonRepository manages customers. Contact is unique; Create and
// UpdateByContact also refuse an email another person already uses.
type PersonRepository interface {
	// ListCustomers returns the distinct persons with at least one order in
	// the store, by ID.
	ListCustomers(storeID int, pf PersonFilter) ([]models.Person, int, error)
	Create(person models.Person) (models.Person, error)
	GetByContact(contact string) (models.Person, error)
	GetByEmail(email string) (models.Person, error)
	UpdateByContact(contact string, upd PersonUpdate) (models.Person, error)
}

type StoreRepository interface {
	GetByID(id int) (models.Store, error)
	// UpdateSettings replaces the editable fields of the store with store.ID.
	UpdateSettings(store models.Store) (models.Store, error)
}

type MostOrderedProduct struct {
	Name         string `json:"name"`
	OrderedUnits int    `json:"ordered_units"`
}

type Metrics struct {
	TotalProducts      int                `json:"total_products"`
	LowStockCount      int                `json:"low_stock_count"`
	OrdersByStatus     map[string]int     `json:"orders_by_status"`
	ShippedRevenue     decimal.Decimal    `json:"shipped_revenue"`
	MostOrderedProduct MostOrderedProduct `json:"most_ordered_product"`
}

type MetricsRepository interface {
	GetDashboardMetrics(storeID int) (Metrics, error)
}
