package orders

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/events"
	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store       *repo.MemoryStore
	products    *repo.InMemoryProductRepository
	inventories *repo.InMemoryInventoryRepository
	orderRepo   *repo.InMemoryOrderRepository
	events      *events.Recorder
	clock       *testClock
	svc         *Service

	caller      auth.Caller
	otherCaller auth.Caller
	skuSeq      int
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithTimeout(t, 2*time.Second)
}

func newFixtureWithTimeout(t *testing.T, lockTimeout time.Duration) *fixture {
	t.Helper()

	s := repo.NewMemoryStore(lockTimeout)
	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	s.SetClock(clock.Now)

	main := s.AddStore(models.Store{Name: "Main", LowStockThreshold: 10, Currency: "EUR"})
	other := s.AddStore(models.Store{Name: "Other", LowStockThreshold: 10, Currency: "USD"})

	rec := &events.Recorder{}
	engine := NewEngine(s, rec, zap.NewNop(), WithClock(clock.Now))
	svc := NewService(engine,
		repo.NewInMemoryOrderRepository(s),
		repo.NewInMemoryInventoryRepository(s),
		repo.NewInMemoryStoreRepository(s),
		0,
	)
	// bcrypt is too slow for hundreds of orders.
	svc.hashPassword = func(p string) (string, error) { return "hashed:" + p, nil }

	return &fixture{
		store:       s,
		products:    repo.NewInMemoryProductRepository(s),
		inventories: repo.NewInMemoryInventoryRepository(s),
		orderRepo:   repo.NewInMemoryOrderRepository(s),
		events:      rec,
		clock:       clock,
		svc:         svc,
		caller:      auth.Caller{UserID: 1, PersonID: 1, StoreID: main.ID, Username: "staff", Role: auth.RoleStaff},
		otherCaller: auth.Caller{UserID: 2, PersonID: 2, StoreID: other.ID, Username: "intruder", Role: auth.RoleStaff},
	}
}

// product creates a product with stock units in storeID and returns it with its inventory row.
func (f *fixture) product(t *testing.T, storeID, stock int) (models.Product, models.Inventory) {
	t.Helper()

	f.skuSeq++
	p, err := f.products.Create(models.Product{
		StoreID:   storeID,
		SKU:       fmt.Sprintf("SKU-%03d", f.skuSeq),
		Name:      fmt.Sprintf("Product %d", f.skuSeq),
		UnitPrice: decimal.RequireFromString("2.50"),
		Inventory: stock,
	})
	require.NoError(t, err)

	items, err := f.inventories.ListByStore(storeID)
	require.NoError(t, err)
	for _, it := range items {
		if it.ProductID == p.ID {
			inv, err := f.inventories.GetByID(it.InventoryID)
			require.NoError(t, err)
			return p, inv
		}
	}
	t.Fatalf("no inventory row for product %d", p.ID)
	return models.Product{}, models.Inventory{}
}

// counters returns Product.Inventory and Inventory.Units.
func (f *fixture) counters(t *testing.T, productID, inventoryID int) (int, int) {
	t.Helper()

	p, err := f.products.GetByID(productID)
	require.NoError(t, err)
	inv, err := f.inventories.GetByID(inventoryID)
	require.NoError(t, err)
	return p.Inventory, inv.Units
}

func (f *fixture) order(t *testing.T, contact string, inventoryID, qty int) models.Order {
	t.Helper()

	o, err := f.svc.Create(t.Context(), f.caller, CreateOrder{Contact: contact, InventoryID: inventoryID, Quantity: qty})
	require.NoError(t, err)
	return o
}
