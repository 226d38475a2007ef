package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

// MemoryStore keeps every entity in maps guarded by one mutex. It backs the
// in-memory repositories and implements TxStore with per-row lock channels
// and writes staged until commit.
type MemoryStore struct {
	mu          sync.RWMutex
	lockTimeout time.Duration
	now         func() time.Time

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	stores      map[int]models.Store
	persons     map[int]models.Person
	users       map[int]models.User
	products    map[int]models.Product
	inventories map[int]models.Inventory
	orders      map[int]models.Order
	movements   []models.Movement
	seq         map[string]int
}

func NewMemoryStore(lockTimeout time.Duration) *MemoryStore {
	s := &MemoryStore{
		lockTimeout: lockTimeout,
		now:         time.Now,
		locks:       map[string]chan struct{}{},
	}
	s.reset()
	return s
}

func (s *MemoryStore) reset() {
	s.stores = map[int]models.Store{}
	s.persons = map[int]models.Person{}
	s.users = map[int]models.User{}
	s.products = map[int]models.Product{}
	s.inventories = map[int]models.Inventory{}
	s.orders = map[int]models.Order{}
	s.movements = []models.Movement{}
	s.seq = map[string]int{}
}

// Clear drops all data. Row locks are kept.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// ClearCatalog drops products, inventory rows, orders and movements. Stores,
// persons and users stay.
func (s *MemoryStore) ClearCatalog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = map[int]models.Product{}
	s.inventories = map[int]models.Inventory{}
	s.orders = map[int]models.Order{}
	s.movements = []models.Movement{}
}

// SetClock replaces the time source used for timestamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// nextID must be called with mu held for writing.
func (s *MemoryStore) nextID(kind string) int {
	s.seq[kind]++
	return s.seq[kind]
}

func (s *MemoryStore) rowLock(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &memoryTx{
		s:              s,
		held:           map[string]chan struct{}{},
		productStock:   map[int]int{},
		inventoryUnits: map[int]int{},
		newInventories: map[int]models.Inventory{},
		orders:         map[int]models.Order{},
		deleted:        map[int]bool{},
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryTx struct {
	s    *MemoryStore
	held map[string]chan struct{}

	productStock   map[int]int
	inventoryUnits map[int]int
	newInventories map[int]models.Inventory
	orders         map[int]models.Order
	movements      []models.Movement
	deleted        map[int]bool
}

func (t *memoryTx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}

	ch := t.s.rowLock(key)
	timer := time.NewTimer(t.s.lockTimeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s", ErrLockTimeout, key)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *memoryTx) release() {
	for key, ch := range t.held {
		<-ch
		delete(t.held, key)
	}
}

func (t *memoryTx) commit() {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, stock := range t.productStock {
		if p, ok := s.products[id]; ok {
			p.Inventory = stock
			p.UpdatedAt = now
			s.products[id] = p
		}
	}
	for id, inv := range t.newInventories {
		if _, ok := s.products[inv.ProductID]; ok {
			s.inventories[id] = inv
		}
	}
	for id, units := range t.inventoryUnits {
		if inv, ok := s.inventories[id]; ok {
			inv.Units = units
			s.inventories[id] = inv
		}
	}
	for id, o := range t.orders {
		s.orders[id] = o
	}
	s.movements = append(s.movements, t.movements...)

	for productID := range t.deleted {
		s.deleteProductLocked(productID)
	}
}

// deleteProductLocked removes a product and everything hanging off it.
func (s *MemoryStore) deleteProductLocked(productID int) {
	delete(s.products, productID)
	for id, inv := range s.inventories {
		if inv.ProductID != productID {
			continue
		}
		delete(s.inventories, id)
		for oid, o := range s.orders {
			if o.InventoryID == id {
				delete(s.orders, oid)
			}
		}
	}
	kept := s.movements[:0]
	for _, m := range s.movements {
		if m.ProductID != productID {
			kept = append(kept, m)
		}
	}
	s.movements = kept
}

func (t *memoryTx) GetProduct(_ context.Context, id int) (models.Product, error) {
	if t.deleted[id] {
		return models.Product{}, ErrProductNotFound
	}
	t.s.mu.RLock()
	p, ok := t.s.products[id]
	t.s.mu.RUnlock()
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	if stock, ok := t.productStock[id]; ok {
		p.Inventory = stock
	}
	return p, nil
}

func (t *memoryTx) GetInventory(_ context.Context, id int) (models.Inventory, error) {
	inv, ok := t.newInventories[id]
	if !ok {
		t.s.mu.RLock()
		inv, ok = t.s.inventories[id]
		t.s.mu.RUnlock()
	}
	if !ok || t.deleted[inv.ProductID] {
		return models.Inventory{}, ErrInventoryNotFound
	}
	if units, ok := t.inventoryUnits[id]; ok {
		inv.Units = units
	}
	return inv, nil
}

func (t *memoryTx) FindInventory(ctx context.Context, storeID, productID int) (models.Inventory, error) {
	for id, inv := range t.newInventories {
		if inv.StoreID == storeID && inv.ProductID == productID {
			return t.GetInventory(ctx, id)
		}
	}

	t.s.mu.RLock()
	found := 0
	for id, inv := range t.s.inventories {
		if inv.StoreID == storeID && inv.ProductID == productID {
			found = id
			break
		}
	}
	t.s.mu.RUnlock()

	if found == 0 {
		return models.Inventory{}, ErrInventoryNotFound
	}
	return t.GetInventory(ctx, found)
}

func (t *memoryTx) GetOrder(_ context.Context, id int) (models.Order, error) {
	if o, ok := t.orders[id]; ok {
		return o, nil
	}
	t.s.mu.RLock()
	o, ok := t.s.orders[id]
	t.s.mu.RUnlock()
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (t *memoryTx) LockProduct(ctx context.Context, id int) (models.Product, error) {
	if err := t.lock(ctx, fmt.Sprintf("product:%d", id)); err != nil {
		return models.Product{}, err
	}
	return t.GetProduct(ctx, id)
}

func (t *memoryTx) LockInventory(ctx context.Context, id int) (models.Inventory, error) {
	if err := t.lock(ctx, fmt.Sprintf("inventory:%d", id)); err != nil {
		return models.Inventory{}, err
	}
	return t.GetInventory(ctx, id)
}

func (t *memoryTx) LockOrder(ctx context.Context, id int) (models.Order, error) {
	if err := t.lock(ctx, fmt.Sprintf("order:%d", id)); err != nil {
		return models.Order{}, err
	}
	return t.GetOrder(ctx, id)
}

func (t *memoryTx) SaveStock(ctx context.Context, productID, productInventory, inventoryID, units int) error {
	if productInventory < 0 || units < 0 {
		return fmt.Errorf("negative stock for product %d", productID)
	}
	if _, err := t.GetProduct(ctx, productID); err != nil {
		return err
	}
	if _, err := t.GetInventory(ctx, inventoryID); err != nil {
		return err
	}
	t.productStock[productID] = productInventory
	t.inventoryUnits[inventoryID] = units
	return nil
}

func (t *memoryTx) CreateInventory(ctx context.Context, storeID, productID, units int) (models.Inventory, error) {
	if _, err := t.FindInventory(ctx, storeID, productID); err == nil {
		return models.Inventory{}, fmt.Errorf("inventory for store %d product %d: %w", storeID, productID, ErrDuplicatedValueUnique)
	}
	if _, err := t.GetProduct(ctx, productID); err != nil {
		return models.Inventory{}, err
	}

	t.s.mu.Lock()
	id := t.s.nextID("inventory")
	t.s.mu.Unlock()

	inv := models.Inventory{ID: id, StoreID: storeID, ProductID: productID, Units: units}
	t.newInventories[id] = inv
	return inv, nil
}

func (t *memoryTx) LogMovement(_ context.Context, m models.Movement) (models.Movement, error) {
	t.s.mu.Lock()
	m.ID = t.s.nextID("movement")
	if m.CreatedAt.IsZero() {
		m.CreatedAt = t.s.now()
	}
	t.s.mu.Unlock()

	t.movements = append(t.movements, m)
	return m, nil
}

func (t *memoryTx) InsertOrder(ctx context.Context, o models.Order) (models.Order, error) {
	if _, err := t.GetInventory(ctx, o.InventoryID); err != nil {
		return models.Order{}, err
	}

	t.s.mu.Lock()
	o.ID = t.s.nextID("order")
	if o.CreatedAt.IsZero() {
		o.CreatedAt = t.s.now()
	}
	t.s.mu.Unlock()
	o.UpdatedAt = o.CreatedAt

	t.orders[o.ID] = o
	return o, nil
}

func (t *memoryTx) UpdateOrderLine(ctx context.Context, id, inventoryID, quantity int, at time.Time) (models.Order, error) {
	o, err := t.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	o.InventoryID = inventoryID
	o.Quantity = quantity
	o.UpdatedAt = at
	t.orders[id] = o
	return o, nil
}

func (t *memoryTx) SaveOrderStatus(ctx context.Context, id int, status models.OrderStatus, at time.Time) (models.Order, error) {
	o, err := t.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	o.Status = status
	o.UpdatedAt = at
	t.orders[id] = o
	return o, nil
}

// UpsertPersonByContact writes through so concurrent upserts of one contact
// converge on a single person. The person survives a rollback.
func (t *memoryTx) UpsertPersonByContact(_ context.Context, p models.Person) (models.Person, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, existing := range t.s.persons {
		if existing.Contact == p.Contact {
			return existing, nil
		}
	}
	p.ID = t.s.nextID("person")
	t.s.persons[p.ID] = p
	return p, nil
}

func (t *memoryTx) ListStoreProducts(ctx context.Context, storeID int) ([]models.Product, error) {
	t.s.mu.RLock()
	var ids []int
	for id, p := range t.s.products {
		if p.StoreID == storeID {
			ids = append(ids, id)
		}
	}
	t.s.mu.RUnlock()
	sort.Ints(ids)

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := t.GetProduct(ctx, id)
		if err != nil {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (t *memoryTx) ListProductOrders(ctx context.Context, productID int) ([]models.Order, error) {
	t.s.mu.RLock()
	var ids []int
	for id, o := range t.s.orders {
		if inv, ok := t.s.inventories[o.InventoryID]; ok && inv.ProductID == productID {
			ids = append(ids, id)
		}
	}
	t.s.mu.RUnlock()
	for id, o := range t.orders {
		if inv, err := t.GetInventory(ctx, o.InventoryID); err == nil && inv.ProductID == productID {
			if _, committed := t.s.orderExists(id); !committed {
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := t.GetOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (s *MemoryStore) orderExists(id int) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

func (t *memoryTx) DeleteProduct(ctx context.Context, id int) error {
	if _, err := t.GetProduct(ctx, id); err != nil {
		return err
	}
	t.deleted[id] = true
	return nil
}

// AddProduct stores p as is, without an inventory row. It reproduces data
// written before inventory rows existed.
func (s *MemoryStore) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID("product")
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
	}
	s.products[p.ID] = p
	return p
}

// AddInventory stores inv as is.
func (s *MemoryStore) AddInventory(inv models.Inventory) models.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv.ID = s.nextID("inventory")
	s.inventories[inv.ID] = inv
	return inv
}

// AddStore stores st as is.
func (s *MemoryStore) AddStore(st models.Store) models.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.ID = s.nextID("store")
	s.stores[st.ID] = st
	return st
}
