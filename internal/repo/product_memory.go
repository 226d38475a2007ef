package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of ProductRepository.
type InMemoryProductRepository struct {
	s *MemoryStore
}

func NewInMemoryProductRepository(s *MemoryStore) *InMemoryProductRepository {
	return &InMemoryProductRepository{s: s}
}

func matchesFilter(p models.Product, pf ProductFilter) bool {
	if pf.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(pf.Name)) {
		return false
	}
	if pf.Category != "" && !strings.EqualFold(p.Category, pf.Category) {
		return false
	}
	return true
}

func (r *InMemoryProductRepository) Filter(storeID int, pf ProductFilter) ([]models.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var filtered []models.Product
	for _, p := range r.s.products {
		if p.StoreID == storeID && matchesFilter(p, pf) {
			filtered = append(filtered, p)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	return page(filtered, pf.Offset, pf.Limit), len(filtered), nil
}

// Create adds the product, its inventory row for the product's store and the
// initial movement.
func (r *InMemoryProductRepository) Create(product models.Product) (models.Product, error) {
	if product.Inventory < 0 {
		return models.Product{}, fmt.Errorf("negative inventory for %s", product.SKU)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.products {
		if p.StoreID == product.StoreID && p.SKU == product.SKU {
			return models.Product{}, fmt.Errorf("sku %s: %w", product.SKU, ErrDuplicatedValueUnique)
		}
	}

	now := r.s.now()
	product.ID = r.s.nextID("product")
	product.CreatedAt = now
	product.UpdatedAt = now
	r.s.products[product.ID] = product

	inv := models.Inventory{
		ID:        r.s.nextID("inventory"),
		StoreID:   product.StoreID,
		ProductID: product.ID,
		Units:     product.Inventory,
	}
	r.s.inventories[inv.ID] = inv

	r.s.movements = append(r.s.movements, models.Movement{
		ID:          r.s.nextID("movement"),
		ProductID:   product.ID,
		InventoryID: inv.ID,
		Delta:       product.Inventory,
		Reason:      models.MovementInitial,
		CreatedAt:   now,
	})

	return product, nil
}

// GetByID retrieves a product by its ID.
func (r *InMemoryProductRepository) GetByID(id int) (models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *InMemoryProductRepository) GetBySKU(storeID int, sku string) (models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.StoreID == storeID && p.SKU == sku {
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// UpdateDetails changes name, category, description and price, never stock.
func (r *InMemoryProductRepository) UpdateDetails(product models.Product) (models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[product.ID]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	p.Name = product.Name
	p.Category = product.Category
	p.Description = product.Description
	p.UnitPrice = product.UnitPrice
	p.UpdatedAt = r.s.now()
	r.s.products[p.ID] = p
	return p, nil
}
