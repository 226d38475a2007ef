package repo

import (
	"sort"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type InMemoryInventoryRepository struct {
	s *MemoryStore
}

func NewInMemoryInventoryRepository(s *MemoryStore) *InMemoryInventoryRepository {
	return &InMemoryInventoryRepository{s: s}
}

func (r *InMemoryInventoryRepository) GetByID(id int) (models.Inventory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.inventories[id]
	if !ok {
		return models.Inventory{}, ErrInventoryNotFound
	}
	return inv, nil
}

func (r *InMemoryInventoryRepository) ListByStore(storeID int) ([]models.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []models.InventoryItem{}
	for _, inv := range r.s.inventories {
		if inv.StoreID != storeID {
			continue
		}
		p := r.s.products[inv.ProductID]
		items = append(items, models.InventoryItem{
			InventoryID: inv.ID,
			ProductID:   p.ID,
			SKU:         p.SKU,
			Name:        p.Name,
			Units:       inv.Units,
			UnitPrice:   p.UnitPrice,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].InventoryID < items[j].InventoryID })
	return items, nil
}
