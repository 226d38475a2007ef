package repo

import (
	"sort"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type InMemoryOrderRepository struct {
	s *MemoryStore
}

func NewInMemoryOrderRepository(s *MemoryStore) *InMemoryOrderRepository {
	return &InMemoryOrderRepository{s: s}
}

// viewLocked joins an order with its inventory, product and person. mu must be held.
func (r *InMemoryOrderRepository) viewLocked(o models.Order) (models.OrderView, bool) {
	inv, ok := r.s.inventories[o.InventoryID]
	if !ok {
		return models.OrderView{}, false
	}
	p := r.s.products[inv.ProductID]
	person := r.s.persons[o.PersonID]

	return models.OrderView{
		Order:         o,
		StoreID:       inv.StoreID,
		ProductID:     p.ID,
		SKU:           p.SKU,
		ProductName:   p.Name,
		UnitPrice:     p.UnitPrice,
		PersonName:    person.Name,
		PersonContact: person.Contact,
		PersonEmail:   person.Email,
		PersonAddress: person.Address,
	}, true
}

func (r *InMemoryOrderRepository) GetView(id int) (models.OrderView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return models.OrderView{}, ErrOrderNotFound
	}
	v, ok := r.viewLocked(o)
	if !ok {
		return models.OrderView{}, ErrOrderNotFound
	}
	return v, nil
}

func matchesOrderFilter(v models.OrderView, of OrderFilter) bool {
	if of.Status != nil && v.Status != *of.Status {
		return false
	}
	if of.Contact != "" && v.PersonContact != of.Contact {
		return false
	}
	if of.Since != nil && v.CreatedAt.Before(*of.Since) {
		return false
	}
	if of.Until != nil && v.CreatedAt.After(*of.Until) {
		return false
	}
	return true
}

// List returns the store's orders, newest first.
func (r *InMemoryOrderRepository) List(storeID int, of OrderFilter) ([]models.OrderView, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var filtered []models.OrderView
	for _, o := range r.s.orders {
		v, ok := r.viewLocked(o)
		if ok && v.StoreID == storeID && matchesOrderFilter(v, of) {
			filtered = append(filtered, v)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return page(filtered, of.Offset, of.Limit), len(filtered), nil
}

func (r *InMemoryOrderRepository) ListBatch(storeID, createdBy, personID int, from, to time.Time) ([]models.OrderView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	batch := []models.OrderView{}
	for _, o := range r.s.orders {
		if o.CreatedBy != createdBy || o.PersonID != personID {
			continue
		}
		if o.CreatedAt.Before(from) || o.CreatedAt.After(to) {
			continue
		}
		if v, ok := r.viewLocked(o); ok && v.StoreID == storeID {
			batch = append(batch, v)
		}
	}
	sort.Slice(batch, func(i, j int) bool {
		if batch[i].CreatedAt.Equal(batch[j].CreatedAt) {
			return batch[i].ID < batch[j].ID
		}
		return batch[i].CreatedAt.Before(batch[j].CreatedAt)
	})
	return batch, nil
}
