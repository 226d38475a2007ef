package repo

import (
	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/shopspring/decimal"
)

type InMemoryMetricsRepository struct {
	s *MemoryStore
}

func NewInMemoryMetricsRepository(s *MemoryStore) *InMemoryMetricsRepository {
	return &InMemoryMetricsRepository{s: s}
}

// GetDashboardMetrics implements MetricsRepository.
func (r *InMemoryMetricsRepository) GetDashboardMetrics(storeID int) (Metrics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m := Metrics{
		OrdersByStatus: map[string]int{},
		ShippedRevenue: decimal.Zero,
	}

	threshold := models.DefaultLowStockThreshold
	if store, ok := r.s.stores[storeID]; ok {
		threshold = store.LowStockThreshold
	}

	for _, p := range r.s.products {
		if p.StoreID != storeID {
			continue
		}
		m.TotalProducts++
		if p.Inventory < threshold {
			m.LowStockCount++
		}
	}

	ordered := map[int]int{}
	for _, o := range r.s.orders {
		inv, ok := r.s.inventories[o.InventoryID]
		if !ok || inv.StoreID != storeID {
			continue
		}
		m.OrdersByStatus[string(o.Status)]++

		p := r.s.products[inv.ProductID]
		switch o.Status {
		case models.StatusShipped:
			m.ShippedRevenue = m.ShippedRevenue.Add(p.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity))))
			ordered[p.ID] += o.Quantity
		case models.StatusConfirmed:
			ordered[p.ID] += o.Quantity
		}
	}

	for productID, units := range ordered {
		name := r.s.products[productID].Name
		best := m.MostOrderedProduct
		if units > best.OrderedUnits || (units == best.OrderedUnits && name < best.Name) {
			m.MostOrderedProduct = MostOrderedProduct{Name: name, OrderedUnits: units}
		}
	}

	return m, nil
}
