package repo

import (
	"sort"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type InMemoryMovementRepository struct {
	s *MemoryStore
}

func NewInMemoryMovementRepository(s *MemoryStore) *InMemoryMovementRepository {
	return &InMemoryMovementRepository{s: s}
}

// GetByProductID returns the product's movements, newest first, optionally
// filtered by date range, order and reason, and paginated.
func (r *InMemoryMovementRepository) GetByProductID(productID int, mf MovementFilter) ([]models.Movement, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	filtered := []models.Movement{}
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		if (mf.Since != nil && m.CreatedAt.Before(*mf.Since)) ||
			(mf.Until != nil && m.CreatedAt.After(*mf.Until)) {
			continue
		}
		if mf.OrderID != nil && (m.OrderID == nil || *m.OrderID != *mf.OrderID) {
			continue
		}
		if mf.Reason != "" && m.Reason != mf.Reason {
			continue
		}
		filtered = append(filtered, m)
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })

	return page(filtered, mf.Offset, mf.Limit), len(filtered), nil
}
