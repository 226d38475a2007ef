package repo

import "github.com/rogerio-castellano/order-tracker/internal/models"

type InMemoryStoreRepository struct {
	s *MemoryStore
}

func NewInMemoryStoreRepository(s *MemoryStore) *InMemoryStoreRepository {
	return &InMemoryStoreRepository{s: s}
}

func (r *InMemoryStoreRepository) GetByID(id int) (models.Store, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	store, ok := r.s.stores[id]
	if !ok {
		return models.Store{}, ErrStoreNotFound
	}
	return store, nil
}

func (r *InMemoryStoreRepository) UpdateSettings(store models.Store) (models.Store, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.stores[store.ID]; !ok {
		return models.Store{}, ErrStoreNotFound
	}
	r.s.stores[store.ID] = store
	return store, nil
}
