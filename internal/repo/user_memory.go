package repo

import (
	"fmt"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type InMemoryUserRepository struct {
	s *MemoryStore
}

func NewInMemoryUserRepository(s *MemoryStore) *InMemoryUserRepository {
	return &InMemoryUserRepository{s: s}
}

func (r *InMemoryUserRepository) GetByUsername(username string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(id int) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) RegisterStore(store models.Store, person models.Person, user models.User) (models.Store, models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkUniqueLocked(person, user); err != nil {
		return models.Store{}, models.User{}, err
	}

	store.ID = r.s.nextID("store")
	r.s.stores[store.ID] = store

	user.StoreID = store.ID
	return store, r.insertLocked(person, user), nil
}

func (r *InMemoryUserRepository) CreateUser(person models.Person, user models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.stores[user.StoreID]; !ok {
		return models.User{}, ErrStoreNotFound
	}
	if err := r.checkUniqueLocked(person, user); err != nil {
		return models.User{}, err
	}
	return r.insertLocked(person, user), nil
}

func (r *InMemoryUserRepository) checkUniqueLocked(person models.Person, user models.User) error {
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return fmt.Errorf("username %s: %w", user.Username, ErrDuplicatedValueUnique)
		}
	}
	for _, p := range r.s.persons {
		if p.Contact == person.Contact {
			return fmt.Errorf("contact %s: %w", person.Contact, ErrDuplicatedValueUnique)
		}
	}
	return nil
}

func (r *InMemoryUserRepository) insertLocked(person models.Person, user models.User) models.User {
	person.ID = r.s.nextID("person")
	r.s.persons[person.ID] = person

	now := r.s.now()
	user.ID = r.s.nextID("user")
	user.PersonID = person.ID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = user
	return user
}
