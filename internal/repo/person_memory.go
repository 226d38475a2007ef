package repo

import (
	"fmt"
	"sort"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type InMemoryPersonRepository struct {
	s *MemoryStore
}

func NewInMemoryPersonRepository(s *MemoryStore) *InMemoryPersonRepository {
	return &InMemoryPersonRepository{s: s}
}

func (r *InMemoryPersonRepository) ListCustomers(storeID int, pf PersonFilter) ([]models.Person, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := map[int]bool{}
	customers := []models.Person{}
	for _, o := range r.s.orders {
		if seen[o.PersonID] || r.s.inventories[o.InventoryID].StoreID != storeID {
			continue
		}
		if p, ok := r.s.persons[o.PersonID]; ok {
			seen[o.PersonID] = true
			customers = append(customers, p)
		}
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })

	return page(customers, pf.Offset, pf.Limit), len(customers), nil
}

func (r *InMemoryPersonRepository) Create(person models.Person) (models.Person, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkUniqueLocked(0, person); err != nil {
		return models.Person{}, err
	}
	person.ID = r.s.nextID("person")
	r.s.persons[person.ID] = person
	return person, nil
}

func (r *InMemoryPersonRepository) GetByContact(contact string) (models.Person, error) {
	return r.find(func(p models.Person) bool { return p.Contact == contact })
}

func (r *InMemoryPersonRepository) GetByEmail(email string) (models.Person, error) {
	return r.find(func(p models.Person) bool { return p.Email == email })
}

func (r *InMemoryPersonRepository) UpdateByContact(contact string, upd PersonUpdate) (models.Person, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var current models.Person
	found := false
	for _, p := range r.s.persons {
		if p.Contact == contact {
			current, found = p, true
			break
		}
	}
	if !found {
		return models.Person{}, ErrPersonNotFound
	}

	updated := upd.apply(current)
	if err := r.checkUniqueLocked(current.ID, updated); err != nil {
		return models.Person{}, err
	}
	r.s.persons[updated.ID] = updated
	return updated, nil
}

// checkUniqueLocked rejects person when another person than selfID holds its
// contact or its email.
func (r *InMemoryPersonRepository) checkUniqueLocked(selfID int, person models.Person) error {
	for _, p := range r.s.persons {
		if p.ID == selfID {
			continue
		}
		if p.Contact == person.Contact {
			return fmt.Errorf("contact %s: %w", person.Contact, ErrDuplicatedValueUnique)
		}
		if person.Email != "" && p.Email == person.Email {
			return fmt.Errorf("email %s: %w", person.Email, ErrDuplicatedValueUnique)
		}
	}
	return nil
}

func (r *InMemoryPersonRepository) find(match func(models.Person) bool) (models.Person, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.persons {
		if match(p) {
			return p, nil
		}
	}
	return models.Person{}, ErrPersonNotFound
}
