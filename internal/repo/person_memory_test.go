package repo

import (
	"context"
	"testing"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPersonRepository_UniqueContactAndEmail(t *testing.T) {
	r := NewInMemoryPersonRepository(NewMemoryStore(time.Second))

	ana, err := r.Create(models.Person{Name: "Ana", Contact: "ana-1", Email: "ana@shop.test"})
	require.NoError(t, err)

	_, err = r.Create(models.Person{Name: "Other", Contact: "ana-1", Email: "other@shop.test"})
	assert.ErrorIs(t, err, ErrDuplicatedValueUnique)
	_, err = r.Create(models.Person{Name: "Other", Contact: "other-1", Email: "ana@shop.test"})
	assert.ErrorIs(t, err, ErrDuplicatedValueUnique)

	byEmail, err := r.GetByEmail("ana@shop.test")
	require.NoError(t, err)
	assert.Equal(t, ana, byEmail)

	_, err = r.GetByContact("nobody")
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestInMemoryPersonRepository_UpdateByContact(t *testing.T) {
	r := NewInMemoryPersonRepository(NewMemoryStore(time.Second))
	ana, err := r.Create(models.Person{Name: "Ana", Contact: "ana-1", Email: "ana@shop.test", Address: "1 Road"})
	require.NoError(t, err)
	_, err = r.Create(models.Person{Name: "Ben", Contact: "ben-1", Email: "ben@shop.test"})
	require.NoError(t, err)

	newContact, newName := "ana-2", "Anna"
	updated, err := r.UpdateByContact("ana-1", PersonUpdate{Contact: &newContact, Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, models.Person{ID: ana.ID, Name: "Anna", Contact: "ana-2", Email: "ana@shop.test", Address: "1 Road"}, updated)

	_, err = r.GetByContact("ana-1")
	assert.ErrorIs(t, err, ErrPersonNotFound)

	taken := "ben@shop.test"
	_, err = r.UpdateByContact("ana-2", PersonUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrDuplicatedValueUnique)

	_, err = r.UpdateByContact("ana-1", PersonUpdate{Name: &newName})
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestInMemoryPersonRepository_ListCustomersPerStore(t *testing.T) {
	s := NewMemoryStore(time.Second)
	_, inv := seedProduct(t, s, "A", 10)
	r := NewInMemoryPersonRepository(s)

	for _, contact := range []string{"zoe", "yan", "zoe"} {
		err := s.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
			p, err := tx.UpsertPersonByContact(ctx, models.Person{Name: contact, Contact: contact})
			if err != nil {
				return err
			}
			_, err = tx.InsertOrder(ctx, models.Order{Status: models.StatusPending, InventoryID: inv.ID, PersonID: p.ID, Quantity: 1})
			return err
		})
		require.NoError(t, err)
	}
	_, err := r.Create(models.Person{Name: "No orders", Contact: "idle", Email: "idle@shop.test"})
	require.NoError(t, err)

	customers, total, err := r.ListCustomers(1, PersonFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, customers, 2)
	assert.Equal(t, "zoe", customers[0].Contact)
	assert.Equal(t, "yan", customers[1].Contact)

	one := 1
	customers, total, err = r.ListCustomers(1, PersonFilter{Offset: &one, Limit: &one})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, customers, 1)
	assert.Equal(t, "yan", customers[0].Contact)

	_, total, err = r.ListCustomers(2, PersonFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
