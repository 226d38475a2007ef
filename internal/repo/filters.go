package repo

import (
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type ProductFilter struct {
	Name     string
	Category string
	Offset   *int
	Limit    *int
}

type MovementFilter struct {
	Since   *time.Time
	Until   *time.Time
	OrderID *int
	Reason  string
	Offset  *int
	Limit   *int
}

type OrderFilter struct {
	Status  *models.OrderStatus
	Contact string
	Since   *time.Time
	Until   *time.Time
	Offset  *int
	Limit   *int
}

type PersonFilter struct {
	Offset *int
	Limit  *int
}

// PersonUpdate holds the fields to change; nil keeps the stored value.
type PersonUpdate struct {
	Name    *string
	Contact *string
	Email   *string
	Address *string
}

func (u PersonUpdate) apply(p models.Person) models.Person {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Contact != nil {
		p.Contact = *u.Contact
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
	return p
}
