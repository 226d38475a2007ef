package auth

import (
	"context"
	"errors"
)

// ErrForbidden marks access to a resource owned by another store.
var ErrForbidden = errors.New("forbidden")

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Caller is the authenticated identity of a request. StoreID and UserID are
// trusted as already authorized for Role once a Caller exists.
type Caller struct {
	UserID   int
	PersonID int
	StoreID  int
	Username string
	Role     Role
}

// HasRole reports whether the caller holds any of roles.
func (c Caller) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
