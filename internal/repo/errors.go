package repo

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

var (
	ErrProductNotFound   = fmt.Errorf("product %w", ErrNotFound)
	ErrInventoryNotFound = fmt.Errorf("inventory %w", ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrPersonNotFound    = fmt.Errorf("person %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrStoreNotFound     = fmt.Errorf("store %w", ErrNotFound)
)

var (
	ErrDuplicatedValueUnique = errors.New("duplicated value violates unique constraint")
	ErrLockTimeout           = errors.New("timed out waiting for row lock")
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// page applies offset/limit the same way for every in-memory listing.
func page[T any](items []T, offset, limit *int) []T {
	if offset != nil && *offset > len(items) {
		return []T{}
	}

	start := 0
	if offset != nil {
		start = clamp(*offset, 0, len(items))
	}

	end := len(items)
	if limit != nil && *limit > 0 {
		end = clamp(start+*limit, start, len(items))
	}

	return items[start:end]
}
