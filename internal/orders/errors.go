package orders

import (
	"errors"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/ledger"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
)

var (
	ErrNotFound          = repo.ErrNotFound
	ErrForbidden         = auth.ErrForbidden
	ErrInsufficientStock = ledger.ErrInsufficientStock
	ErrInvalidQuantity   = ledger.ErrInvalidQuantity

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrNotPending        = errors.New("order is no longer pending")
	ErrInvalidContact    = errors.New("contact is required")
	ErrProductInUse      = errors.New("product has confirmed orders")
	// ErrBusy is retryable: a row lock could not be acquired in time or the
	// order changed underneath the call.
	ErrBusy = errors.New("order is busy, retry")
)
