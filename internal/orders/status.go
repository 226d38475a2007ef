package orders

import (
	"fmt"
	"strings"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusShipped, models.StatusCancelled},
}

// ParseStatus accepts the four status names, case-insensitively.
func ParseStatus(s string) (models.OrderStatus, error) {
	status := models.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case models.StatusPending, models.StatusConfirmed, models.StatusShipped, models.StatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// CanTransition reports whether from -> to is in the state table.
// shipped and cancelled are terminal; nothing moves back to pending.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// stockDelta is the counter change a valid transition applies for qty units.
func stockDelta(from, to models.OrderStatus, qty int) int {
	switch {
	case from == models.StatusPending && to == models.StatusConfirmed:
		return -qty
	case from == models.StatusConfirmed && to == models.StatusCancelled:
		return qty
	}
	return 0
}
