package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry owned by a single store.
// Inventory is the denormalized stock total kept in lockstep with the
// product's Inventory.Units row.
type Product struct {
	ID          int             `json:"id"`
	StoreID     int             `json:"store_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Inventory   int             `json:"inventory"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
