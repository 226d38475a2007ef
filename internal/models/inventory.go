package models

import "github.com/shopspring/decimal"

// Inventory is the per-store stock row of a product.
type Inventory struct {
	ID        int `json:"id"`
	StoreID   int `json:"store_id"`
	ProductID int `json:"product_id"`
	Units     int `json:"units"`
}

// InventoryItem is an inventory row joined with its product fields.
type InventoryItem struct {
	InventoryID int             `json:"inventory_id"`
	ProductID   int             `json:"product_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Units       int             `json:"units"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}
