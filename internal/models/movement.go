package models

import "time"

const (
	MovementInitial        = "initial"
	MovementRestock        = "restock"
	MovementOrderConfirmed = "order_confirmed"
	MovementOrderCancelled = "order_cancelled"
)

// Movement records one change of a product's stock counter pair.
type Movement struct {
	ID          int       `json:"id"`
	ProductID   int       `json:"product_id"`
	InventoryID int       `json:"inventory_id"`
	OrderID     *int      `json:"order_id,omitempty"`
	Delta       int       `json:"delta"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}
