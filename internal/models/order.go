package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusCancelled OrderStatus = "cancelled"
)

// Order is a single-line order against one inventory row. Only Status
// changes once the order has left pending.
type Order struct {
	ID          int         `json:"id"`
	Status      OrderStatus `json:"status"`
	InventoryID int         `json:"inventory_id"`
	CreatedBy   int         `json:"created_by"`
	PersonID    int         `json:"person_id"`
	Quantity    int         `json:"order_quantity"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderView is an order joined with its product and customer fields.
type OrderView struct {
	Order
	StoreID       int             `json:"store_id"`
	ProductID     int             `json:"product_id"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PersonName    string          `json:"person_name"`
	PersonContact string          `json:"person_contact"`
	PersonEmail   string          `json:"person_email"`
	PersonAddress string          `json:"person_address"`
}
