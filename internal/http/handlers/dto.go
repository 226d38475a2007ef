package handlers

import (
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Inventory   int             `json:"inventory"`
}

type ProductResponse struct {
	Id          int             `json:"id"`
	StoreID     int             `json:"store_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Inventory   int             `json:"inventory"`
	LowStock    bool            `json:"low_stock,omitempty"`
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

type ProductsSearchResult struct {
	Data []ProductResponse `json:"data"`
	Meta Meta              `json:"meta,omitempty"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type RestockResult struct {
	Product     ProductResponse `json:"product"`
	InventoryID int             `json:"inventory_id"`
	Units       int             `json:"units"`
}

type MovementResponse struct {
	ID          int       `json:"id"`
	ProductID   int       `json:"product_id"`
	InventoryID int       `json:"inventory_id"`
	OrderID     *int      `json:"order_id,omitempty"`
	Delta       int       `json:"delta"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

type MovementsSearchResult struct {
	Data []MovementResponse `json:"data"`
	Meta Meta               `json:"meta,omitempty"`
}

type OrderRequest struct {
	Contact     string `json:"contact"`
	InventoryID int    `json:"inventory_id"`
	Quantity    int    `json:"order_quantity"`
}

type OrderEditRequest struct {
	InventoryID *int `json:"inventory_id,omitempty"`
	Quantity    *int `json:"order_quantity,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type OrdersSearchResult struct {
	Data []models.OrderView `json:"data"`
	Meta Meta               `json:"meta,omitempty"`
}

type ProductRemovalResult struct {
	Message         string `json:"message"`
	ProductID       int    `json:"product_id"`
	CancelledOrders []int  `json:"cancelled_orders"`
}

type StoreSettings struct {
	StoreName          string `json:"store_name"`
	StoreAddress       string `json:"store_address"`
	LowStockThreshold  int    `json:"low_stock_threshold"`
	SalesLookbackDays  int    `json:"sales_lookback_days"`
	ReorderHorizonDays int    `json:"reorder_horizon_days"`
	Currency           string `json:"currency"`
}

// StoreSettingsRequest is a partial update; nil fields keep their value.
type StoreSettingsRequest struct {
	StoreName          *string `json:"store_name,omitempty"`
	StoreAddress       *string `json:"store_address,omitempty"`
	LowStockThreshold  *int    `json:"low_stock_threshold,omitempty"`
	SalesLookbackDays  *int    `json:"sales_lookback_days,omitempty"`
	ReorderHorizonDays *int    `json:"reorder_horizon_days,omitempty"`
	Currency           *string `json:"currency,omitempty"`
}

type CustomerRequest struct {
	Name    string `json:"person_name"`
	Contact string `json:"person_contact"`
	Email   string `json:"person_email"`
	Address string `json:"person_address"`
}

// CustomerUpdateRequest is a partial update; nil fields keep their value.
type CustomerUpdateRequest struct {
	Name    *string `json:"person_name,omitempty"`
	Contact *string `json:"person_contact,omitempty"`
	Email   *string `json:"person_email,omitempty"`
	Address *string `json:"person_address,omitempty"`
}

type CustomerResponse struct {
	ID      int    `json:"person_id"`
	Name    string `json:"person_name"`
	Contact string `json:"person_contact"`
	Email   string `json:"person_email"`
	Address string `json:"person_address"`
}

type CustomersSearchResult struct {
	Data []CustomerResponse `json:"data"`
	Meta Meta               `json:"meta"`
}

type CustomerExistsResponse struct {
	Exists  bool   `json:"exists"`
	ID      int    `json:"person_id,omitempty"`
	Name    string `json:"person_name,omitempty"`
	Contact string `json:"person_contact,omitempty"`
	Email   string `json:"person_email,omitempty"`
}

type SignupRequest struct {
	StoreName    string `json:"store_name"`
	StoreAddress string `json:"store_address"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Contact      string `json:"contact"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

type StaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type UserLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type RegisterResult struct {
	Message      string `json:"message"`
	StoreID      int    `json:"store_id"`
	UserID       int    `json:"user_id"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type ImportProductsResult struct {
	ImportedProductsCount int                      `json:"imported"`
	UpdatedProductsCount  int                      `json:"updated"`
	Errors                []ProductValidationError `json:"errors"`
}
