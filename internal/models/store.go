package models

// Store is a tenant. Every product, inventory row and order belongs to one.
type Store struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Address            string `json:"address"`
	LowStockThreshold  int    `json:"low_stock_threshold"`
	SalesLookbackDays  int    `json:"sales_lookback_days"`
	ReorderHorizonDays int    `json:"reorder_horizon_days"`
	Currency           string `json:"currency"`
}

const (
	DefaultLowStockThreshold  = 10
	DefaultSalesLookbackDays  = 30
	DefaultReorderHorizonDays = 7
	DefaultCurrency           = "USD"
)
