package handlers_test_suite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	api "github.com/rogerio-castellano/order-tracker/internal/http"
	handler "github.com/rogerio-castellano/order-tracker/internal/http/handlers"
	"github.com/shopspring/decimal"
)

func TestCreateProductHandler_Valid(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	w := createProduct(r, handler.ProductRequest{
		SKU:       "LAP-1",
		Name:      "Laptop",
		Category:  "computers",
		UnitPrice: decimal.RequireFromString("1500.00"),
		Inventory: 20,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d", w.Code)
	}

	var resp handler.ProductResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}

	if resp.Name != "Laptop" {
		t.Errorf("expected name 'Laptop', got %v", resp.Name)
	}
	if !resp.UnitPrice.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("expected price 1500, got %v", resp.UnitPrice)
	}
	if resp.Inventory != 20 {
		t.Errorf("expected inventory 20, got %v", resp.Inventory)
	}
	if resp.LowStock {
		t.Errorf("expected no low stock flag above the threshold")
	}
}

func TestCreateProductHandler_LowStockFlag(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "LOW-1", "2.50", 3)
	if !p.LowStock {
		t.Errorf("expected low stock flag for inventory 3 under the default threshold")
	}
}

func TestCreateProductHandler_Invalid(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	tests := []struct {
		name           string
		payload        handler.ProductRequest
		expectCode     int
		expectedErrors []string
	}{
		{
			name:           "Empty name and price",
			payload:        handler.ProductRequest{SKU: "A"},
			expectCode:     http.StatusBadRequest,
			expectedErrors: []string{"Name", "UnitPrice"},
		},
		{
			name:           "Missing SKU",
			payload:        handler.ProductRequest{Name: "Mouse", UnitPrice: decimal.NewFromInt(5)},
			expectCode:     http.StatusBadRequest,
			expectedErrors: []string{"SKU"},
		},
		{
			name:           "Invalid price only",
			payload:        handler.ProductRequest{SKU: "M", Name: "Mouse", UnitPrice: decimal.NewFromInt(-5)},
			expectCode:     http.StatusBadRequest,
			expectedErrors: []string{"UnitPrice"},
		},
		{
			name:           "Negative inventory",
			payload:        handler.ProductRequest{SKU: "K", Name: "Keyboard", UnitPrice: decimal.NewFromInt(50), Inventory: -1},
			expectCode:     http.StatusBadRequest,
			expectedErrors: []string{"Inventory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := createProduct(r, tt.payload)
			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, w.Code)
			}

			var errs []handler.ProductValidationError
			if err := json.NewDecoder(w.Body).Decode(&errs); err != nil {
				t.Fatalf("error decoding response: %v", err)
			}
			if len(errs) != len(tt.expectedErrors) {
				t.Fatalf("expected %d errors, got %v", len(tt.expectedErrors), errs)
			}
			for i, field := range tt.expectedErrors {
				if errs[i].Field != field {
					t.Errorf("expected error on %s, got %s", field, errs[i].Field)
				}
			}
		})
	}
}

func TestCreateProductHandler_DuplicateSKU(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	mustCreateProduct(r, "DUP", "1.00", 1)
	w := createProduct(r, handler.ProductRequest{SKU: "DUP", Name: "Again", UnitPrice: decimal.NewFromInt(1)})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 Conflict, got %d", w.Code)
	}

	// SKUs are unique per store only.
	w = do(r, http.MethodPost, "/products", otherToken, handler.ProductRequest{SKU: "DUP", Name: "Other", UnitPrice: decimal.NewFromInt(1)})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created in another store, got %d", w.Code)
	}
}

func TestProductsRequireToken(t *testing.T) {
	r := api.NewRouter()

	w := do(r, http.MethodGet, "/products", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 Unauthorized, got %d", w.Code)
	}

	w = do(r, http.MethodGet, "/products", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 Unauthorized, got %d", w.Code)
	}
}

func TestGetProductByIDHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "GET-1", "9.99", 15)

	tests := []struct {
		name       string
		path       string
		bearer     string
		expectCode int
	}{
		{"Existing product", fmt.Sprintf("/products/%d", p.Id), token, http.StatusOK},
		{"Staff can read", fmt.Sprintf("/products/%d", p.Id), staffToken, http.StatusOK},
		{"Other store", fmt.Sprintf("/products/%d", p.Id), otherToken, http.StatusForbidden},
		{"Unknown product", "/products/999999", token, http.StatusNotFound},
		{"Invalid ID", "/products/abc", token, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, tt.bearer, nil)
			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, w.Code)
			}
		})
	}
}

func TestGetProductsHandler_FilterAndPaging(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	for i := 1; i <= 5; i++ {
		mustCreateProduct(r, fmt.Sprintf("F-%d", i), "1.00", 50)
	}
	do(r, http.MethodPost, "/products", otherToken, handler.ProductRequest{SKU: "X", Name: "Product X", UnitPrice: decimal.NewFromInt(1)})

	w := do(r, http.MethodGet, "/products?name=product&offset=1&limit=2", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}

	var resp handler.ProductsSearchResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if resp.Meta.TotalCount != 5 {
		t.Errorf("expected total count 5, got %d", resp.Meta.TotalCount)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 products, got %d", len(resp.Data))
	}
	if resp.Data[0].SKU != "F-2" {
		t.Errorf("expected F-2 first, got %s", resp.Data[0].SKU)
	}

	for _, q := range []string{"limit=0", "limit=x", "offset=-1"} {
		w := do(r, http.MethodGet, "/products?"+q, token, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400 Bad Request, got %d", q, w.Code)
		}
	}
}

func TestUpdateProductHandler_KeepsStock(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "UPD-1", "10.00", 30)

	w := do(r, http.MethodPut, fmt.Sprintf("/products/%d", p.Id), token, handler.ProductRequest{
		Name:      "Renamed",
		Category:  "new",
		UnitPrice: decimal.RequireFromString("12.50"),
		Inventory: 999,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var resp handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Name != "Renamed" || !resp.UnitPrice.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("details not updated: %+v", resp)
	}
	if resp.Inventory != 30 {
		t.Errorf("expected inventory to stay 30, got %d", resp.Inventory)
	}
}

func TestRestockProductHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "RST-1", "3.00", 4)

	w := do(r, http.MethodPut, fmt.Sprintf("/products/%d/inventory", p.Id), staffToken, handler.RestockRequest{Quantity: 6})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var resp handler.RestockResult
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Product.Inventory != 10 || resp.Units != 10 {
		t.Errorf("expected both counters at 10, got product %d inventory %d", resp.Product.Inventory, resp.Units)
	}

	w = do(r, http.MethodPut, fmt.Sprintf("/products/%d/inventory", p.Id), token, handler.RestockRequest{Quantity: 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request for zero quantity, got %d", w.Code)
	}

	w = do(r, http.MethodPut, fmt.Sprintf("/products/%d/inventory", p.Id), otherToken, handler.RestockRequest{Quantity: 1})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 Forbidden for another store, got %d", w.Code)
	}
}

func TestDeleteProductHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "DEL-1", "5.00", 10)
	inv := inventoryID(r, p.Id)
	pending := mustCreateOrder(r, "buyer-del", inv, 2)

	w := do(r, http.MethodDelete, fmt.Sprintf("/products/%d", p.Id), staffToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 Forbidden for staff, got %d", w.Code)
	}

	w = do(r, http.MethodDelete, fmt.Sprintf("/products/%d", p.Id), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var resp handler.ProductRemovalResult
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.CancelledOrders) != 1 || resp.CancelledOrders[0] != pending.ID {
		t.Errorf("expected pending order %d cancelled, got %v", pending.ID, resp.CancelledOrders)
	}

	w = do(r, http.MethodGet, fmt.Sprintf("/products/%d", p.Id), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 Not Found after delete, got %d", w.Code)
	}
}

func TestDeleteProductHandler_ConfirmedOrdersBlock(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "DEL-2", "5.00", 10)
	o := mustCreateOrder(r, "buyer-del2", inventoryID(r, p.Id), 2)
	if w := setStatus(r, token, o.ID, "confirmed"); w.Code != http.StatusOK {
		t.Fatalf("confirm failed: %d", w.Code)
	}

	w := do(r, http.MethodDelete, fmt.Sprintf("/products/%d", p.Id), token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 Conflict, got %d", w.Code)
	}
}

func TestBackfillInventoryHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	mustCreateProduct(r, "BF-1", "1.00", 5)
	mustCreateProduct(r, "BF-2", "1.00", 5)

	w := do(r, http.MethodPost, "/products/backfill-inventory", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}

	var resp struct {
		Created       int `json:"created"`
		TotalProducts int `json:"total_products"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Created != 0 || resp.TotalProducts != 2 {
		t.Errorf("expected nothing to create for 2 products, got %+v", resp)
	}
}
