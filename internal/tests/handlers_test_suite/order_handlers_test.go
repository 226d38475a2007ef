package handlers_test_suite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	api "github.com/rogerio-castellano/order-tracker/internal/http"
	handler "github.com/rogerio-castellano/order-tracker/internal/http/handlers"
	"github.com/rogerio-castellano/order-tracker/internal/orders"
	"github.com/shopspring/decimal"
)

func inventoryUnits(r http.Handler, invID int) int {
	w := do(r, http.MethodGet, "/orders/inventory", token, nil)
	var items []struct {
		InventoryID int `json:"inventory_id"`
		Units       int `json:"units"`
	}
	json.NewDecoder(w.Body).Decode(&items)
	for _, it := range items {
		if it.InventoryID == invID {
			return it.Units
		}
	}
	return -1
}

func TestCreateOrderHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "ORD-1", "4.00", 10)
	inv := inventoryID(r, p.Id)

	w := createOrder(r, "alice", inv, 3)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}

	var o orderResponse
	json.NewDecoder(w.Body).Decode(&o)
	if o.Status != "pending" || o.Quantity != 3 || o.PersonID == 0 {
		t.Errorf("unexpected order %+v", o)
	}
	if got := getProduct(r, p.Id).Inventory; got != 10 {
		t.Errorf("creating an order must not move stock, inventory is %d", got)
	}

	again := mustCreateOrder(r, "alice", inv, 1)
	if again.PersonID != o.PersonID {
		t.Errorf("expected the same person for the same contact, got %d and %d", o.PersonID, again.PersonID)
	}
}

func TestCreateOrderHandler_Invalid(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "ORD-2", "4.00", 10)
	inv := inventoryID(r, p.Id)

	tests := []struct {
		name       string
		bearer     string
		payload    handler.OrderRequest
		expectCode int
	}{
		{"Zero quantity", token, handler.OrderRequest{Contact: "bob", InventoryID: inv, Quantity: 0}, http.StatusBadRequest},
		{"Missing contact", token, handler.OrderRequest{InventoryID: inv, Quantity: 1}, http.StatusBadRequest},
		{"Unknown inventory", token, handler.OrderRequest{Contact: "bob", InventoryID: 999999, Quantity: 1}, http.StatusNotFound},
		{"Other store", otherToken, handler.OrderRequest{Contact: "bob", InventoryID: inv, Quantity: 1}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/orders", tt.bearer, tt.payload)
			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateOrderStatusHandler_ConfirmAndCancel(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "ST-1", "2.00", 10)
	inv := inventoryID(r, p.Id)
	o := mustCreateOrder(r, "carol", inv, 4)

	w := setStatus(r, staffToken, o.ID, "Confirmed")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if got := getProduct(r, p.Id).Inventory; got != 6 {
		t.Errorf("expected product inventory 6 after confirm, got %d", got)
	}
	if got := inventoryUnits(r, inv); got != 6 {
		t.Errorf("expected inventory units 6 after confirm, got %d", got)
	}

	w = setStatus(r, token, o.ID, "cancelled")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if got := getProduct(r, p.Id).Inventory; got != 10 {
		t.Errorf("expected product inventory back at 10, got %d", got)
	}
	if got := inventoryUnits(r, inv); got != 10 {
		t.Errorf("expected inventory units back at 10, got %d", got)
	}

	if n := len(published.Events()); n < 3 {
		t.Errorf("expected created and two status events, got %d", n)
	}
}

func TestUpdateOrderStatusHandler_Rejections(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "ST-2", "2.00", 5)
	inv := inventoryID(r, p.Id)
	big := mustCreateOrder(r, "dave", inv, 6)
	small := mustCreateOrder(r, "dave", inv, 1)

	w := setStatus(r, token, big.ID, "confirmed")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 Conflict for insufficient stock, got %d", w.Code)
	}
	if got := getProduct(r, p.Id).Inventory; got != 5 {
		t.Errorf("failed confirm must not move stock, inventory is %d", got)
	}

	w = setStatus(r, token, small.ID, "shipped")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request for pending->shipped, got %d", w.Code)
	}

	w = setStatus(r, token, small.ID, "lost")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request for an unknown status, got %d", w.Code)
	}

	w = setStatus(r, otherToken, small.ID, "confirmed")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 Forbidden for another store, got %d", w.Code)
	}

	w = setStatus(r, token, 999999, "confirmed")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 Not Found, got %d", w.Code)
	}

	setStatus(r, token, small.ID, "confirmed")
	setStatus(r, token, small.ID, "shipped")
	w = setStatus(r, token, small.ID, "cancelled")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request for shipped->cancelled, got %d", w.Code)
	}
	if got := getProduct(r, p.Id).Inventory; got != 4 {
		t.Errorf("expected shipped stock to stay out, inventory is %d", got)
	}
}

func TestEditOrderHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	first := mustCreateProduct(r, "ED-1", "1.00", 10)
	second := mustCreateProduct(r, "ED-2", "1.00", 10)
	o := mustCreateOrder(r, "erin", inventoryID(r, first.Id), 2)

	newInv := inventoryID(r, second.Id)
	qty := 5
	w := do(r, http.MethodPut, fmt.Sprintf("/orders/%d", o.ID), token, handler.OrderEditRequest{InventoryID: &newInv, Quantity: &qty})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var edited orderResponse
	json.NewDecoder(w.Body).Decode(&edited)
	if edited.InventoryID != newInv || edited.Quantity != 5 {
		t.Errorf("edit not applied: %+v", edited)
	}

	setStatus(r, token, o.ID, "confirmed")
	w = do(r, http.MethodPut, fmt.Sprintf("/orders/%d", o.ID), token, handler.OrderEditRequest{Quantity: &qty})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request editing a confirmed order, got %d", w.Code)
	}
}

func TestGetOrdersHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "LS-1", "1.00", 10)
	inv := inventoryID(r, p.Id)
	a := mustCreateOrder(r, "frank", inv, 1)
	mustCreateOrder(r, "grace", inv, 1)
	setStatus(r, token, a.ID, "confirmed")

	w := do(r, http.MethodGet, "/orders?status=confirmed", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp struct {
		Data []orderResponse `json:"data"`
		Meta handler.Meta    `json:"meta"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Meta.TotalCount != 1 || len(resp.Data) != 1 || resp.Data[0].ID != a.ID {
		t.Errorf("expected only order %d, got %+v", a.ID, resp)
	}

	w = do(r, http.MethodGet, "/orders?status=unknown", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request for an unknown status filter, got %d", w.Code)
	}

	w = do(r, http.MethodGet, "/orders", otherToken, nil)
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Meta.TotalCount != 0 {
		t.Errorf("expected no orders visible to another store, got %d", resp.Meta.TotalCount)
	}
}

func TestGetOrderHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "GO-1", "1.00", 10)
	o := mustCreateOrder(r, "heidi", inventoryID(r, p.Id), 1)

	w := do(r, http.MethodGet, fmt.Sprintf("/orders/%d", o.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var view struct {
		SKU           string `json:"sku"`
		PersonContact string `json:"person_contact"`
	}
	json.NewDecoder(w.Body).Decode(&view)
	if view.SKU != "GO-1" || view.PersonContact != "heidi" {
		t.Errorf("unexpected view %+v", view)
	}

	w = do(r, http.MethodGet, fmt.Sprintf("/orders/%d", o.ID), otherToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 Forbidden, got %d", w.Code)
	}
}

func TestGetOrderReceiptHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p1 := mustCreateProduct(r, "RC-1", "2.50", 10)
	p2 := mustCreateProduct(r, "RC-2", "10.00", 10)
	o := mustCreateOrder(r, "ivan", inventoryID(r, p1.Id), 2)
	mustCreateOrder(r, "ivan", inventoryID(r, p2.Id), 1)
	mustCreateOrder(r, "judy", inventoryID(r, p2.Id), 1)

	w := do(r, http.MethodGet, fmt.Sprintf("/orders/%d/receipt", o.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var receipt orders.Receipt
	if err := json.NewDecoder(w.Body).Decode(&receipt); err != nil {
		t.Fatalf("error decoding receipt: %v", err)
	}
	if len(receipt.Lines) != 2 {
		t.Fatalf("expected 2 lines for ivan, got %d", len(receipt.Lines))
	}
	if !receipt.GrandTotal.Equal(decimal.RequireFromString("15")) {
		t.Errorf("expected grand total 15, got %s", receipt.GrandTotal)
	}
	if receipt.PersonContact != "ivan" {
		t.Errorf("expected contact ivan, got %s", receipt.PersonContact)
	}

	w = do(r, http.MethodGet, fmt.Sprintf("/orders/%d/receipt", o.ID), otherToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 Forbidden, got %d", w.Code)
	}
}
