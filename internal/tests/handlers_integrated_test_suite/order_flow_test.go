//go:build integration

package handlers_integrated_test_suite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	api "github.com/rogerio-castellano/order-tracker/internal/http"
	handler "github.com/rogerio-castellano/order-tracker/internal/http/handlers"
)

func TestOrderLifecycle(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "IT-1", "3.00", 10)
	inv := inventoryID(r, p.Id)
	id := mustCreateOrder(r, "integration-customer", inv, 4)

	if w := setStatus(r, id, "confirmed"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK confirming, got %d: %s", w.Code, w.Body.String())
	}
	if prod, units := counters(p.Id); prod != 6 || units != 6 {
		t.Fatalf("expected both counters at 6, got product=%d inventory=%d", prod, units)
	}

	if w := setStatus(r, id, "cancelled"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK cancelling, got %d: %s", w.Code, w.Body.String())
	}
	if prod, units := counters(p.Id); prod != 10 || units != 10 {
		t.Fatalf("expected both counters back at 10, got product=%d inventory=%d", prod, units)
	}

	w := do(r, http.MethodGet, fmt.Sprintf("/products/%d/movements", p.Id), token, nil)
	var resp handler.MovementsSearchResult
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Meta.TotalCount != 3 {
		t.Errorf("expected initial, confirm and cancel movements, got %d", resp.Meta.TotalCount)
	}
}

func TestOrderConfirm_InsufficientStockLeavesCounters(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "IT-2", "3.00", 2)
	id := mustCreateOrder(r, "integration-customer", inventoryID(r, p.Id), 3)

	if w := setStatus(r, id, "confirmed"); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 Conflict, got %d: %s", w.Code, w.Body.String())
	}
	if prod, units := counters(p.Id); prod != 2 || units != 2 {
		t.Errorf("expected counters untouched at 2, got product=%d inventory=%d", prod, units)
	}
}

func TestConcurrentConfirmsNeverOversell(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	const stock, qty, n = 10, 3, 8
	p := mustCreateProduct(r, "IT-3", "1.00", stock)
	inv := inventoryID(r, p.Id)

	ids := make([]int, n)
	for i := range ids {
		ids[i] = mustCreateOrder(r, fmt.Sprintf("buyer-%d", i), inv, qty)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := setStatus(r, id, "confirmed")
			switch w.Code {
			case http.StatusOK:
				mu.Lock()
				confirmed++
				mu.Unlock()
			case http.StatusConflict, http.StatusServiceUnavailable:
			default:
				t.Errorf("unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(id)
	}
	wg.Wait()

	if confirmed > stock/qty {
		t.Fatalf("confirmed %d orders of %d units with only %d in stock", confirmed, qty, stock)
	}
	prod, units := counters(p.Id)
	if prod != units {
		t.Errorf("counters diverged: product=%d inventory=%d", prod, units)
	}
	if want := stock - confirmed*qty; prod != want {
		t.Errorf("expected %d units left, got %d", want, prod)
	}
}

func TestDeleteProductCancelsPendingOrders(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "IT-4", "1.00", 5)
	mustCreateOrder(r, "integration-customer", inventoryID(r, p.Id), 1)

	w := do(r, http.MethodDelete, fmt.Sprintf("/products/%d", p.Id), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var res handler.ProductRemovalResult
	json.NewDecoder(w.Body).Decode(&res)
	if len(res.CancelledOrders) != 1 {
		t.Errorf("expected 1 cancelled order, got %v", res.CancelledOrders)
	}

	w = do(r, http.MethodGet, fmt.Sprintf("/products/%d", p.Id), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 Not Found after delete, got %d", w.Code)
	}
}
