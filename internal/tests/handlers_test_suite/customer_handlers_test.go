package handlers_test_suite

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	api "github.com/rogerio-castellano/order-tracker/internal/http"
	handler "github.com/rogerio-castellano/order-tracker/internal/http/handlers"
)

func createCustomer(r http.Handler, bearer string, c handler.CustomerRequest) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, "/customers", bearer, c)
}

func TestCreateCustomerHandler(t *testing.T) {
	r := api.NewRouter()

	w := createCustomer(r, staffToken, handler.CustomerRequest{
		Name:    "Carla",
		Contact: "cu-carla",
		Email:   "carla@customers.test",
		Address: "2 Side Street",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	var created handler.CustomerResponse
	json.NewDecoder(w.Body).Decode(&created)
	if created.ID == 0 || created.Contact != "cu-carla" || created.Email != "carla@customers.test" {
		t.Errorf("unexpected customer %+v", created)
	}

	tests := []struct {
		name     string
		customer handler.CustomerRequest
		want     int
	}{
		{"Duplicated contact", handler.CustomerRequest{Name: "C", Contact: "cu-carla", Email: "fresh@customers.test", Address: "x"}, http.StatusConflict},
		{"Duplicated email", handler.CustomerRequest{Name: "C", Contact: "cu-fresh", Email: "carla@customers.test", Address: "x"}, http.StatusConflict},
		{"Contact taken by a user", handler.CustomerRequest{Name: "C", Contact: "admin@main", Email: "admin@customers.test", Address: "x"}, http.StatusConflict},
		{"Short contact", handler.CustomerRequest{Name: "C", Contact: "ab", Email: "ab@customers.test", Address: "x"}, http.StatusBadRequest},
		{"Missing name", handler.CustomerRequest{Contact: "cu-noname", Email: "noname@customers.test", Address: "x"}, http.StatusBadRequest},
		{"Invalid email", handler.CustomerRequest{Name: "C", Contact: "cu-bademail", Email: "not-an-email", Address: "x"}, http.StatusBadRequest},
		{"Missing address", handler.CustomerRequest{Name: "C", Contact: "cu-noaddr", Email: "noaddr@customers.test"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := createCustomer(r, token, tt.customer)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	t.Run("Unauthenticated", func(t *testing.T) {
		w := createCustomer(r, "", handler.CustomerRequest{Name: "C", Contact: "cu-anon", Email: "anon@customers.test", Address: "x"})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 Unauthorized, got %d", w.Code)
		}
	})
}

func TestUpdateCustomerHandler(t *testing.T) {
	r := api.NewRouter()

	createCustomer(r, token, handler.CustomerRequest{Name: "Dana", Contact: "cu-dana", Email: "dana@customers.test", Address: "3 Side Street"})
	createCustomer(r, token, handler.CustomerRequest{Name: "Eli", Contact: "cu-eli", Email: "eli@customers.test", Address: "4 Side Street"})

	w := do(r, http.MethodPut, "/customers/cu-dana", staffToken, handler.CustomerUpdateRequest{Address: strPtr("5 New Street")})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var updated handler.CustomerResponse
	json.NewDecoder(w.Body).Decode(&updated)
	if updated.Address != "5 New Street" || updated.Name != "Dana" || updated.Email != "dana@customers.test" {
		t.Errorf("expected only the address to change, got %+v", updated)
	}

	w = do(r, http.MethodPut, "/customers/cu-dana", token, handler.CustomerUpdateRequest{Contact: strPtr("cu-dana-2"), Email: strPtr("dana2@customers.test")})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK renaming the contact, got %d: %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodGet, "/customers/check?contact=cu-dana", token, nil)
	var check handler.CustomerExistsResponse
	json.NewDecoder(w.Body).Decode(&check)
	if check.Exists {
		t.Errorf("expected the old contact to be gone")
	}

	tests := []struct {
		name    string
		contact string
		update  handler.CustomerUpdateRequest
		want    int
	}{
		{"Unknown contact", "cu-nobody", handler.CustomerUpdateRequest{Name: strPtr("X")}, http.StatusNotFound},
		{"Contact of another person", "cu-dana-2", handler.CustomerUpdateRequest{Contact: strPtr("cu-eli")}, http.StatusConflict},
		{"Email of another person", "cu-dana-2", handler.CustomerUpdateRequest{Email: strPtr("eli@customers.test")}, http.StatusConflict},
		{"Short contact", "cu-dana-2", handler.CustomerUpdateRequest{Contact: strPtr("ab")}, http.StatusBadRequest},
		{"Blank name", "cu-dana-2", handler.CustomerUpdateRequest{Name: strPtr(" ")}, http.StatusBadRequest},
		{"Invalid email", "cu-dana-2", handler.CustomerUpdateRequest{Email: strPtr("dana")}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPut, "/customers/"+tt.contact, token, tt.update)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	t.Run("Own email is not a conflict", func(t *testing.T) {
		w := do(r, http.MethodPut, "/customers/cu-eli", token, handler.CustomerUpdateRequest{Email: strPtr("eli@customers.test"), Name: strPtr("Elias")})
		if w.Code != http.StatusOK {
			t.Errorf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestCheckCustomerHandler(t *testing.T) {
	r := api.NewRouter()

	createCustomer(r, token, handler.CustomerRequest{Name: "Fay", Contact: "cu-fay", Email: "fay@customers.test", Address: "6 Side Street"})

	check := func(t *testing.T, query url.Values) handler.CustomerExistsResponse {
		t.Helper()
		w := do(r, http.MethodGet, "/customers/check?"+query.Encode(), staffToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
		}
		var resp handler.CustomerExistsResponse
		json.NewDecoder(w.Body).Decode(&resp)
		return resp
	}

	byContact := check(t, url.Values{"contact": {"cu-fay"}})
	if !byContact.Exists || byContact.Name != "Fay" || byContact.Email != "fay@customers.test" || byContact.ID == 0 {
		t.Errorf("unexpected lookup by contact %+v", byContact)
	}

	byEmail := check(t, url.Values{"email": {"fay@customers.test"}})
	if !byEmail.Exists || byEmail.ID != byContact.ID || byEmail.Contact != "cu-fay" {
		t.Errorf("unexpected lookup by email %+v", byEmail)
	}

	if missing := check(t, url.Values{"contact": {"cu-ghost"}}); missing.Exists || missing.ID != 0 {
		t.Errorf("expected no customer, got %+v", missing)
	}
	if missing := check(t, url.Values{"email": {"ghost@customers.test"}}); missing.Exists {
		t.Errorf("expected no customer, got %+v", missing)
	}

	w := do(r, http.MethodGet, "/customers/check", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request without contact or email, got %d", w.Code)
	}
}

func TestGetCustomersHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	p := mustCreateProduct(r, "CU-1", "1.00", 20)
	inv := inventoryID(r, p.Id)
	first := mustCreateOrder(r, "cu-buyer-1", inv, 1)
	mustCreateOrder(r, "cu-buyer-1", inv, 2)
	mustCreateOrder(r, "cu-buyer-2", inv, 1)
	createCustomer(r, token, handler.CustomerRequest{Name: "Gus", Contact: "cu-gus", Email: "gus@customers.test", Address: "7 Side Street"})

	w := do(r, http.MethodGet, "/customers", staffToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var resp handler.CustomersSearchResult
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Meta.TotalCount != 2 || len(resp.Data) != 2 {
		t.Fatalf("expected the 2 persons who ordered, got %+v", resp)
	}
	if resp.Data[0].Contact != "cu-buyer-1" || resp.Data[0].ID != first.PersonID || resp.Data[1].Contact != "cu-buyer-2" {
		t.Errorf("unexpected customers %+v", resp.Data)
	}

	w = do(r, http.MethodGet, "/customers?limit=1&offset=1", token, nil)
	var paged handler.CustomersSearchResult
	json.NewDecoder(w.Body).Decode(&paged)
	if paged.Meta.TotalCount != 2 || len(paged.Data) != 1 || paged.Data[0].Contact != "cu-buyer-2" {
		t.Errorf("unexpected second page %+v", paged)
	}

	w = do(r, http.MethodGet, "/customers", otherToken, nil)
	var other handler.CustomersSearchResult
	json.NewDecoder(w.Body).Decode(&other)
	if other.Meta.TotalCount != 0 || len(other.Data) != 0 {
		t.Errorf("expected another store to see no customers, got %+v", other)
	}

	w = do(r, http.MethodGet, "/customers?limit=0", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 Bad Request for limit=0, got %d", w.Code)
	}
}
