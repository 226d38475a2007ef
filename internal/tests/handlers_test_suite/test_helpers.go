package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/events"
	api "github.com/rogerio-castellano/order-tracker/internal/http"
	handler "github.com/rogerio-castellano/order-tracker/internal/http/handlers"
	rl "github.com/rogerio-castellano/order-tracker/internal/http/rate_limiter"
	"github.com/rogerio-castellano/order-tracker/internal/ledger"
	"github.com/rogerio-castellano/order-tracker/internal/orders"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const password = "secret-pass"

var (
	token      string // admin of the main store
	staffToken string // staff of the main store
	otherToken string // admin of another store

	store     *repo.MemoryStore
	published *events.Recorder
)

func init() {
	auth.Configure("handlers-test-secret", 15*time.Minute)
	rl.Configure(0, 0)
	setupTestRepos()
	r := api.NewRouter()

	var err error
	token, err = signup(r, "main", "admin")
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
	if w := createStaff(r, token, "staff", "staff"); w.Code != http.StatusCreated {
		panic(fmt.Sprintf("error creating staff: %d %s", w.Code, w.Body.String()))
	}
	staffToken, err = generateToken(r, "staff", password)
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
	otherToken, err = signup(r, "other", "other-admin")
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
}

func setupTestRepos() {
	store = repo.NewMemoryStore(200 * time.Millisecond)
	published = &events.Recorder{}

	handler.SetProductRepo(repo.NewInMemoryProductRepository(store))
	handler.SetMovementRepo(repo.NewInMemoryMovementRepository(store))
	handler.SetUserRepo(repo.NewInMemoryUserRepository(store))
	handler.SetStoreRepo(repo.NewInMemoryStoreRepository(store))
	handler.SetPersonRepo(repo.NewInMemoryPersonRepository(store))
	handler.SetMetricsRepo(repo.NewInMemoryMetricsRepository(store))
	handler.SetRefreshStore(auth.NewMemoryRefreshStore(time.Hour))

	engine := orders.NewEngine(store, published, zap.NewNop())
	handler.SetOrderService(orders.NewService(engine,
		repo.NewInMemoryOrderRepository(store),
		repo.NewInMemoryInventoryRepository(store),
		repo.NewInMemoryStoreRepository(store),
		orders.DefaultReceiptWindow,
	))
	handler.SetLedger(ledger.New(store, zap.NewNop()))
}

func clearAllProducts() {
	store.ClearCatalog()
}

func do(r http.Handler, method, path, bearer string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signup(r http.Handler, storeName, username string) (string, error) {
	w := do(r, http.MethodPost, "/auth/signup", "", handler.SignupRequest{
		StoreName: storeName,
		Name:      username,
		Contact:   username + "@" + storeName,
		Username:  username,
		Password:  password,
	})
	if w.Code != http.StatusCreated {
		return "", fmt.Errorf("signup failed: %d %s", w.Code, w.Body.String())
	}

	var resp handler.RegisterResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func createStaff(r http.Handler, bearer, username, role string) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, "/admin/staff", bearer, handler.StaffRequest{
		Name:     username,
		Contact:  username + "-contact",
		Username: username,
		Password: password,
		Role:     role,
	})
}

func login(r http.Handler, username, pass string) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, "/auth/login", "", handler.UserLogin{Username: username, Password: pass})
}

func generateToken(r http.Handler, username, pass string) (string, error) {
	w := login(r, username, pass)

	var resp handler.LoginResult
	err := json.NewDecoder(w.Body).Decode(&resp)
	if err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, "/products", token, p)
}

// mustCreateProduct creates a product in the main store and returns it.
func mustCreateProduct(r http.Handler, sku string, price string, inventory int) handler.ProductResponse {
	w := createProduct(r, handler.ProductRequest{
		SKU:       sku,
		Name:      "Product " + sku,
		Category:  "general",
		UnitPrice: decimal.RequireFromString(price),
		Inventory: inventory,
	})
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("product creation failed: %d %s", w.Code, w.Body.String()))
	}
	var resp handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

// inventoryID returns the main store's inventory row of a product.
func inventoryID(r http.Handler, productID int) int {
	w := do(r, http.MethodGet, "/orders/inventory", token, nil)
	var items []struct {
		InventoryID int `json:"inventory_id"`
		ProductID   int `json:"product_id"`
	}
	json.NewDecoder(w.Body).Decode(&items)
	for _, it := range items {
		if it.ProductID == productID {
			return it.InventoryID
		}
	}
	panic(fmt.Sprintf("no inventory row for product %d", productID))
}

type orderResponse struct {
	ID          int    `json:"id"`
	Status      string `json:"status"`
	InventoryID int    `json:"inventory_id"`
	PersonID    int    `json:"person_id"`
	Quantity    int    `json:"order_quantity"`
}

func createOrder(r http.Handler, contact string, invID, qty int) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, "/orders", token, handler.OrderRequest{Contact: contact, InventoryID: invID, Quantity: qty})
}

func mustCreateOrder(r http.Handler, contact string, invID, qty int) orderResponse {
	w := createOrder(r, contact, invID, qty)
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("order creation failed: %d %s", w.Code, w.Body.String()))
	}
	var o orderResponse
	json.NewDecoder(w.Body).Decode(&o)
	return o
}

func setStatus(r http.Handler, bearer string, orderID int, status string) *httptest.ResponseRecorder {
	return do(r, http.MethodPut, fmt.Sprintf("/orders/%d/status", orderID), bearer, handler.StatusRequest{Status: status})
}

func getProduct(r http.Handler, id int) handler.ProductResponse {
	w := do(r, http.MethodGet, fmt.Sprintf("/products/%d", id), token, nil)
	var p handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&p)
	return p
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
