package handlers

import (
	"net/http"
	"strings"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	models "github.com/rogerio-castellano/order-tracker/internal/models"
	repo "github.com/rogerio-castellano/order-tracker/internal/repo"
	"go.uber.org/zap"
)

func toProductResponse(p models.Product, threshold int) ProductResponse {
	return ProductResponse{
		Id:          p.ID,
		StoreID:     p.StoreID,
		SKU:         p.SKU,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		Inventory:   p.Inventory,
		LowStock:    p.Inventory < threshold,
	}
}

// lowStockThreshold falls back to the default when the store cannot be read.
func lowStockThreshold(storeID int) int {
	store, err := storeRepo.GetByID(storeID)
	if err != nil {
		logger.Warn("could not read store settings", zap.Int("store_id", storeID), zap.Error(err))
		return models.DefaultLowStockThreshold
	}
	return store.LowStockThreshold
}

// ownProduct loads a product and checks it belongs to the caller's store.
func ownProduct(caller auth.Caller, id int) (models.Product, error) {
	product, err := productRepo.GetByID(id)
	if err != nil {
		return models.Product{}, err
	}
	if product.StoreID != caller.StoreID {
		return models.Product{}, auth.ErrForbidden
	}
	return product, nil
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the caller's store with its initial stock
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 409 {string} string "SKU already exists"
// @Router /products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	validationErrors := validateProduct(req)
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	created, err := productRepo.Create(models.Product{
		StoreID:     caller.StoreID,
		SKU:         strings.TrimSpace(req.SKU),
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Inventory:   req.Inventory,
	})
	if err != nil {
		writeError(w, err, "could not create product")
		return
	}

	respond(w, http.StatusCreated, toProductResponse(created, lowStockThreshold(caller.StoreID)))
}

// GetProductsHandler godoc
// @Summary Filter and paginate the store's products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param name query string false "Filter by name"
// @Param category query string false "Filter by category"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ProductsSearchResult
// @Failure 400 {string} string "Invalid query"
// @Failure 500 {string} string "Internal error"
// @Router /products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	offset, limit, ok := parsePaging(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := repo.ProductFilter{
		Name:     q.Get("name"),
		Category: q.Get("category"),
		Offset:   offset,
		Limit:    limit,
	}

	products, total, err := productRepo.Filter(caller.StoreID, filter)
	if err != nil {
		writeError(w, err, "could not filter products")
		return
	}

	threshold := lowStockThreshold(caller.StoreID)
	resp := ProductsSearchResult{
		Data: make([]ProductResponse, len(products)),
		Meta: Meta{TotalCount: total},
	}
	for i, p := range products {
		resp.Data[i] = toProductResponse(p, threshold)
	}

	respond(w, http.StatusOK, resp)
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	product, err := ownProduct(caller, id)
	if err != nil {
		writeError(w, err, "could not fetch product")
		return
	}

	respond(w, http.StatusOK, toProductResponse(product, lowStockThreshold(caller.StoreID)))
}

// UpdateProductHandler godoc
// @Summary Update product details
// @Description Changes name, category, description and unit price. Stock is changed through restock and orders only.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	validationErrors := validateDetails(req)
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	product, err := ownProduct(caller, id)
	if err != nil {
		writeError(w, err, "could not update product")
		return
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Category = strings.TrimSpace(req.Category)
	product.Description = req.Description
	product.UnitPrice = req.UnitPrice

	updated, err := productRepo.UpdateDetails(product)
	if err != nil {
		writeError(w, err, "could not update product")
		return
	}

	respond(w, http.StatusOK, toProductResponse(updated, lowStockThreshold(caller.StoreID)))
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Description Cancels the product's pending orders, then removes it with its inventory rows. Refused while confirmed orders exist.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} ProductRemovalResult
// @Failure 400 {string} string "Invalid ID"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Product has confirmed orders"
// @Failure 503 {string} string "Busy, retry"
// @Router /products/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	result, err := orderService.RemoveProduct(r.Context(), caller, id)
	if err != nil {
		writeError(w, err, "could not delete product")
		return
	}

	respond(w, http.StatusOK, ProductRemovalResult{
		Message:         "product deleted",
		ProductID:       result.ProductID,
		CancelledOrders: result.CancelledOrders,
	})
}

// RestockProductHandler godoc
// @Summary Add stock to a product
// @Description Adds units to the product and its store inventory row, creating the row when missing
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param restock body RestockRequest true "Units to add"
// @Success 200 {object} RestockResult
// @Failure 400 {string} string "Invalid quantity"
// @Failure 404 {string} string "Not found"
// @Failure 503 {string} string "Busy, retry"
// @Router /products/{id}/inventory [put]
func RestockProductHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	var req RestockRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	product, inv, err := stockLedger.Restock(r.Context(), caller, id, req.Quantity)
	if err != nil {
		writeError(w, err, "could not restock product")
		return
	}

	respond(w, http.StatusOK, RestockResult{
		Product:     toProductResponse(product, lowStockThreshold(caller.StoreID)),
		InventoryID: inv.ID,
		Units:       inv.Units,
	})
}

// BackfillInventoryHandler godoc
// @Summary Create missing inventory rows for the store's products
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ledger.BackfillResult
// @Failure 500 {string} string "Internal error"
// @Router /products/backfill-inventory [post]
func BackfillInventoryHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	result, err := stockLedger.Backfill(r.Context(), caller.StoreID)
	if err != nil {
		writeError(w, err, "could not backfill inventory")
		return
	}

	respond(w, http.StatusOK, result)
}
