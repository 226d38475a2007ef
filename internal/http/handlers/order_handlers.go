package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/orders"
	repo "github.com/rogerio-castellano/order-tracker/internal/repo"
)

// CreateOrderHandler godoc
// @Summary Create a pending order
// @Description The customer is found or created by contact. No stock moves until the order is confirmed.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body OrderRequest true "Order to create"
// @Success 201 {object} models.Order
// @Failure 400 {string} string "Invalid input"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Inventory not found"
// @Router /orders [post]
func CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req OrderRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	order, err := orderService.Create(r.Context(), caller, orders.CreateOrder{
		Contact:     req.Contact,
		InventoryID: req.InventoryID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(w, err, "could not create order")
		return
	}

	respond(w, http.StatusCreated, order)
}

// GetOrdersHandler godoc
// @Summary List the store's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param contact query string false "Filter by customer contact"
// @Param since query string false "Created from this timestamp (RFC3339)"
// @Param until query string false "Created until this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} OrdersSearchResult
// @Failure 400 {string} string "Invalid query"
// @Router /orders [get]
func GetOrdersHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := repo.OrderFilter{Contact: q.Get("contact")}

	if s := q.Get("status"); s != "" {
		status, err := orders.ParseStatus(s)
		if err != nil {
			writeError(w, err, "invalid status")
			return
		}
		filter.Status = &status
	}

	if filter.Since, filter.Until, ok = parseRange(w, r); !ok {
		return
	}
	if filter.Offset, filter.Limit, ok = parsePaging(w, r); !ok {
		return
	}

	views, total, err := orderService.List(r.Context(), caller, filter)
	if err != nil {
		writeError(w, err, "could not list orders")
		return
	}
	if views == nil {
		views = []models.OrderView{}
	}

	respond(w, http.StatusOK, OrdersSearchResult{Data: views, Meta: Meta{TotalCount: total}})
}

// GetOrderInventoryHandler godoc
// @Summary List inventory rows orders can be placed against
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.InventoryItem
// @Router /orders/inventory [get]
func GetOrderInventoryHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	items, err := orderService.StoreInventory(r.Context(), caller)
	if err != nil {
		writeError(w, err, "could not list inventory")
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}

	respond(w, http.StatusOK, items)
}

// GetOrderHandler godoc
// @Summary Get an order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} models.OrderView
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Not found"
// @Router /orders/{id} [get]
func GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	view, err := orderService.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, err, "could not fetch order")
		return
	}

	respond(w, http.StatusOK, view)
}

// EditOrderHandler godoc
// @Summary Edit a pending order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param order body OrderEditRequest true "Fields to change"
// @Success 200 {object} models.Order
// @Failure 400 {string} string "Order no longer pending"
// @Failure 404 {string} string "Not found"
// @Failure 503 {string} string "Busy, retry"
// @Router /orders/{id} [put]
func EditOrderHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	var req OrderEditRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	order, err := orderService.Edit(r.Context(), caller, id, orders.EditOrder{
		InventoryID: req.InventoryID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(w, err, "could not edit order")
		return
	}

	respond(w, http.StatusOK, order)
}

// UpdateOrderStatusHandler godoc
// @Summary Move an order to a new status
// @Description pending→confirmed takes the quantity out of stock, confirmed→cancelled puts it back.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param status body StatusRequest true "Target status"
// @Success 200 {object} models.Order
// @Failure 400 {string} string "Invalid transition"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Insufficient stock"
// @Failure 503 {string} string "Busy, retry"
// @Router /orders/{id}/status [put]
func UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	var req StatusRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(w, err, "invalid status")
		return
	}

	order, err := orderService.Transition(r.Context(), id, status, caller)
	if err != nil {
		writeError(w, err, "could not update order status")
		return
	}

	respond(w, http.StatusOK, order)
}

// GetOrderReceiptHandler godoc
// @Summary Receipt of the checkout batch an order belongs to
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} orders.Receipt
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Not found"
// @Router /orders/{id}/receipt [get]
func GetOrderReceiptHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	receipt, err := orderService.Receipt(r.Context(), caller, id)
	if err != nil {
		writeError(w, err, "could not build receipt")
		return
	}

	respond(w, http.StatusOK, receipt)
}
