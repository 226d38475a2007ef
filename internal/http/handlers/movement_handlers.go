package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	models "github.com/rogerio-castellano/order-tracker/internal/models"
	repo "github.com/rogerio-castellano/order-tracker/internal/repo"
	"go.uber.org/zap"
)

func toMovementResponse(m models.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		InventoryID: m.InventoryID,
		OrderID:     m.OrderID,
		Delta:       m.Delta,
		Reason:      m.Reason,
		CreatedAt:   m.CreatedAt,
	}
}

// GetMovementsHandler godoc
// @Summary Get product movement logs
// @Tags movements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param since query string false "Filter movements from this timestamp (RFC3339)"
// @Param until query string false "Filter movements until this timestamp (RFC3339)"
// @Param order_id query int false "Only movements caused by this order"
// @Param reason query string false "Only movements with this reason (initial, restock, order_confirmed, order_cancelled)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} MovementsSearchResult
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Product not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/movements [get]
func GetMovementsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	if _, err := ownProduct(caller, id); err != nil {
		writeError(w, err, "could not fetch product")
		return
	}

	since, until, ok := parseRange(w, r)
	if !ok {
		return
	}
	filter, ok := parseMovementFilter(w, r)
	if !ok {
		return
	}
	offset, limit, ok := parsePaging(w, r)
	if !ok {
		return
	}
	filter.Since, filter.Until = since, until
	filter.Offset, filter.Limit = offset, limit

	movements, total, err := movementRepo.GetByProductID(id, filter)
	if err != nil {
		logger.Error("could not retrieve movements", zap.Int("product_id", id), zap.Error(err))
		http.Error(w, "could not retrieve movements", http.StatusInternalServerError)
		return
	}

	response := MovementsSearchResult{
		Data: make([]MovementResponse, len(movements)),
		Meta: Meta{TotalCount: total},
	}
	for i, m := range movements {
		response.Data[i] = toMovementResponse(m)
	}

	respond(w, http.StatusOK, response)
}

// ExportMovementsHandler godoc
// @Summary Export product movement logs
// @Tags movements
// @Produce text/csv, application/json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param format query string true "Export format (csv or json)"
// @Param since query string false "Filter from timestamp (RFC3339)"
// @Param until query string false "Filter until timestamp (RFC3339)"
// @Param order_id query int false "Only movements caused by this order"
// @Param reason query string false "Only movements with this reason"
// @Success 200 {file} file
// @Failure 400 {string} string "Invalid input"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/movements/export [get]
func ExportMovementsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		http.Error(w, "format must be 'csv' or 'json'", http.StatusBadRequest)
		return
	}

	if _, err := ownProduct(caller, id); err != nil {
		writeError(w, err, "could not fetch product")
		return
	}

	since, until, ok := parseRange(w, r)
	if !ok {
		return
	}

	filter, ok := parseMovementFilter(w, r)
	if !ok {
		return
	}
	filter.Since, filter.Until = since, until

	movements, _, err := movementRepo.GetByProductID(id, filter)
	if err != nil {
		http.Error(w, "could not retrieve movements", http.StatusInternalServerError)
		return
	}

	switch format {
	case "json":
		data := make([]MovementResponse, len(movements))
		for i, m := range movements {
			data[i] = toMovementResponse(m)
		}
		headers := http.Header{}
		headers.Set("Content-Disposition", `attachment; filename="movements.json"`)
		if err := writeJSON(w, http.StatusOK, data, headers); err != nil {
			logger.Error("failed to write movements export", zap.Error(err))
		}

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="movements.csv"`)

		csvWriter := csv.NewWriter(w)
		_ = csvWriter.Write([]string{"id", "product_id", "inventory_id", "order_id", "delta", "reason", "created_at"})
		for _, m := range movements {
			orderID := ""
			if m.OrderID != nil {
				orderID = strconv.Itoa(*m.OrderID)
			}
			_ = csvWriter.Write([]string{
				strconv.Itoa(m.ID),
				strconv.Itoa(m.ProductID),
				strconv.Itoa(m.InventoryID),
				orderID,
				strconv.Itoa(m.Delta),
				m.Reason,
				m.CreatedAt.Format(time.RFC3339),
			})
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			logger.Error("failed to write movements export", zap.Error(err))
		}
	}
}

// parseMovementFilter reads the order_id and reason query parameters.
func parseMovementFilter(w http.ResponseWriter, r *http.Request) (repo.MovementFilter, bool) {
	q := r.URL.Query()

	orderID, err := parseIntPtr(q.Get("order_id"))
	if err != nil || (orderID != nil && *orderID <= 0) {
		http.Error(w, "invalid order_id", http.StatusBadRequest)
		return repo.MovementFilter{}, false
	}

	reason := q.Get("reason")
	switch reason {
	case "", models.MovementInitial, models.MovementRestock, models.MovementOrderConfirmed, models.MovementOrderCancelled:
	default:
		http.Error(w, "unknown movement reason", http.StatusBadRequest)
		return repo.MovementFilter{}, false
	}

	return repo.MovementFilter{OrderID: orderID, Reason: reason}, true
}
