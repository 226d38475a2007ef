package handlers

import (
	"net/http"
	"strings"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

// GetSettingsHandler godoc
// @Summary Read the caller's store settings
// @Tags store
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StoreSettings
// @Failure 404 {string} string "Store not found"
// @Router /store/settings [get]
func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	store, err := storeRepo.GetByID(caller.StoreID)
	if err != nil {
		writeError(w, err, "could not fetch settings")
		return
	}
	respond(w, http.StatusOK, settingsResponse(store))
}

// UpdateSettingsHandler godoc
// @Summary Update the caller's store settings
// @Description Only the fields present in the body are changed.
// @Tags store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param settings body StoreSettingsRequest true "Settings to change"
// @Success 200 {object} StoreSettings
// @Failure 400 {array} ProductValidationError
// @Failure 403 {string} string "Forbidden"
// @Router /store/settings [put]
func UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req StoreSettingsRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	validationErrors := validateSettings(req)
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	store, err := storeRepo.GetByID(caller.StoreID)
	if err != nil {
		writeError(w, err, "could not fetch settings")
		return
	}
	if req.StoreName != nil {
		store.Name = strings.TrimSpace(*req.StoreName)
	}
	if req.StoreAddress != nil {
		store.Address = strings.TrimSpace(*req.StoreAddress)
	}
	if req.LowStockThreshold != nil {
		store.LowStockThreshold = *req.LowStockThreshold
	}
	if req.SalesLookbackDays != nil {
		store.SalesLookbackDays = *req.SalesLookbackDays
	}
	if req.ReorderHorizonDays != nil {
		store.ReorderHorizonDays = *req.ReorderHorizonDays
	}
	if req.Currency != nil {
		store.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}

	store, err = storeRepo.UpdateSettings(store)
	if err != nil {
		writeError(w, err, "could not update settings")
		return
	}
	respond(w, http.StatusOK, settingsResponse(store))
}

func settingsResponse(s models.Store) StoreSettings {
	return StoreSettings{
		StoreName:          s.Name,
		StoreAddress:       s.Address,
		LowStockThreshold:  s.LowStockThreshold,
		SalesLookbackDays:  s.SalesLookbackDays,
		ReorderHorizonDays: s.ReorderHorizonDays,
		Currency:           s.Currency,
	}
}
