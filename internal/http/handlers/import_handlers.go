package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	models "github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"github.com/shopspring/decimal"
)

var importColumns = []string{"sku", "name", "category", "description", "unit_price", "inventory"}

type csvRow struct {
	SKU         string
	Name        string
	Category    string
	Description string
	UnitPrice   string
	Inventory   string
}

func parseCSV(file multipart.File) ([]csvRow, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"sku", "name", "unit_price"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q, expected %s", col, strings.Join(importColumns, ","))
		}
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		rows = append(rows, csvRow{
			SKU:         field(record, "sku"),
			Name:        field(record, "name"),
			Category:    field(record, "category"),
			Description: field(record, "description"),
			UnitPrice:   field(record, "unit_price"),
			Inventory:   field(record, "inventory"),
		})
	}
	return rows, nil
}

func rowToProduct(r csvRow) (models.Product, error) {
	if r.SKU == "" {
		return models.Product{}, errors.New("missing sku")
	}
	if r.Name == "" {
		return models.Product{}, errors.New("missing name")
	}
	price, err := decimal.NewFromString(r.UnitPrice)
	if err != nil || !price.IsPositive() {
		return models.Product{}, errors.New("invalid unit_price")
	}
	inventory := 0
	if r.Inventory != "" {
		inventory, err = strconv.Atoi(r.Inventory)
		if err != nil || inventory < 0 {
			return models.Product{}, errors.New("invalid inventory")
		}
	}
	return models.Product{
		SKU:         r.SKU,
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		UnitPrice:   price,
		Inventory:   inventory,
	}, nil
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Columns: sku,name,category,description,unit_price,inventory. In update mode existing SKUs get their details replaced; stock is never changed by an import of an existing SKU.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {string} string "Invalid file"
// @Failure 500 {string} string "Internal error"
// @Router /products/import [post]
// @Security BearerAuth
func ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != "update" {
		mode = "skip" // default
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := ImportProductsResult{Errors: []ProductValidationError{}}
	rowError := func(rowNum int, field, format string, args ...any) {
		result.Errors = append(result.Errors, ProductValidationError{
			Field:       field,
			Description: fmt.Sprintf("row %d: ", rowNum) + fmt.Sprintf(format, args...),
		})
	}

	for i, rec := range records {
		rowNum := i + 2 // header is row 1

		product, err := rowToProduct(rec)
		if err != nil {
			rowError(rowNum, "", "%v", err)
			continue
		}
		product.StoreID = caller.StoreID

		existing, err := productRepo.GetBySKU(caller.StoreID, product.SKU)
		switch {
		case err == nil:
			if mode == "skip" {
				rowError(rowNum, "SKU", "product '%s' already exists", product.SKU)
				continue
			}
			existing.Name = product.Name
			existing.Category = product.Category
			existing.Description = product.Description
			existing.UnitPrice = product.UnitPrice
			if _, err := productRepo.UpdateDetails(existing); err != nil {
				rowError(rowNum, "", "failed to update '%s'", product.SKU)
				continue
			}
			result.UpdatedProductsCount++
		case errors.Is(err, repo.ErrNotFound):
			if _, err := productRepo.Create(product); err != nil {
				rowError(rowNum, "", "%v", err)
				continue
			}
			result.ImportedProductsCount++
		default:
			rowError(rowNum, "", "could not look up '%s'", product.SKU)
		}
	}

	respond(w, http.StatusOK, result)
}
