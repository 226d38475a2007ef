package handlers

import (
	"net/mail"
	"strings"
)

type ProductValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func validateProduct(p ProductRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	if strings.TrimSpace(p.SKU) == "" {
		errs = append(errs, ProductValidationError{Field: "SKU", Description: "SKU is required"})
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "Name", Description: "Name is required"})
	}
	if !p.UnitPrice.IsPositive() {
		errs = append(errs, ProductValidationError{Field: "UnitPrice", Description: "Unit price must be greater than zero"})
	}
	if p.Inventory < 0 {
		errs = append(errs, ProductValidationError{Field: "Inventory", Description: "Inventory cannot be negative"})
	}
	return errs
}

// validateDetails covers updates, which never touch stock.
func validateDetails(p ProductRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "Name", Description: "Name is required"})
	}
	if !p.UnitPrice.IsPositive() {
		errs = append(errs, ProductValidationError{Field: "UnitPrice", Description: "Unit price must be greater than zero"})
	}
	return errs
}

func validateSettings(s StoreSettingsRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	if s.StoreName != nil && strings.TrimSpace(*s.StoreName) == "" {
		errs = append(errs, ProductValidationError{Field: "StoreName", Description: "Store name cannot be empty"})
	}
	nonNegative := map[string]*int{
		"LowStockThreshold":  s.LowStockThreshold,
		"SalesLookbackDays":  s.SalesLookbackDays,
		"ReorderHorizonDays": s.ReorderHorizonDays,
	}
	for _, field := range []string{"LowStockThreshold", "SalesLookbackDays", "ReorderHorizonDays"} {
		if v := nonNegative[field]; v != nil && *v < 0 {
			errs = append(errs, ProductValidationError{Field: field, Description: field + " cannot be negative"})
		}
	}
	if s.Currency != nil && len(strings.TrimSpace(*s.Currency)) != 3 {
		errs = append(errs, ProductValidationError{Field: "Currency", Description: "Currency must be a 3-letter code"})
	}
	return errs
}

func validateCustomer(c CustomerRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "Name", Description: "Name is required"})
	}
	if len(strings.TrimSpace(c.Contact)) < 3 {
		errs = append(errs, ProductValidationError{Field: "Contact", Description: "Contact must have at least 3 characters"})
	}
	if !validEmail(c.Email) {
		errs = append(errs, ProductValidationError{Field: "Email", Description: "Email is invalid"})
	}
	if strings.TrimSpace(c.Address) == "" {
		errs = append(errs, ProductValidationError{Field: "Address", Description: "Address is required"})
	}
	return errs
}

func validateCustomerUpdate(c CustomerUpdateRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "Name", Description: "Name cannot be empty"})
	}
	if c.Contact != nil && len(strings.TrimSpace(*c.Contact)) < 3 {
		errs = append(errs, ProductValidationError{Field: "Contact", Description: "Contact must have at least 3 characters"})
	}
	if c.Email != nil && !validEmail(*c.Email) {
		errs = append(errs, ProductValidationError{Field: "Email", Description: "Email is invalid"})
	}
	if c.Address != nil && strings.TrimSpace(*c.Address) == "" {
		errs = append(errs, ProductValidationError{Field: "Address", Description: "Address cannot be empty"})
	}
	return errs
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
