package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/models"
	repo "github.com/rogerio-castellano/order-tracker/internal/repo"
)

const maxCustomersPage = 100

func toCustomerResponse(p models.Person) CustomerResponse {
	return CustomerResponse{
		ID:      p.ID,
		Name:    p.Name,
		Contact: p.Contact,
		Email:   p.Email,
		Address: p.Address,
	}
}

// GetCustomersHandler godoc
// @Summary List the customers of the caller's store
// @Description Customers are the persons with at least one order in the store.
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination (at most 100)"
// @Success 200 {object} CustomersSearchResult
// @Failure 400 {string} string "Invalid input"
// @Router /customers [get]
func GetCustomersHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	offset, limit, ok := parsePaging(w, r)
	if !ok {
		return
	}
	if limit == nil || *limit > maxCustomersPage {
		n := maxCustomersPage
		limit = &n
	}

	customers, total, err := personRepo.ListCustomers(caller.StoreID, repo.PersonFilter{Offset: offset, Limit: limit})
	if err != nil {
		writeError(w, err, "could not retrieve customers")
		return
	}

	response := CustomersSearchResult{
		Data: make([]CustomerResponse, len(customers)),
		Meta: Meta{TotalCount: total},
	}
	for i, c := range customers {
		response.Data[i] = toCustomerResponse(c)
	}
	respond(w, http.StatusOK, response)
}

// CreateCustomerHandler godoc
// @Summary Create a customer
// @Description The customer's initial password is their contact.
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param customer body CustomerRequest true "Customer"
// @Success 201 {object} CustomerResponse
// @Failure 400 {array} ProductValidationError
// @Failure 409 {string} string "Contact or email already exists"
// @Router /customers [post]
func CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Contact = strings.TrimSpace(req.Contact)
	req.Email = strings.TrimSpace(req.Email)
	req.Address = strings.TrimSpace(req.Address)

	validationErrors := validateCustomer(req)
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	hashed, err := auth.HashPassword(req.Contact)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	person, err := personRepo.Create(models.Person{
		Name:         req.Name,
		Contact:      req.Contact,
		Email:        req.Email,
		Address:      req.Address,
		PasswordHash: hashed,
	})
	if err != nil {
		writeError(w, err, "could not create customer")
		return
	}
	respond(w, http.StatusCreated, toCustomerResponse(person))
}

// UpdateCustomerHandler godoc
// @Summary Update a customer by contact
// @Description Only the fields present in the body are changed.
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param contact path string true "Current contact"
// @Param customer body CustomerUpdateRequest true "Fields to change"
// @Success 200 {object} CustomerResponse
// @Failure 400 {array} ProductValidationError
// @Failure 404 {string} string "Customer not found"
// @Failure 409 {string} string "Contact or email already exists"
// @Router /customers/{contact} [put]
func UpdateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	contact := chi.URLParam(r, "contact")

	var req CustomerUpdateRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	for _, field := range []*string{req.Name, req.Contact, req.Email, req.Address} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}

	validationErrors := validateCustomerUpdate(req)
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	person, err := personRepo.UpdateByContact(contact, repo.PersonUpdate{
		Name:    req.Name,
		Contact: req.Contact,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		writeError(w, err, "could not update customer")
		return
	}
	respond(w, http.StatusOK, toCustomerResponse(person))
}

// CheckCustomerHandler godoc
// @Summary Check whether a customer exists
// @Description Looks the customer up by contact, or by email when no contact is given.
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param contact query string false "Contact"
// @Param email query string false "Email"
// @Success 200 {object} CustomerExistsResponse
// @Failure 400 {string} string "contact or email is required"
// @Router /customers/check [get]
func CheckCustomerHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contact, email := strings.TrimSpace(q.Get("contact")), strings.TrimSpace(q.Get("email"))

	var (
		person models.Person
		err    error
	)
	switch {
	case contact != "":
		person, err = personRepo.GetByContact(contact)
	case email != "":
		person, err = personRepo.GetByEmail(email)
	default:
		http.Error(w, "contact or email is required", http.StatusBadRequest)
		return
	}

	if errors.Is(err, repo.ErrNotFound) {
		respond(w, http.StatusOK, CustomerExistsResponse{Exists: false})
		return
	}
	if err != nil {
		writeError(w, err, "could not check customer")
		return
	}
	respond(w, http.StatusOK, CustomerExistsResponse{
		Exists:  true,
		ID:      person.ID,
		Name:    person.Name,
		Contact: person.Contact,
		Email:   person.Email,
	})
}
