package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/ledger"
	"github.com/rogerio-castellano/order-tracker/internal/orders"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"go.uber.org/zap"
)

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

func respond(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// writeError maps domain errors onto status codes. Unknown errors are
// logged and answered with a generic 500 using fallback as the body.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, auth.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrNotPending),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrInvalidContact),
		errors.Is(err, ledger.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, orders.ErrProductInUse),
		errors.Is(err, repo.ErrDuplicatedValueUnique):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, orders.ErrBusy), errors.Is(err, repo.ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		http.Error(w, "resource busy, retry", http.StatusServiceUnavailable)
	default:
		logger.Error(fallback, zap.Error(err))
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

// callerFrom returns the identity the auth middleware stored on the request.
func callerFrom(w http.ResponseWriter, r *http.Request) (auth.Caller, bool) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return caller, ok
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, fmt.Sprintf("invalid %s ID", what), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// parseTimeParam reads an RFC3339 query value. Query decoding turns the '+'
// of a UTC offset into a space, which is reversed before parsing.
// Example: 2025-07-03T17:44:03+02:00 becomes 2025-07-03T17:44:03 02:00
func parseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if len(value) == len(time.RFC3339) && value[len(value)-6] == ' ' {
		value = value[:len(value)-6] + "+" + value[len(value)-5:]
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func parseIntPtr(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parsePaging reads offset and limit, rejecting a non-positive limit and a
// negative offset.
func parsePaging(w http.ResponseWriter, r *http.Request) (offset, limit *int, ok bool) {
	q := r.URL.Query()

	limit, err := parseIntPtr(q.Get("limit"))
	if err != nil {
		http.Error(w, "invalid limit format", http.StatusBadRequest)
		return nil, nil, false
	}
	if limit != nil && *limit <= 0 {
		http.Error(w, "limit must be greater than zero", http.StatusBadRequest)
		return nil, nil, false
	}

	offset, err = parseIntPtr(q.Get("offset"))
	if err != nil {
		http.Error(w, "invalid offset format", http.StatusBadRequest)
		return nil, nil, false
	}
	if offset != nil && *offset < 0 {
		http.Error(w, "offset must be zero or positive", http.StatusBadRequest)
		return nil, nil, false
	}

	return offset, limit, true
}

// parseRange reads the since/until query pair.
func parseRange(w http.ResponseWriter, r *http.Request) (since, until *time.Time, ok bool) {
	q := r.URL.Query()

	since, err := parseTimeParam(q.Get("since"))
	if err != nil {
		http.Error(w, "invalid since date format", http.StatusBadRequest)
		return nil, nil, false
	}
	until, err = parseTimeParam(q.Get("until"))
	if err != nil {
		http.Error(w, "invalid until date format", http.StatusBadRequest)
		return nil, nil, false
	}
	return since, until, true
}
