package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mcoot/petbattle/internal/api/apierr"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 64 << 10

// WriteError writes err as a JSON error response
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeJSON reads exactly one JSON value from the request body into v.
// Malformed, oversized or trailing input is an invalid request.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewInvalidRequestError(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return NewInvalidRequestError("invalid request body")
	}
	if dec.More() {
		return NewInvalidRequestError("unexpected data after request body")
	}
	return nil
}

// requireField returns an invalid request error when value is empty
func requireField(name, value string) error {
	if value == "" {
		return NewInvalidRequestError(name + " is required")
	}
	return nil
}
