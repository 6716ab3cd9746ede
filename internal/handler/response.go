// Package handler contains the HTTP layer: request parsing, response
// encoding, and the mapping from domain errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/matthewzdanevich/task-manager-app/internal/apperror"
)

// ErrorResponse is the standard error shape returned by every endpoint:
//
//	{"error": "not_found", "message": "task not found with id abc123"}
//
// One shape for 400, 401, 404, and 500 means clients parse errors one way.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response. Headers and status must be written before
// the body — once Encode calls Write, the headers are on the wire.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and sends it.
//
// The mapping lives here and only here — the service layer never sees a
// status code. Two deliberate collapses:
//
//   - ErrConflict (duplicate email) maps to 400, not 409: registration has a
//     single failure status in the external contract.
//   - ErrUnauthorized always produces the same body, whatever actually went
//     wrong, matching the gate's responses.
//
// Anything unrecognized becomes a generic 500 with no internal detail — raw
// error strings can carry SQL fragments or file paths.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeFields decodes a JSON body into a raw field map and rejects any key
// outside allowed. This is how partial updates stay all-or-nothing: one
// disallowed key fails the whole request before a single field is parsed,
// let alone written.
func decodeFields(r *http.Request, allowed ...string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, apperror.ValidationFailed("", "invalid JSON body")
	}

	for key := range fields {
		ok := false
		for _, name := range allowed {
			if key == name {
				ok = true
				break
			}
		}
		if !ok {
			return nil, apperror.ValidationFailed(key, "field is not allowed to be updated")
		}
	}

	return fields, nil
}

// optionalField decodes fields[key] if present, returning nil for "absent".
// The pointer-for-presence convention is what the services' update structs
// expect. A type mismatch is a validation error naming the field.
func optionalField[T any](fields map[string]json.RawMessage, key string) (*T, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, apperror.ValidationFailed(key, "field has the wrong type")
	}
	return &v, nil
}

// requiredString extracts a mandatory string field from a decoded body.
func requiredString(fields map[string]json.RawMessage, key string) (string, error) {
	value, err := optionalField[string](fields, key)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", apperror.ValidationFailed(key, key+" is required")
	}
	return *value, nil
}
