package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// DecodeJSON reads a single JSON document from r into dst, rejecting unknown
// fields and trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return BadRequest("request body is empty", err)
		case errors.As(err, &maxErr):
			return NewAppError(CodeInvalidRequest, "request body too large", http.StatusRequestEntityTooLarge, err)
		case errors.As(err, &syntaxErr):
			appErr := BadRequest("malformed JSON", err)
			appErr.Details = map[string]any{"offset": syntaxErr.Offset}
			return appErr
		case errors.As(err, &typeErr):
			appErr := BadRequest("invalid value type", err)
			appErr.Details = map[string]any{"field": typeErr.Field}
			return appErr
		default:
			return BadRequest("invalid request body", err)
		}
	}
	if dec.More() {
		return BadRequest("request body must contain a single JSON document", fmt.Errorf("trailing data"))
	}
	return nil
}
