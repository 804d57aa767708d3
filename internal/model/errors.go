package model

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Client-facing error messages
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgTokenNotProvided   = "Token not provided"
	MsgInvalidToken       = "Invalid token"
	MsgInvalidBody        = "Invalid request body"
	MsgValidationFailed   = "Validation failed"
	MsgTooManyRequests    = "Too many requests"
	MsgInternal           = "Internal server error"
)

// APIError is the JSON error body returned by every endpoint:
//
//	{"error": "Invalid token"}
type APIError struct {
	Status     int               `json:"-"`
	Message    string            `json:"error"`
	Fields     map[string]string `json:"fields,omitempty"`
	RetryAfter int               `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// WriteJSON writes the error as a JSON response
func (e *APIError) WriteJSON(w http.ResponseWriter) {
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// Common error constructors

func NewUnauthorizedError(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

// NewValidationError reports per-field problems with a 422
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Message: MsgValidationFailed,
		Fields:  fields,
	}
}

func NewInternalError() *APIError {
	return &APIError{Status: http.StatusInternalServerError, Message: MsgInternal}
}

func NewRateLimitError(retryAfter int) *APIError {
	return &APIError{
		Status:     http.StatusTooManyRequests,
		Message:    MsgTooManyRequests,
		RetryAfter: retryAfter,
	}
}
